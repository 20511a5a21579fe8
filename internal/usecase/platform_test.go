package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/Iapetus-11/link-shortener/internal/core/domain"
	"github.com/Iapetus-11/link-shortener/internal/infra/security"
	"github.com/Iapetus-11/link-shortener/internal/repository"
)

// newTestHasher builds a hasher with minimum-cost profiles so tests stay fast.
func newTestHasher(t *testing.T) *security.Hasher {
	t.Helper()

	weak := security.Argon2Profile{Memory: 8 * 1024, Iterations: 1, Parallelism: 1, SaltLength: 8, KeyLength: 16}
	strong := security.Argon2Profile{Memory: 9 * 1024, Iterations: 1, Parallelism: 1, SaltLength: 8, KeyLength: 16}

	hasher, err := security.NewHasher(weak, strong, 0)
	if err != nil {
		t.Fatalf("security.NewHasher: %v", err)
	}
	return hasher
}

type stubPlatformRepo struct {
	platforms map[uuid.UUID]domain.Platform
	creates   int
	updates   int
	deletes   int
}

func newStubPlatformRepo() *stubPlatformRepo {
	return &stubPlatformRepo{platforms: map[uuid.UUID]domain.Platform{}}
}

func (r *stubPlatformRepo) Create(_ context.Context, platform domain.Platform) error {
	r.creates++
	r.platforms[platform.ID] = platform
	return nil
}

func (r *stubPlatformRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Platform, error) {
	if platform, ok := r.platforms[id]; ok {
		copy := platform
		return &copy, nil
	}
	return nil, repository.ErrNotFound
}

func (r *stubPlatformRepo) List(_ context.Context) ([]domain.Platform, error) {
	out := make([]domain.Platform, 0, len(r.platforms))
	for _, platform := range r.platforms {
		out = append(out, platform)
	}
	return out, nil
}

func (r *stubPlatformRepo) UpdateAPIKeyHash(_ context.Context, id uuid.UUID, apiKeyHash string) error {
	platform, ok := r.platforms[id]
	if !ok {
		return repository.ErrNotFound
	}
	r.updates++
	platform.APIKeyHash = apiKeyHash
	r.platforms[id] = platform
	return nil
}

func (r *stubPlatformRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.platforms[id]; !ok {
		return repository.ErrNotFound
	}
	r.deletes++
	delete(r.platforms, id)
	return nil
}

func TestPlatformServiceCreateIssuesVerifiableKey(t *testing.T) {
	repo := newStubPlatformRepo()
	service := NewPlatformService(repo, newTestHasher(t))

	platform, apiKey, err := service.Create(context.Background(), "storefront")
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if len(apiKey) != 69 {
		t.Fatalf("expected 69 character api key, got %d", len(apiKey))
	}
	if platform.APIKeyHash == apiKey {
		t.Fatal("expected stored hash to differ from plaintext key")
	}
	if repo.creates != 1 {
		t.Fatalf("expected one create, got %d", repo.creates)
	}

	authed, err := service.Authenticate(context.Background(), platform.ID.String(), apiKey)
	if err != nil {
		t.Fatalf("Authenticate returned error: %v", err)
	}
	if authed.ID != platform.ID {
		t.Fatalf("expected platform %s, got %s", platform.ID, authed.ID)
	}
}

func TestPlatformServiceCreateRejectsBlankName(t *testing.T) {
	service := NewPlatformService(newStubPlatformRepo(), newTestHasher(t))

	if _, _, err := service.Create(context.Background(), "   "); err == nil {
		t.Fatal("expected error for blank platform name")
	}
}

func TestPlatformServiceAuthenticateFailures(t *testing.T) {
	repo := newStubPlatformRepo()
	service := NewPlatformService(repo, newTestHasher(t))

	platform, apiKey, err := service.Create(context.Background(), "storefront")
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	cases := []struct {
		name    string
		id      string
		key     string
		wantErr error
	}{
		{"empty id", "", apiKey, ErrMissingCredential},
		{"empty key", platform.ID.String(), "", ErrMissingCredential},
		{"id not a uuid", "not-a-uuid", apiKey, ErrMalformedCredential},
		{"unknown platform", uuid.NewString(), apiKey, ErrUnknownPrincipal},
		{"wrong key", platform.ID.String(), "wrong-key", ErrInvalidSecret},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := service.Authenticate(context.Background(), tc.id, tc.key); !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestPlatformServiceResetKeyInvalidatesOldKey(t *testing.T) {
	repo := newStubPlatformRepo()
	service := NewPlatformService(repo, newTestHasher(t))

	platform, oldKey, err := service.Create(context.Background(), "storefront")
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	newKey, err := service.ResetKey(context.Background(), platform.ID)
	if err != nil {
		t.Fatalf("ResetKey returned error: %v", err)
	}
	if newKey == oldKey {
		t.Fatal("expected reset to generate a different key")
	}

	if _, err := service.Authenticate(context.Background(), platform.ID.String(), oldKey); !errors.Is(err, ErrInvalidSecret) {
		t.Fatalf("expected old key to stop verifying, got %v", err)
	}
	if _, err := service.Authenticate(context.Background(), platform.ID.String(), newKey); err != nil {
		t.Fatalf("expected new key to verify, got %v", err)
	}
}

func TestPlatformServiceResetKeyUnknownPlatform(t *testing.T) {
	service := NewPlatformService(newStubPlatformRepo(), newTestHasher(t))

	if _, err := service.ResetKey(context.Background(), uuid.New()); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPlatformServiceDeleteRemovesPrincipal(t *testing.T) {
	repo := newStubPlatformRepo()
	service := NewPlatformService(repo, newTestHasher(t))

	platform, apiKey, err := service.Create(context.Background(), "storefront")
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if err := service.Delete(context.Background(), platform.ID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}

	if _, err := service.Authenticate(context.Background(), platform.ID.String(), apiKey); !errors.Is(err, ErrUnknownPrincipal) {
		t.Fatalf("expected ErrUnknownPrincipal after delete, got %v", err)
	}
}
