package security

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/sync/semaphore"
)

const (
	argon2Variant = "argon2id"
	argon2Version = "v=19"
)

var (
	errInvalidHashFormat = errors.New("argon2: invalid encoded hash format")
	errInvalidProfile    = errors.New("argon2: invalid profile")
)

// Argon2Profile defines one set of cost parameters for Argon2id hashing.
// Profiles are built once at startup and shared read-only afterwards.
type Argon2Profile struct {
	Memory      uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// WeakArgon2Profile returns the cost profile for per-request session secrets.
// Checked on every authenticated dashboard call, so it trades hardness for
// latency while staying memory-hard.
func WeakArgon2Profile() Argon2Profile {
	return Argon2Profile{
		Memory:      13 * 1024,
		Iterations:  2,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   64,
	}
}

// StrongArgon2Profile returns the cost profile for the operator password and
// platform API keys: rare, high-value verifications.
func StrongArgon2Profile() Argon2Profile {
	return Argon2Profile{
		Memory:      19 * 1024,
		Iterations:  3,
		Parallelism: 2,
		SaltLength:  16,
		KeyLength:   64,
	}
}

func (p Argon2Profile) validate() error {
	if p.Memory < 8*1024 {
		return fmt.Errorf("%w: memory must be at least 8192 KiB", errInvalidProfile)
	}
	if p.Iterations == 0 {
		return fmt.Errorf("%w: iterations must be greater than zero", errInvalidProfile)
	}
	if p.Parallelism == 0 {
		return fmt.Errorf("%w: parallelism must be greater than zero", errInvalidProfile)
	}
	if p.SaltLength < 8 {
		return fmt.Errorf("%w: salt length must be at least 8 bytes", errInvalidProfile)
	}
	if p.KeyLength < 16 {
		return fmt.Errorf("%w: key length must be at least 16 bytes", errInvalidProfile)
	}
	return nil
}

// cost is a coarse work estimate used to enforce the weak < strong ordering.
func (p Argon2Profile) cost() uint64 {
	return uint64(p.Memory) * uint64(p.Iterations)
}

// Hasher wraps Argon2id with two fixed cost profiles and a bounded concurrency
// gate. Hashing is CPU- and memory-intensive by design; the gate keeps a burst
// of verifications from starving unrelated request handling.
type Hasher struct {
	weak   Argon2Profile
	strong Argon2Profile
	gate   *semaphore.Weighted
}

// NewHasher validates both profiles and builds a Hasher. A malformed profile,
// or a weak profile that is not strictly cheaper than the strong one, is a
// construction error; callers treat it as fatal at startup.
func NewHasher(weak, strong Argon2Profile, maxConcurrent int64) (*Hasher, error) {
	if err := weak.validate(); err != nil {
		return nil, fmt.Errorf("weak profile: %w", err)
	}
	if err := strong.validate(); err != nil {
		return nil, fmt.Errorf("strong profile: %w", err)
	}
	if weak.cost() >= strong.cost() {
		return nil, fmt.Errorf("%w: weak profile must be strictly cheaper than strong", errInvalidProfile)
	}

	if maxConcurrent <= 0 {
		maxConcurrent = int64(runtime.GOMAXPROCS(0))
	}

	return &Hasher{
		weak:   weak,
		strong: strong,
		gate:   semaphore.NewWeighted(maxConcurrent),
	}, nil
}

// Weak returns the session-secret cost profile.
func (h *Hasher) Weak() Argon2Profile { return h.weak }

// Strong returns the password/API-key cost profile.
func (h *Hasher) Strong() Argon2Profile { return h.strong }

// Hash derives an Argon2id hash of secret under the given profile, using a
// fresh random salt, and returns it in the encoded form
// $argon2id$v=19$m=<memory>,t=<iterations>,p=<parallelism>$<salt>$<digest>.
func (h *Hasher) Hash(ctx context.Context, profile Argon2Profile, secret string) (string, error) {
	if err := h.gate.Acquire(ctx, 1); err != nil {
		return "", fmt.Errorf("argon2: acquire hash slot: %w", err)
	}
	defer h.gate.Release(1)

	salt := make([]byte, profile.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("argon2: generate salt: %w", err)
	}

	sum := argon2.IDKey([]byte(secret), salt, profile.Iterations, profile.Memory, profile.Parallelism, profile.KeyLength)

	encoded := strings.Join([]string{
		"",
		argon2Variant,
		argon2Version,
		fmt.Sprintf("m=%d,t=%d,p=%d", profile.Memory, profile.Iterations, profile.Parallelism),
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(sum),
	}, "$")

	return encoded, nil
}

// Verify recomputes the digest for secret against the parameters and salt
// embedded in encoded and compares in constant time. The profile argument is
// a consistency hint only; the stored hash is authoritative. Verification
// fails closed: malformed or corrupt input yields false, never a panic.
func (h *Hasher) Verify(ctx context.Context, _ Argon2Profile, secret, encoded string) bool {
	if secret == "" || encoded == "" {
		return false
	}

	params, salt, expected, err := decodeArgon2Hash(encoded)
	if err != nil {
		return false
	}

	if err := h.gate.Acquire(ctx, 1); err != nil {
		return false
	}
	defer h.gate.Release(1)

	computed := argon2.IDKey([]byte(secret), salt, params.Iterations, params.Memory, params.Parallelism, uint32(len(expected)))
	return subtle.ConstantTimeCompare(computed, expected) == 1
}

func decodeArgon2Hash(encoded string) (Argon2Profile, []byte, []byte, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" {
		return Argon2Profile{}, nil, nil, errInvalidHashFormat
	}

	if parts[1] != argon2Variant {
		return Argon2Profile{}, nil, nil, fmt.Errorf("argon2: unexpected variant %q", parts[1])
	}
	if parts[2] != argon2Version {
		return Argon2Profile{}, nil, nil, fmt.Errorf("argon2: unsupported version %q", parts[2])
	}

	memory, iterations, parallelism, err := parseArgon2Params(parts[3])
	if err != nil {
		return Argon2Profile{}, nil, nil, err
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return Argon2Profile{}, nil, nil, fmt.Errorf("argon2: decode salt: %w", err)
	}

	digest, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return Argon2Profile{}, nil, nil, fmt.Errorf("argon2: decode digest: %w", err)
	}

	profile := Argon2Profile{
		Memory:      memory,
		Iterations:  iterations,
		Parallelism: parallelism,
		SaltLength:  uint32(len(salt)),
		KeyLength:   uint32(len(digest)),
	}
	if err := profile.validate(); err != nil {
		return Argon2Profile{}, nil, nil, err
	}

	return profile, salt, digest, nil
}

func parseArgon2Params(segment string) (uint32, uint32, uint8, error) {
	entries := strings.Split(segment, ",")
	if len(entries) != 3 {
		return 0, 0, 0, errInvalidHashFormat
	}

	var (
		memory      uint32
		iterations  uint32
		parallelism uint8
	)

	for _, entry := range entries {
		kv := strings.SplitN(entry, "=", 2)
		if len(kv) != 2 {
			return 0, 0, 0, errInvalidHashFormat
		}

		switch kv[0] {
		case "m":
			v, err := strconv.ParseUint(kv[1], 10, 32)
			if err != nil {
				return 0, 0, 0, fmt.Errorf("argon2: parse m: %w", err)
			}
			memory = uint32(v)
		case "t":
			v, err := strconv.ParseUint(kv[1], 10, 32)
			if err != nil {
				return 0, 0, 0, fmt.Errorf("argon2: parse t: %w", err)
			}
			iterations = uint32(v)
		case "p":
			v, err := strconv.ParseUint(kv[1], 10, 8)
			if err != nil {
				return 0, 0, 0, fmt.Errorf("argon2: parse p: %w", err)
			}
			parallelism = uint8(v)
		default:
			return 0, 0, 0, errInvalidHashFormat
		}
	}

	return memory, iterations, parallelism, nil
}
