package security

import (
	"strings"
	"testing"
)

func TestGenerateAlphanumericLengthAndAlphabet(t *testing.T) {
	for _, length := range []int{1, 7, 69, 96} {
		secret, err := GenerateAlphanumeric(length)
		if err != nil {
			t.Fatalf("GenerateAlphanumeric(%d) returned error: %v", length, err)
		}
		if len(secret) != length {
			t.Fatalf("GenerateAlphanumeric(%d) returned %d characters", length, len(secret))
		}
		for _, r := range secret {
			if !strings.ContainsRune(alphanumericAlphabet, r) {
				t.Fatalf("secret contains non-alphanumeric character %q", r)
			}
		}
	}
}

func TestGenerateAlphanumericSuccessiveCallsDiffer(t *testing.T) {
	first, err := GenerateAlphanumeric(96)
	if err != nil {
		t.Fatalf("GenerateAlphanumeric returned error: %v", err)
	}
	second, err := GenerateAlphanumeric(96)
	if err != nil {
		t.Fatalf("GenerateAlphanumeric returned error: %v", err)
	}
	if first == second {
		t.Fatal("two 96-character secrets were identical")
	}
}

func TestGenerateAlphanumericRejectsNonPositiveLength(t *testing.T) {
	if _, err := GenerateAlphanumeric(0); err == nil {
		t.Fatal("expected error for zero length")
	}
	if _, err := GenerateAlphanumeric(-5); err == nil {
		t.Fatal("expected error for negative length")
	}
}
