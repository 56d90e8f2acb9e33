package auth

import (
	"strings"
	"testing"
)

func TestHashPassword(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("secret1")
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}

	if hash == "" {
		t.Fatal("Expected non-empty hash")
	}
	if hash == "secret1" {
		t.Fatal("Hash must not equal the plaintext")
	}
	if !strings.HasPrefix(hash, "$2") {
		t.Errorf("Expected bcrypt hash format, got %q", hash)
	}
}

func TestHashPassword_DistinctSalts(t *testing.T) {
	t.Parallel()

	first, err := HashPassword("secret1")
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	second, err := HashPassword("secret1")
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}

	if first == second {
		t.Error("Expected different hashes for the same password (random salt)")
	}
}

func TestVerifyPassword(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("secret1")
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}

	tests := []struct {
		name      string
		hash      string
		plaintext string
		want      bool
	}{
		{
			name:      "correct password",
			hash:      hash,
			plaintext: "secret1",
			want:      true,
		},
		{
			name:      "wrong password",
			hash:      hash,
			plaintext: "wrong",
			want:      false,
		},
		{
			name:      "empty hash for google-only account",
			hash:      "",
			plaintext: "secret1",
			want:      false,
		},
		{
			name:      "garbage hash",
			hash:      "not-a-bcrypt-hash",
			plaintext: "secret1",
			want:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := VerifyPassword(tt.hash, tt.plaintext); got != tt.want {
				t.Errorf("VerifyPassword() = %v, want %v", got, tt.want)
			}
		})
	}
}
