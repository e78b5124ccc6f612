package identity

import (
	"testing"
)

// Hashing sits on the authentication hot path; these benchmarks track the
// cost of the deployed defaults so parameter changes are deliberate.

func BenchmarkPasswordHasher_Hash(b *testing.B) {
	hasher := DefaultPasswordHasher()
	password := "correct-horse-battery-staple"

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := hasher.Hash(password); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkPasswordHasher_Verify(b *testing.B) {
	hasher := DefaultPasswordHasher()
	password := "correct-horse-battery-staple"
	hash, err := hasher.Hash(password)
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		valid, err := hasher.Verify(password, hash)
		if err != nil || !valid {
			b.Fatalf("verify failed: %v", err)
		}
	}
}
