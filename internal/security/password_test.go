package security_test

import (
	"testing"

	"github.com/tazhibayda/postpilot-backend/internal/security"
)

func TestPasswordHashAndCheck(t *testing.T) {
	h, err := security.HashPassword("Secret123!")
	if err != nil {
		t.Fatal(err)
	}
	if h == "Secret123!" {
		t.Fatal("hash equals plaintext")
	}
	if !security.CheckPassword(h, "Secret123!") {
		t.Fatal("correct password rejected")
	}
	if security.CheckPassword(h, "wrong") {
		t.Fatal("wrong password accepted")
	}

	// per-hash salt
	h2, err := security.HashPassword("Secret123!")
	if err != nil {
		t.Fatal(err)
	}
	if h == h2 {
		t.Fatal("two hashes of the same password are identical")
	}
}
