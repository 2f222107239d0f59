package helpers

import "testing"

func TestHashAndComparePassword(t *testing.T) {
	hash, err := HashPassword("hunter22")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "hunter22" {
		t.Fatal("hash equals plaintext")
	}
	if !CompareHashAndPassword(hash, "hunter22") {
		t.Fatal("correct password rejected")
	}
	if CompareHashAndPassword(hash, "wrong") {
		t.Fatal("wrong password accepted")
	}
	if CompareHashAndPassword("", "hunter22") {
		t.Fatal("empty hash accepted; OAuth accounts must never pass password login")
	}
}
