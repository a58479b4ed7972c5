package secret

import "testing"

func TestSealOpenRoundTrip(t *testing.T) {
	sealed, err := Seal("hunter2", "sqlite:hygge_audit.db")
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	got, err := Open("hunter2", sealed)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if got != "sqlite:hygge_audit.db" {
		t.Fatalf("got %q, want original plaintext", got)
	}
}

func TestOpenRejectsWrongPassphrase(t *testing.T) {
	sealed, err := Seal("hunter2", "postgres://user:pw@host/db")
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	if _, err := Open("not-the-passphrase", sealed); err == nil {
		t.Fatal("expected the wrong passphrase to fail GCM authentication")
	}
}

func TestSealProducesDistinctCiphertextsForSamePlaintext(t *testing.T) {
	a, err := Seal("p", "same")
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	b, err := Seal("p", "same")
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	if a == b {
		t.Fatal("expected fresh salt and nonce to randomize the ciphertext each call")
	}
}
