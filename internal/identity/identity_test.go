package identity

import (
	"testing"
)

const testKey = "59c6995e998f97a5a0044966f0945389dc9e86dae88c7a8412f4603b6b78690d"

func TestSignRecoverRoundTrip(t *testing.T) {
	body := []byte(`{"amount":1000,"risk_tolerance":5}`)

	sig, err := Sign(body, testKey)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	addr, err := AddressOf(testKey)
	if err != nil {
		t.Fatalf("address derivation failed: %v", err)
	}

	recovered, err := Recover(body, sig)
	if err != nil {
		t.Fatalf("recover failed: %v", err)
	}
	if !Equal(recovered, addr) {
		t.Fatalf("recovered %s, want %s", recovered, addr)
	}
}

func TestRecoverRejectsTamperedBody(t *testing.T) {
	body := []byte(`{"amount":1000}`)
	sig, err := Sign(body, testKey)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	addr, _ := AddressOf(testKey)
	recovered, err := Recover([]byte(`{"amount":9999}`), sig)
	if err == nil && Equal(recovered, addr) {
		t.Fatalf("tampered body recovered the signer address")
	}
}

func TestRecoverRejectsGarbage(t *testing.T) {
	if _, err := Recover([]byte("x"), "0xzz"); err == nil {
		t.Fatal("expected encoding error")
	}
	if _, err := Recover([]byte("x"), "0x1234"); err == nil {
		t.Fatal("expected length error")
	}
}

func TestEqualHexAddresses(t *testing.T) {
	a := "0x5B38Da6a701c568545dCfcB03FcB875f56beddC4"
	if !Equal(a, "0x5b38da6a701c568545dcfcb03fcb875f56beddc4") {
		t.Fatal("case-insensitive hex comparison failed")
	}
	if Equal(a, "0x0000000000000000000000000000000000000001") {
		t.Fatal("distinct addresses compared equal")
	}
	if !Equal("alice", "alice") || Equal("alice", "bob") {
		t.Fatal("opaque identity comparison failed")
	}
}
