package middleware

import (
	"encoding/json"
	"testing"
)

func TestRedactAuditBodyVault(t *testing.T) {
	body := []byte(`{"amount":1000,"signature":"0xdead","nested":{"admin_key":"k","admin_secret_key":"s","private_key":"p"}}`)
	out := redactAuditBody("/v1/vault/deposit", body)

	var data map[string]interface{}
	if err := json.Unmarshal([]byte(out), &data); err != nil {
		t.Fatalf("invalid json output: %v", err)
	}
	if data["signature"] == "0xdead" {
		t.Fatalf("signature not redacted")
	}
	if data["amount"] != float64(1000) {
		t.Fatalf("non-sensitive field mangled: %v", data["amount"])
	}
	if nested, ok := data["nested"].(map[string]interface{}); ok {
		if nested["admin_key"] == "k" || nested["admin_secret_key"] == "s" || nested["private_key"] == "p" {
			t.Fatalf("nested secrets not redacted")
		}
	}
}

func TestRedactAuditBodyNonSensitivePath(t *testing.T) {
	body := []byte(`{"ok":true}`)
	out := redactAuditBody("/health", body)
	if out != string(body) {
		t.Fatalf("unexpected redaction on non-sensitive path")
	}
}

func TestRedactAuditBodyInvalidJSON(t *testing.T) {
	body := []byte("not-json")
	out := redactAuditBody("/v1/registry/venues", body)
	if out != "[redacted]" {
		t.Fatalf("expected redacted placeholder for invalid json")
	}
}
