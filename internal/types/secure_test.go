package types

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"
)

func TestSecretString_StringIsRedacted(t *testing.T) {
	s := SecretString("sk_live_supersecret")

	if s.String() != "***REDACTED***" {
		t.Errorf("String() = %q", s.String())
	}
	if out := fmt.Sprintf("key=%s", s); strings.Contains(out, "supersecret") {
		t.Errorf("fmt leaked the secret: %q", out)
	}
	if out := fmt.Sprintf("%v", s); strings.Contains(out, "supersecret") {
		t.Errorf("%%v leaked the secret: %q", out)
	}
}

func TestSecretString_MarshalJSONIsRedacted(t *testing.T) {
	payload := struct {
		Key SecretString `json:"key"`
	}{Key: "sk_live_supersecret"}

	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(raw), "supersecret") {
		t.Errorf("JSON leaked the secret: %s", raw)
	}
	if !strings.Contains(string(raw), "***REDACTED***") {
		t.Errorf("expected redacted placeholder, got %s", raw)
	}
}

func TestSecretString_Unmask(t *testing.T) {
	s := SecretString("sk_live_supersecret")
	if s.Unmask() != "sk_live_supersecret" {
		t.Errorf("Unmask() = %q", s.Unmask())
	}
}
