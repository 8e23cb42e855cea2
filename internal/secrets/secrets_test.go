package secrets

import (
	"strings"
	"testing"
)

func TestGetSecret_EnvWins(t *testing.T) {
	t.Setenv("TOOLGATE_SECRET_SHODAN_API", "from-env")
	s := New(map[string]string{"shodan-api": "from-config"})

	v, err := s.GetSecret("shodan-api")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != "from-env" {
		t.Errorf("expected env value, got %q", v)
	}
}

func TestGetSecret_ConfigFallback(t *testing.T) {
	s := New(map[string]string{"slack-bot": "xoxb-123"})
	v, err := s.GetSecret("slack-bot")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != "xoxb-123" {
		t.Errorf("expected config value, got %q", v)
	}
}

func TestGetSecret_DottedName(t *testing.T) {
	t.Setenv("TOOLGATE_SECRET_JADX_RPC_TOKEN", "tok")
	s := New(nil)
	v, err := s.GetSecret("jadx.rpc-token")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != "tok" {
		t.Errorf("expected env value for dotted name, got %q", v)
	}
}

func TestGetSecret_MissingNeverLeaksValues(t *testing.T) {
	s := New(map[string]string{"other": "sensitive-value"})
	_, err := s.GetSecret("absent")
	if err == nil {
		t.Fatal("expected error for missing secret")
	}
	if strings.Contains(err.Error(), "sensitive-value") {
		t.Error("error text must never contain secret values")
	}
}
