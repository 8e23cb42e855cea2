package toolerr

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestKindOf(t *testing.T) {
	cases := []struct {
		err  error
		want Kind
	}{
		{Validation("jadx.get-class-source", "class_name", "required"), KindValidation},
		{Security("jadx.rename-class", "reserved_identifier", "collides"), KindSecurity},
		{Confirmation("jadx.rename-class"), KindConfirmation},
		{Transport("shodan.host-info", "connection refused", nil), KindTransport},
		{Timeout("shodan.host-info", "deadline exceeded", nil), KindTimeout},
		{Tool("jadx.get-class-source", "class not found"), KindTool},
	}
	for _, c := range cases {
		if got := KindOf(c.err); got != c.want {
			t.Errorf("KindOf(%v) = %q, want %q", c.err, got, c.want)
		}
	}
}

func TestKindOf_Unclassified(t *testing.T) {
	if got := KindOf(nil); got != "" {
		t.Errorf("KindOf(nil) = %q, want empty", got)
	}
	if got := KindOf(errors.New("raw")); got != "" {
		t.Errorf("KindOf(raw) = %q, want empty", got)
	}
}

func TestKindOf_Wrapped(t *testing.T) {
	inner := Timeout("jadx.list-classes", "deadline exceeded", nil)
	wrapped := fmt.Errorf("batch slot 3: %w", inner)
	if got := KindOf(wrapped); got != KindTimeout {
		t.Errorf("classification must survive wrapping, got %q", got)
	}
}

func TestError_MessageShape(t *testing.T) {
	err := Security("jadx.export-sources", "path_containment", "resolves outside workspace")
	msg := err.Error()
	for _, part := range []string{"security_rejection", "jadx.export-sources", "path_containment"} {
		if !strings.Contains(msg, part) {
			t.Errorf("message %q missing %q", msg, part)
		}
	}
}

func TestRetryable(t *testing.T) {
	if !Retryable(Transport("s.o", "refused", nil)) || !Retryable(Timeout("s.o", "slow", nil)) {
		t.Error("transport and timeout failures are retryable")
	}
	if Retryable(Validation("s.o", "f", "bad")) || Retryable(Security("s.o", "r", "no")) {
		t.Error("validation and security failures are never retryable")
	}
}
