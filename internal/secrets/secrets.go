// Package secrets supplies credentials to the transport layer. Values come
// from the environment first, then from the config secrets map. They are
// handed out only through GetSecret and must never be logged or included in
// outputs or audit entries.
package secrets

import (
	"fmt"
	"os"
	"strings"

	"github.com/toolgate/toolgate/internal/schema"
)

// envPrefix namespaces the environment lookup: a secret named "shodan-api"
// is read from TOOLGATE_SECRET_SHODAN_API.
const envPrefix = "TOOLGATE_SECRET_"

// Source resolves named secrets.
type Source struct {
	stored map[string]string
}

var _ schema.SecretSource = (*Source)(nil)

// New builds a Source over the config-provided secrets map. The map may be
// nil; environment variables still resolve.
func New(stored map[string]string) *Source {
	return &Source{stored: stored}
}

// GetSecret returns the named secret or an error naming the lookup paths
// that were tried. The error never contains a secret value.
func (s *Source) GetSecret(name string) (string, error) {
	envKey := envPrefix + strings.ToUpper(strings.NewReplacer("-", "_", ".", "_").Replace(name))
	if v := os.Getenv(envKey); v != "" {
		return v, nil
	}
	if v, ok := s.stored[name]; ok && v != "" {
		return v, nil
	}
	return "", fmt.Errorf("secret %q not found (checked %s and config secrets)", name, envKey)
}
