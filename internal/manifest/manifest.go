// Package manifest loads per-family response-compression settings from
// YAML. Truncation ceilings, the token heuristic, and output allow-lists
// are deliberately configuration, not constants: families differ in how
// much text one response may carry.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Family describes one wrapper family's compression profile.
type Family struct {
	Name          string              `yaml:"name"`
	TextCeiling   int                 `yaml:"textCeiling"`
	CharsPerToken int                 `yaml:"charsPerToken"`
	// Allow maps operation name to its output allow-list.
	Allow map[string][]string `yaml:"allow"`
}

// Set is the merged view of built-in defaults and on-disk overrides.
type Set struct {
	families map[string]Family
}

// Defaults returns the built-in family profiles.
func Defaults() map[string]Family {
	return map[string]Family{
		"jadx": {
			Name:          "jadx",
			TextCeiling:   8000,
			CharsPerToken: 4,
			Allow: map[string][]string{
				"get-class-source": {"class_name", "source", "language"},
				"list-classes":     {"classes", "total", "package"},
				"rename-class":     {"result", "class_name", "new_name"},
				"export-sources":   {"result", "output_dir", "file_count"},
			},
		},
		"shodan": {
			Name:          "shodan",
			TextCeiling:   2000,
			CharsPerToken: 4,
			Allow: map[string][]string{
				"host-info": {"ip", "org", "os", "ports", "hostnames", "country", "last_update", "vulns"},
			},
		},
		"webresearch": {
			Name:          "webresearch",
			TextCeiling:   12000,
			CharsPerToken: 4,
			Allow: map[string][]string{
				"fetch-page": {"url", "final_url", "status", "title", "text"},
			},
		},
	}
}

// Load merges YAML files from dir (*.yaml, *.yml) over the defaults. A
// missing or empty dir yields the defaults unchanged.
func Load(dir string) (*Set, error) {
	families := Defaults()
	if dir != "" {
		entries, err := os.ReadDir(dir)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read manifest dir %s: %w", dir, err)
		}
		for _, e := range entries {
			name := e.Name()
			if e.IsDir() || (!strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml")) {
				continue
			}
			data, err := os.ReadFile(filepath.Join(dir, name))
			if err != nil {
				return nil, fmt.Errorf("read manifest %s: %w", name, err)
			}
			var fam Family
			if err := yaml.Unmarshal(data, &fam); err != nil {
				return nil, fmt.Errorf("parse manifest %s: %w", name, err)
			}
			if fam.Name == "" {
				return nil, fmt.Errorf("manifest %s: missing family name", name)
			}
			families[fam.Name] = merge(families[fam.Name], fam)
		}
	}
	return &Set{families: families}, nil
}

// merge overlays non-zero fields of override onto base.
func merge(base, override Family) Family {
	out := base
	out.Name = override.Name
	if override.TextCeiling > 0 {
		out.TextCeiling = override.TextCeiling
	}
	if override.CharsPerToken > 0 {
		out.CharsPerToken = override.CharsPerToken
	}
	if len(override.Allow) > 0 {
		if out.Allow == nil {
			out.Allow = make(map[string][]string)
		}
		for op, allow := range override.Allow {
			out.Allow[op] = allow
		}
	}
	return out
}

// Family returns the profile for name, falling back to a conservative
// profile when the family is unknown.
func (s *Set) Family(name string) Family {
	if fam, ok := s.families[name]; ok {
		return fam
	}
	return Family{Name: name, TextCeiling: 4000, CharsPerToken: 4}
}
