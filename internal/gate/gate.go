// Package gate implements the security checks that run after schema
// validation. Checks operate on well-typed input only; schema validation
// rejects type errors first so the semantically expensive rules here never
// see malformed values.
package gate

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/toolgate/toolgate/internal/toolerr"
)

// Check inspects validated input and reports a SecurityRejection naming the
// violated rule, or nil. Checks never modify the input.
type Check func(tool string, args map[string]any) error

// Run applies checks in order and stops at the first rejection.
func Run(tool string, args map[string]any, checks []Check) error {
	for _, c := range checks {
		if err := c(tool, args); err != nil {
			return err
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Path containment
// ---------------------------------------------------------------------------

// PathWithin rejects any of the named path fields that resolve outside root,
// whether via relative traversal or absolute-path substitution. Symlinks are
// resolved when the path exists; otherwise the lexical clean is checked.
func PathWithin(root string, fields ...string) Check {
	return func(tool string, args map[string]any) error {
		rootResolved, err := filepath.EvalSymlinks(root)
		if err != nil {
			rootResolved = filepath.Clean(root)
		}
		for _, name := range fields {
			raw, ok := args[name].(string)
			if !ok || raw == "" {
				continue
			}
			p := raw
			if !filepath.IsAbs(p) {
				p = filepath.Join(rootResolved, p)
			}
			resolved, err := filepath.EvalSymlinks(p)
			if err != nil {
				// Path may not exist yet (for writes); fall back to Clean.
				resolved = filepath.Clean(p)
			}
			if !within(rootResolved, resolved) {
				return toolerr.Security(tool, "path_containment",
					fmt.Sprintf("%s %q resolves outside workspace %s", name, raw, root))
			}
		}
		return nil
	}
}

// within reports whether path is root or a descendant of root, on path
// component boundaries.
func within(root, path string) bool {
	if path == root {
		return true
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// ---------------------------------------------------------------------------
// Identifier blacklist
// ---------------------------------------------------------------------------

// JavaReserved lists the keywords and literals a renamed Java artifact must
// never collide with.
var JavaReserved = []string{
	"abstract", "assert", "boolean", "break", "byte", "case", "catch",
	"char", "class", "const", "continue", "default", "do", "double",
	"else", "enum", "extends", "final", "finally", "float", "for",
	"goto", "if", "implements", "import", "instanceof", "int",
	"interface", "long", "native", "new", "package", "private",
	"protected", "public", "return", "short", "static", "strictfp",
	"super", "switch", "synchronized", "this", "throw", "throws",
	"transient", "try", "void", "volatile", "while",
	"true", "false", "null",
}

// ReservedIdentifier rejects the named field when its value (or the last
// dotted segment of it) collides with a reserved word.
func ReservedIdentifier(field string, reserved []string) Check {
	set := make(map[string]struct{}, len(reserved))
	for _, w := range reserved {
		set[w] = struct{}{}
	}
	return func(tool string, args map[string]any) error {
		v, ok := args[field].(string)
		if !ok || v == "" {
			return nil
		}
		segments := strings.Split(v, ".")
		for _, seg := range segments {
			if _, hit := set[strings.ToLower(seg)]; hit {
				return toolerr.Security(tool, "reserved_identifier",
					fmt.Sprintf("%s %q collides with reserved keyword %q", field, v, seg))
			}
		}
		return nil
	}
}

// ---------------------------------------------------------------------------
// Injection pattern rejection
// ---------------------------------------------------------------------------

// injectionPatterns cover shell metacharacters and command substitution for
// inputs that will ultimately reach a command line or templated query.
var injectionPatterns = []*regexp.Regexp{
	regexp.MustCompile("[;&|`\r\n]"),
	regexp.MustCompile(`\$\(`),
	regexp.MustCompile(`\$\{`),
	regexp.MustCompile(`>\s*/`),
}

// NoShellMeta rejects the named fields when they contain shell
// metacharacters or substitution syntax.
func NoShellMeta(fields ...string) Check {
	return func(tool string, args map[string]any) error {
		for _, name := range fields {
			v, ok := args[name].(string)
			if !ok || v == "" {
				continue
			}
			for _, p := range injectionPatterns {
				if p.MatchString(v) {
					return toolerr.Security(tool, "injection_pattern",
						fmt.Sprintf("%s contains shell metacharacters", name))
				}
			}
		}
		return nil
	}
}
