// Package wrappers declares the built-in wrapper families. Each descriptor
// binds one tool-server operation to its input schema, security checks, and
// response-compression profile.
package wrappers

import (
	"github.com/toolgate/toolgate/internal/engine"
	"github.com/toolgate/toolgate/internal/filter"
	"github.com/toolgate/toolgate/internal/gate"
	"github.com/toolgate/toolgate/internal/manifest"
	"github.com/toolgate/toolgate/internal/validate"
)

// Jadx returns the reverse-engineering family: class source retrieval,
// class listings, confirmation-gated renames, and a workspace-bounded
// source export.
func Jadx(workspace string, fam manifest.Family) []*engine.Descriptor {
	spec := func(op string) filter.Spec {
		return filter.Spec{
			Allow:         fam.Allow[op],
			TextCeiling:   fam.TextCeiling,
			CharsPerToken: fam.CharsPerToken,
		}
	}

	return []*engine.Descriptor{
		{
			Server:      "jadx",
			Operation:   "get-class-source",
			Description: "Return the decompiled source of one class.",
			Input: &validate.Object{Fields: []validate.Field{
				{Name: "class_name", Type: validate.String, Required: true,
					Format: validate.FormatIdentifier, MaxLen: 500,
					Description: "Fully qualified class name"},
			}},
			Filter: spec("get-class-source"),
		},
		{
			Server:      "jadx",
			Operation:   "list-classes",
			Description: "List decompiled classes, optionally under one package.",
			Input: &validate.Object{Fields: []validate.Field{
				{Name: "package", Type: validate.String,
					Format: validate.FormatIdentifier, MaxLen: 500,
					Description: "Package prefix to filter on"},
				{Name: "limit", Type: validate.Int,
					Min: validate.IntPtr(1), Max: validate.IntPtr(1000),
					Description: "Maximum classes to return"},
			}},
			Filter: spec("list-classes"),
		},
		{
			Server:      "jadx",
			Operation:   "rename-class",
			Description: "Rename a decompiled class. Requires confirmation.",
			Input: &validate.Object{Fields: []validate.Field{
				{Name: "class_name", Type: validate.String, Required: true,
					Format: validate.FormatIdentifier, MaxLen: 500,
					Description: "Current fully qualified class name"},
				{Name: "new_name", Type: validate.String, Required: true,
					Format: validate.FormatIdentifier, MaxLen: 255,
					Description: "New class name"},
			}},
			Checks: []gate.Check{
				gate.ReservedIdentifier("new_name", gate.JavaReserved),
			},
			Filter:   spec("rename-class"),
			Mutating: true,
			Preview: func(args map[string]any) (map[string]any, map[string]any) {
				return map[string]any{"class_name": args["class_name"]},
					map[string]any{"class_name": args["new_name"]}
			},
		},
		{
			Server:      "jadx",
			Operation:   "export-sources",
			Description: "Export all decompiled sources to a workspace directory. Requires confirmation.",
			Input: &validate.Object{Fields: []validate.Field{
				{Name: "output_dir", Type: validate.String, Required: true, MaxLen: 1000,
					Description: "Destination directory inside the workspace"},
			}},
			Checks: []gate.Check{
				gate.PathWithin(workspace, "output_dir"),
				gate.NoShellMeta("output_dir"),
			},
			Filter:   spec("export-sources"),
			Mutating: true,
			Preview: func(args map[string]any) (map[string]any, map[string]any) {
				return nil, map[string]any{"output_dir": args["output_dir"]}
			},
		},
	}
}
