package wrappers

import (
	"github.com/toolgate/toolgate/internal/engine"
	"github.com/toolgate/toolgate/internal/manifest"
)

// All registers every built-in family into a fresh registry.
func All(workspace string, manifests *manifest.Set) (*engine.Registry, error) {
	reg := engine.NewRegistry()

	var descriptors []*engine.Descriptor
	descriptors = append(descriptors, Jadx(workspace, manifests.Family("jadx"))...)
	descriptors = append(descriptors, Shodan(manifests.Family("shodan"))...)
	descriptors = append(descriptors, WebResearch(manifests.Family("webresearch"))...)

	for _, d := range descriptors {
		if err := reg.Register(d); err != nil {
			return nil, err
		}
	}
	return reg, nil
}
