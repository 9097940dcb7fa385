// Package demo embeds two ready-made attack trees for a retail incident
// scenario, one before and one after a round of hardening. They seed the
// server and give the CLI something to show without user input.
package demo

import (
	"embed"
	"fmt"
	"sort"
	"strings"

	"canopy/pkg/decode"
	"canopy/pkg/domain"
	"canopy/pkg/spec"
)

//go:embed *.yaml
var scenarios embed.FS

// Load returns the named scenario ("pre" or "post") as a fresh
// Specification.
func Load(name string) (*domain.Specification, error) {
	data, err := scenarios.ReadFile(name + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("unknown demo scenario %q (have %s)", name, strings.Join(Names(), ", "))
	}
	v, err := decode.Decode(data, "yaml")
	if err != nil {
		return nil, err
	}
	return spec.Normalize(v)
}

// Names lists the available scenarios, sorted.
func Names() []string {
	entries, err := scenarios.ReadDir(".")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".yaml"))
	}
	sort.Strings(names)
	return names
}
