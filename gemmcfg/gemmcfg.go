// Package gemmcfg loads named block-size presets from YAML, so a caller
// can pick a tuned blocking recipe by name instead of hand-assembling
// ctrl stages directly. Loading a config is never on the hot path: it
// happens once, at algorithm-assembly time.
package gemmcfg

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Blocking is one named cache/register blocking recipe: Mc/Kc/Nc size the
// partition stages, Mr/Nr size the register-blocked micro-kernel and its
// packed-panel layouts, and NThreads sizes the worker pool a SpawnThreads
// stage built from this config should start with.
type Blocking struct {
	Name     string `yaml:"name"`
	Mc       int    `yaml:"mc"`
	Kc       int    `yaml:"kc"`
	Nc       int    `yaml:"nc"`
	Mr       int    `yaml:"mr"`
	Nr       int    `yaml:"nr"`
	NThreads int    `yaml:"n_threads"`
}

// Set is a named collection of Blocking presets, as loaded from one YAML
// document.
type Set struct {
	Blockings []Blocking `yaml:"blockings"`
}

// Load parses a YAML document of the form:
//
//	blockings:
//	  - name: small
//	    mc: 120
//	    kc: 192
//	    nc: 768
//	    mr: 4
//	    nr: 12
//	    n_threads: 4
func Load(data []byte) (Set, error) {
	var s Set
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Set{}, fmt.Errorf("gemmcfg: parse: %w", err)
	}
	return s, nil
}

// Lookup returns the named preset, or false if no preset by that name is
// present in s.
func (s Set) Lookup(name string) (Blocking, bool) {
	for _, b := range s.Blockings {
		if b.Name == name {
			return b, true
		}
	}
	return Blocking{}, false
}

// Default is the blocking recipe used when a caller doesn't supply one,
// sized for a generic desktop-class cache hierarchy. It mirrors the
// L2/L3 split the retrieved source's own experimental harness used
// (Mc=120, Kc=192, Nc=768), not a number tuned for any specific machine.
var Default = Blocking{Name: "default", Mc: 120, Kc: 192, Nc: 768, Mr: 4, Nr: 12, NThreads: 1}
