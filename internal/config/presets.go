package config

import (
	"sort"

	"github.com/san-kum/tankersim/internal/scenario"
)

// Presets build named configurations on top of the defaults.
var Presets = map[string]func() *Config{
	"train": func() *Config {
		c := DefaultConfig()
		c.Name = "train"
		c.Scenario.Current = true
		c.Scenario.Wind = true
		return c
	},
	"validate": func() *Config {
		c := DefaultConfig()
		c.Name = "validate"
		c.Mode = "validate"
		c.Steps = 1000
		return c
	},
	"shoal": func() *Config {
		c := DefaultConfig()
		c.Name = "shoal"
		c.Policy = "hold"
		c.Steps = 300
		c.Scenario.Waypoints = 200
		c.Scenario.Depth = scenario.DepthConfig{Kind: scenario.DepthShoal, Value: 8, Waypoint: 40, Radius: 0.03}
		return c
	},
	"current": func() *Config {
		c := DefaultConfig()
		c.Name = "current"
		c.Scenario.Current = true
		c.Scenario.Seed = 7
		return c
	},
	"zigzag": func() *Config {
		c := DefaultConfig()
		c.Name = "zigzag"
		c.Policy = "script"
		c.Steps = 200
		c.Params.Script = []int{1, 1, 1, 1, 0, 0, 0, 0, 2, 2, 2, 2, 2, 2, 2, 2, 0, 0, 0, 0, 1, 1, 1, 1}
		c.Params.Loop = true
		return c
	},
}

// GetPreset returns a fresh copy of the named preset, nil if unknown.
func GetPreset(name string) *Config {
	fn, ok := Presets[name]
	if !ok {
		return nil
	}
	return fn()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
