// Package config loads the agentic loop's runtime tunables from an
// optional TOML file, following the teacher's koanf-based configuration
// pattern. It deliberately does not cover credentials, OAuth, or the
// model catalog — those remain external collaborators per the core's
// scope.
package config

import (
	"fmt"
	"os"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Loop holds the tunables of the Agentic Loop and its collaborators.
type Loop struct {
	// MaxSteps bounds the number of loop iterations in a single turn.
	MaxSteps int `koanf:"max_steps" toml:"max_steps"`
	// EventChannelCapacity is the bounded capacity of the Streaming
	// Client's event channel.
	EventChannelCapacity int `koanf:"event_channel_capacity" toml:"event_channel_capacity"`
	// BusTopicCapacity is the bounded per-topic capacity of the Event Bus.
	BusTopicCapacity int `koanf:"bus_topic_capacity" toml:"bus_topic_capacity"`
	// DoomLoopThreshold is K, the number of identical consecutive calls
	// that trigger the Doom-Loop Detector.
	DoomLoopThreshold int `koanf:"doom_loop_threshold" toml:"doom_loop_threshold"`
	// MaxOutputSize is the tool output truncation byte budget.
	MaxOutputSize int `koanf:"max_output_size" toml:"max_output_size"`
	// MaxOutputLines is the tool output truncation line budget.
	MaxOutputLines int `koanf:"max_output_lines" toml:"max_output_lines"`
	// ShellTimeoutSeconds bounds subprocess execution inside shell-like
	// tools.
	ShellTimeoutSeconds int `koanf:"shell_timeout_seconds" toml:"shell_timeout_seconds"`
}

// Default returns the tunables' documented defaults.
func Default() Loop {
	return Loop{
		MaxSteps:             10,
		EventChannelCapacity: 100,
		BusTopicCapacity:     1000,
		DoomLoopThreshold:    3,
		MaxOutputSize:        50 * 1024,
		MaxOutputLines:       2000,
		ShellTimeoutSeconds:  120,
	}
}

// Load reads path (if it exists) over the defaults. A missing file is not
// an error; unknown keys in the file are ignored by koanf's merge.
func Load(path string) (Loop, error) {
	cfg := Default()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
		return cfg, fmt.Errorf("config: load %s: %w", path, err)
	}
	if err := k.Unmarshal("", &cfg); err != nil {
		return cfg, fmt.Errorf("config: unmarshal %s: %w", path, err)
	}
	return cfg, nil
}
