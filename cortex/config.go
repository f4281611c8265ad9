package cortex

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config is the Cortex's bootstrap configuration: root neuron name,
// resource search path, and which observability flags start enabled.
// Loaded from an optional xepl.yaml; programs that don't supply one run
// with DefaultConfig().
type Config struct {
	RootName         string   `yaml:"root_name"`
	ResourcePaths    []string `yaml:"resource_paths"`
	ShowTrace        bool     `yaml:"show_trace"`
	ShowCounters     bool     `yaml:"show_counters"`
	ShowMemoryCounts bool     `yaml:"show_memory_counts"`
}

// DefaultConfig is the compiled-in configuration used when no xepl.yaml is
// present.
func DefaultConfig() Config {
	return Config{
		RootName:      "root",
		ResourcePaths: []string{"./resources"},
	}
}

// LoadConfig reads and parses an xepl.yaml at path, layered over
// DefaultConfig for any field the file omits.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrapf(err, "reading cortex config %q", path)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "parsing cortex config %q", path)
	}
	return cfg, nil
}
