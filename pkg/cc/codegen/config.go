// Package codegen lowers optimizer IR functions through asmcmp into
// xasmgen text, selecting TLS access sequences, constant materialization
// strategy, and call-site register stashing along the way.
package codegen

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Syntax selects which xasmgen dialect the generator emits.
type Syntax string

const (
	SyntaxIntelNoPrefix Syntax = "intel"
	SyntaxIntelPrefix   Syntax = "intel-prefix"
	SyntaxATT           Syntax = "att"
)

// Config carries every knob the code generator recognises at
// initialization, loadable from a YAML file the way a real driver would
// hand configuration down to the core.
type Config struct {
	Syntax              Syntax `yaml:"syntax"`
	PositionIndependent bool   `yaml:"position_independent"`
	EmulatedTLS         bool   `yaml:"emulated_tls"`
	EmitComments        bool   `yaml:"emit_comments"`
	EmitIndentation     bool   `yaml:"emit_indentation"`
	OptimizationLevel   int    `yaml:"optimization_level"`
	DebugInfo           bool   `yaml:"debug_info"`
}

// DefaultConfig matches kefir's own defaults: non-PIC, native (not
// emulated) TLS, comments on, optimization level 0.
func DefaultConfig() Config {
	return Config{
		Syntax:           SyntaxATT,
		EmitComments:     true,
		EmitIndentation:  true,
	}
}

// LoadConfig reads a YAML configuration file, defaulting unset fields.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
