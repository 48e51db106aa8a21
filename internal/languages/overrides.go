package languages

import (
	"fmt"
	"os"
	"time"

	"github.com/google/shlex"
	"gopkg.in/yaml.v3"
)

type overrideFile struct {
	Languages map[string]override `yaml:"languages"`
}

type override struct {
	Image          string   `yaml:"image"`
	Compile        string   `yaml:"compile"`
	Run            string   `yaml:"run"`
	CompileTimeout string   `yaml:"compile_timeout"`
	RunTimeout     string   `yaml:"run_timeout"`
	Env            []string `yaml:"env"`
}

// LoadOverrides applies a YAML file of per-language runtime overrides.
// Only languages already registered may be overridden; empty fields keep
// their current value.
func (r *Registry) LoadOverrides(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read language overrides: %w", err)
	}
	return r.ApplyOverrides(data)
}

func (r *Registry) ApplyOverrides(data []byte) error {
	var file overrideFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse language overrides: %w", err)
	}

	for id, o := range file.Languages {
		lang, err := r.Get(id)
		if err != nil {
			return fmt.Errorf("override for %q: %w", id, err)
		}
		if err := o.apply(&lang.Config); err != nil {
			return fmt.Errorf("override for %q: %w", id, err)
		}
		r.Register(lang)
	}
	return nil
}

func (o override) apply(cfg *RuntimeConfig) error {
	if o.Image != "" {
		cfg.Image = o.Image
	}
	if o.Compile != "" {
		cmd, err := shlex.Split(o.Compile)
		if err != nil {
			return fmt.Errorf("invalid compile command: %w", err)
		}
		cfg.CompileCommand = cmd
	}
	if o.Run != "" {
		cmd, err := shlex.Split(o.Run)
		if err != nil {
			return fmt.Errorf("invalid run command: %w", err)
		}
		cfg.RunCommand = cmd
	}
	if o.CompileTimeout != "" {
		d, err := time.ParseDuration(o.CompileTimeout)
		if err != nil {
			return fmt.Errorf("invalid compile timeout: %w", err)
		}
		cfg.CompileTimeout = d
	}
	if o.RunTimeout != "" {
		d, err := time.ParseDuration(o.RunTimeout)
		if err != nil {
			return fmt.Errorf("invalid run timeout: %w", err)
		}
		cfg.RunTimeout = d
	}
	if len(o.Env) > 0 {
		cfg.Env = o.Env
	}
	return nil
}
