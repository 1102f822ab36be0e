package config

import (
	_ "embed"
	"errors"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/encoding/yaml"
)

//go:embed config.cue
var configCue string

// validateBytes checks raw YAML against the `config` value of config.cue.
func validateBytes(raw []byte) error {
	cueCtx := cuecontext.New()
	schema := cueCtx.CompileString(configCue)
	if schema.Err() != nil {
		return fmt.Errorf("building config schema: %w", schema.Err())
	}

	yamlFile, err := yaml.Extract("<config>", raw)
	if err != nil {
		return fmt.Errorf("decode yaml to cue: %w", err)
	}

	data := cueCtx.BuildFile(yamlFile)
	if data.Err() != nil {
		return fmt.Errorf("building yaml cue value: %w", data.Err())
	}

	configField := schema.LookupPath(cue.ParsePath("config"))
	if !configField.Exists() {
		return errors.New("config value not found in schema")
	}

	if err := configField.Unify(data).Validate(); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}
	return nil
}
