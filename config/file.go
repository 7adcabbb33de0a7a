package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	ncerr "chalc/internal/errors"
)

// fileConfig is the on-disk YAML layout.  Pointer fields distinguish
// "absent" from the zero value, so a file only overrides what it names.
type fileConfig struct {
	Host       *string `yaml:"host"`
	Port       *int    `yaml:"port"`
	Identifier *string `yaml:"id"`
	Timeout    *string `yaml:"timeout"` // Go duration, e.g. "10s"

	Tunnel        *string `yaml:"tunnel"`
	SSHKey        *string `yaml:"ssh_key"`
	SSHPassword   *bool   `yaml:"ssh_password"`
	SSHAgent      *bool   `yaml:"ssh_agent"`
	StrictHostKey *bool   `yaml:"strict_hostkey"`
	KnownHosts    *string `yaml:"known_hosts"`

	Verbose     *int    `yaml:"verbose"`
	Stats       *bool   `yaml:"stats"`
	MetricsFile *string `yaml:"metrics_file"`
}

// LoadFile overlays the YAML file at path onto cfg.  Unknown keys are
// rejected so that a typo does not silently fall back to a default.
// An empty file is valid and changes nothing.
func LoadFile(cfg *Config, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return &ncerr.ConfigError{Field: "config", Value: path, Message: err.Error()}
	}
	defer f.Close()

	var fc fileConfig
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil && !errors.Is(err, io.EOF) {
		return &ncerr.ConfigError{
			Field:   "config",
			Value:   path,
			Message: err.Error(),
			Hint:    "see `chalc --help` for the supported keys",
		}
	}
	return fc.apply(cfg)
}

func (fc *fileConfig) apply(cfg *Config) error {
	setString(&cfg.Host, fc.Host)
	setInt(&cfg.Port, fc.Port)
	setString(&cfg.Identifier, fc.Identifier)
	if fc.Timeout != nil {
		d, err := time.ParseDuration(*fc.Timeout)
		if err != nil {
			return &ncerr.ConfigError{
				Field:   "timeout",
				Value:   *fc.Timeout,
				Message: fmt.Sprintf("not a duration: %v", err),
				Hint:    `write it as "10s" or "1m30s"`,
			}
		}
		cfg.Timeout = d
	}

	setString(&cfg.TunnelSpec, fc.Tunnel)
	setString(&cfg.SSHKeyPath, fc.SSHKey)
	setBool(&cfg.SSHPassword, fc.SSHPassword)
	setBool(&cfg.UseSSHAgent, fc.SSHAgent)
	setBool(&cfg.StrictHostKey, fc.StrictHostKey)
	setString(&cfg.KnownHostsPath, fc.KnownHosts)

	setInt(&cfg.Verbose, fc.Verbose)
	setBool(&cfg.Stats, fc.Stats)
	setString(&cfg.MetricsFile, fc.MetricsFile)
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}
