package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"bridgegen/internal/target"
)

const manifestFileName = "bridgegen.toml"

type projectManifest struct {
	Path   string
	Root   string
	Config manifestConfig
}

type manifestConfig struct {
	Module moduleConfig `toml:"module"`
	Target targetConfig `toml:"target"`
	Output outputConfig `toml:"output"`
}

type moduleConfig struct {
	Name   string `toml:"name"`
	Prefix string `toml:"prefix"`
	// Graphs are generated when no graph is given on the command line.
	Graphs []string `toml:"graphs"`
}

type targetConfig struct {
	Platform string `toml:"platform"`
}

type outputConfig struct {
	Dir         string `toml:"dir"`
	EmitBridges bool   `toml:"emit_bridges"`
}

func findManifest(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, manifestFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

func loadProjectManifest(startDir string) (*projectManifest, bool, error) {
	path, ok, err := findManifest(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	cfg, err := loadManifestConfig(path)
	if err != nil {
		return nil, true, err
	}
	return &projectManifest{Path: path, Root: filepath.Dir(path), Config: cfg}, true, nil
}

func loadManifestConfig(path string) (manifestConfig, error) {
	var cfg manifestConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return manifestConfig{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if !meta.IsDefined("module") {
		return manifestConfig{}, fmt.Errorf("%s: missing [module]", path)
	}
	if !meta.IsDefined("module", "name") || strings.TrimSpace(cfg.Module.Name) == "" {
		return manifestConfig{}, fmt.Errorf("%s: missing [module].name", path)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return manifestConfig{}, fmt.Errorf("%s: unknown key %q", path, undecoded[0].String())
	}
	if _, err := target.ParsePlatform(cfg.Target.Platform); err != nil {
		return manifestConfig{}, fmt.Errorf("%s: [target].platform: %w", path, err)
	}
	return cfg, nil
}

// graphPaths resolves the manifest's graph list against its directory.
func (m *projectManifest) graphPaths() []string {
	out := make([]string, 0, len(m.Config.Module.Graphs))
	for _, g := range m.Config.Module.Graphs {
		out = append(out, m.resolve(g))
	}
	return out
}

// outputDir resolves [output].dir; empty means the manifest directory.
func (m *projectManifest) outputDir() string {
	return m.resolve(m.Config.Output.Dir)
}

func (m *projectManifest) resolve(p string) string {
	if p == "" {
		return m.Root
	}
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(m.Root, filepath.FromSlash(p))
}
