// Package bootstrap writes a ready-to-run termfolio deployment directory:
// a config file, editable copies of the sample content, a Containerfile and
// a systemd unit.
package bootstrap

import (
	"bytes"
	"fmt"
	"io/fs"
	"net"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"

	"pkt.systems/termfolio/internal/appconfig"
	"pkt.systems/termfolio/internal/content"
)

const (
	configName        = "config.yaml"
	contentDirName    = "content"
	containerfileName = "Containerfile"
	serviceUnitName   = "termfolio.service"
	defaultBinPath    = "/usr/local/bin/termfolio"
)

// Options controls optional bootstrap behaviors.
type Options struct {
	Overwrite bool
	// BinPath is the binary the systemd unit starts.
	BinPath   string
	Overrides []ConfigOverride
}

// ConfigOverride sets one dotted config path, for example http.addr.
type ConfigOverride struct {
	Path  string
	Value any
}

// Paths reports where bootstrap wrote its outputs.
type Paths struct {
	ConfigPath    string
	ContentDir    string
	Containerfile string
	ServiceUnit   string
}

type templateData struct {
	ConfigFile string
	ConfigPath string
	ContentDir string
	KeyDir     string
	BinPath    string
	SSHPort    string
	HTTPPort   string
}

// ParseOverride parses key=value. The value is decoded as a YAML scalar so
// numbers and booleans keep their type.
func ParseOverride(raw string) (ConfigOverride, error) {
	key, value, ok := strings.Cut(raw, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return ConfigOverride{}, fmt.Errorf("config override %q: want key=value", raw)
	}
	var decoded any
	if err := yaml.Unmarshal([]byte(value), &decoded); err != nil || decoded == nil {
		decoded = value
	}
	return ConfigOverride{Path: key, Value: decoded}, nil
}

// Config returns the default config rooted at outputDir with overrides
// applied and validated.
func Config(outputDir string, overrides []ConfigOverride) (appconfig.Config, error) {
	cfg, err := appconfig.DefaultConfig()
	if err != nil {
		return appconfig.Config{}, err
	}
	cfg.ContentDir = filepath.Join(outputDir, contentDirName)
	cfg.SSH.HostKeyPath = filepath.Join(outputDir, "ssh", "host_ed25519")
	cfg, err = applyOverrides(cfg, overrides)
	if err != nil {
		return appconfig.Config{}, err
	}
	if err := appconfig.Validate(cfg); err != nil {
		return appconfig.Config{}, err
	}
	return cfg, nil
}

// Write renders the bundle into outputDir. Existing files are left alone
// unless opts.Overwrite is set.
func Write(outputDir string, opts Options) (Paths, error) {
	if strings.TrimSpace(outputDir) == "" {
		return Paths{}, fmt.Errorf("output directory is required")
	}
	root, err := filepath.Abs(outputDir)
	if err != nil {
		return Paths{}, err
	}
	paths := Paths{
		ConfigPath:    filepath.Join(root, configName),
		ContentDir:    filepath.Join(root, contentDirName),
		Containerfile: filepath.Join(root, containerfileName),
		ServiceUnit:   filepath.Join(root, serviceUnitName),
	}
	if !opts.Overwrite {
		check := []string{paths.ConfigPath, paths.Containerfile, paths.ServiceUnit}
		for _, name := range []string{content.ExperienceFile, content.ProjectsFile, content.LinksFile} {
			check = append(check, filepath.Join(paths.ContentDir, name))
		}
		for _, path := range check {
			if _, err := os.Stat(path); err == nil {
				return Paths{}, fmt.Errorf("file already exists: %s", path)
			}
		}
	}

	cfg, err := Config(root, opts.Overrides)
	if err != nil {
		return Paths{}, err
	}
	configYAML, err := yaml.Marshal(cfg)
	if err != nil {
		return Paths{}, err
	}
	binPath := strings.TrimSpace(opts.BinPath)
	if binPath == "" {
		binPath = defaultBinPath
	}
	data := templateData{
		ConfigFile: configName,
		ConfigPath: paths.ConfigPath,
		ContentDir: cfg.ContentDir,
		KeyDir:     filepath.Dir(cfg.SSH.HostKeyPath),
		BinPath:    binPath,
		SSHPort:    port(cfg.SSH.Addr),
		HTTPPort:   port(cfg.HTTP.Addr),
	}
	containerfile, err := renderTemplate("templates/Containerfile.tmpl", data)
	if err != nil {
		return Paths{}, err
	}
	unit, err := renderTemplate("templates/termfolio.service.tmpl", data)
	if err != nil {
		return Paths{}, err
	}

	if err := os.MkdirAll(paths.ContentDir, 0o755); err != nil {
		return Paths{}, err
	}
	if err := os.WriteFile(paths.ConfigPath, configYAML, 0o600); err != nil {
		return Paths{}, err
	}
	if err := copySample(paths.ContentDir); err != nil {
		return Paths{}, err
	}
	if err := os.WriteFile(paths.Containerfile, containerfile, 0o644); err != nil {
		return Paths{}, err
	}
	if err := os.WriteFile(paths.ServiceUnit, unit, 0o644); err != nil {
		return Paths{}, err
	}
	return paths, nil
}

func copySample(destDir string) error {
	sample := content.Sample()
	entries, err := fs.ReadDir(sample, ".")
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		data, err := fs.ReadFile(sample, entry.Name())
		if err != nil {
			return err
		}
		if err := os.WriteFile(filepath.Join(destDir, entry.Name()), data, 0o644); err != nil {
			return err
		}
	}
	return nil
}

func port(addr string) string {
	_, p, err := net.SplitHostPort(addr)
	if err != nil {
		return ""
	}
	return p
}

func renderTemplate(name string, data templateData) ([]byte, error) {
	raw, err := readEmbeddedFile(name)
	if err != nil {
		return nil, err
	}
	tpl, err := template.New(filepath.Base(name)).Parse(string(raw))
	if err != nil {
		return nil, fmt.Errorf("parse template %s: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render template %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

func applyOverrides(cfg appconfig.Config, overrides []ConfigOverride) (appconfig.Config, error) {
	if len(overrides) == 0 {
		return cfg, nil
	}
	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return cfg, err
	}
	var data map[string]any
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return cfg, err
	}
	for _, override := range overrides {
		if err := setOverrideValue(data, override.Path, override.Value); err != nil {
			return cfg, err
		}
	}
	updated, err := yaml.Marshal(data)
	if err != nil {
		return cfg, err
	}
	var next appconfig.Config
	if err := yaml.Unmarshal(updated, &next); err != nil {
		return cfg, fmt.Errorf("apply config overrides: %w", err)
	}
	return next, nil
}

func setOverrideValue(root map[string]any, path string, value any) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return fmt.Errorf("config override path is required")
	}
	parts := strings.Split(path, ".")
	node := root
	for i, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			return fmt.Errorf("invalid config override path %q", path)
		}
		next, ok := node[part]
		if !ok {
			return fmt.Errorf("config override %q: unknown key %q", path, part)
		}
		if i == len(parts)-1 {
			node[part] = value
			return nil
		}
		child, ok := next.(map[string]any)
		if !ok {
			return fmt.Errorf("config override %q: %q is not a map", path, part)
		}
		node = child
	}
	return nil
}
