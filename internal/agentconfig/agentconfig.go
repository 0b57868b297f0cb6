// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package agentconfig manages Agent configuration templates and the working
// copies mounted into QA environments.
package agentconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/DataDog/datadog-agent-dev-sub000/internal/config"
	"github.com/DataDog/datadog-agent-dev-sub000/internal/logger"
	"github.com/DataDog/datadog-agent-dev-sub000/pkg/transfer"
)

const (
	// DefaultTemplate is created empty on first use.
	DefaultTemplate = "default"
	// ScrubPlaceholder replaces secrets when displaying a config.
	ScrubPlaceholder = "*****"

	mainFile        = "datadog.yaml"
	integrationsDir = "integrations"
)

// Orgs resolves the credentials a config inherits through `inherit_org`.
type Orgs struct {
	Configs map[string]config.OrgConfig
	// Getenv is consulted when the org leaves a value empty.
	Getenv func(string) string
}

func (o Orgs) lookup(name string) config.OrgConfig {
	return o.Configs[name]
}

func (o Orgs) env(name string) string {
	if o.Getenv == nil {
		return os.Getenv(name)
	}
	return o.Getenv(name)
}

// Templates is the directory of named agent config templates.
type Templates struct {
	root string
	orgs Orgs
}

// NewTemplates returns the templates stored below dataDir.
func NewTemplates(dataDir string, orgs Orgs) *Templates {
	return &Templates{root: filepath.Join(dataDir, "env", "config", "templates"), orgs: orgs}
}

// RootDir is the directory holding one subdirectory per template.
func (t *Templates) RootDir() string {
	return t.root
}

// Get returns the named template whether it exists or not.
func (t *Templates) Get(name string) *AgentConfig {
	return New(filepath.Join(t.root, name), t.orgs)
}

// List returns existing templates sorted by name.
func (t *Templates) List() ([]*AgentConfig, error) {
	entries, err := os.ReadDir(t.root)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}

	var templates []*AgentConfig
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if template := t.Get(entry.Name()); template.Exists() {
			templates = append(templates, template)
		}
	}
	return templates, nil
}

// Resolve returns the named template. The default template is created on
// demand, any other must already exist.
func (t *Templates) Resolve(name string) (*AgentConfig, error) {
	template := t.Get(name)
	if template.Exists() {
		return template, nil
	}
	if name != DefaultTemplate {
		return nil, fmt.Errorf("Agent config template not found: %s", name)
	}
	if err := template.RestoreDefaults(); err != nil {
		return nil, err
	}
	return template, nil
}

// AgentConfig is a directory with a datadog.yaml and integration configs
// below integrations/<name>/.
type AgentConfig struct {
	root string
	orgs Orgs
}

// New returns the agent config rooted at path.
func New(path string, orgs Orgs) *AgentConfig {
	return &AgentConfig{root: path, orgs: orgs}
}

func (c *AgentConfig) Name() string {
	return filepath.Base(c.root)
}

func (c *AgentConfig) RootDir() string {
	return c.root
}

func (c *AgentConfig) Path() string {
	return filepath.Join(c.root, mainFile)
}

func (c *AgentConfig) IntegrationsDir() string {
	return filepath.Join(c.root, integrationsDir)
}

// Exists reports whether the main config file is present.
func (c *AgentConfig) Exists() bool {
	info, err := os.Stat(c.Path())
	return err == nil && info.Mode().IsRegular()
}

// Load reads the main config, applying org inheritance. A missing file is
// an empty config.
func (c *AgentConfig) Load() (map[string]any, error) {
	config := map[string]any{}

	data, err := os.ReadFile(c.Path())
	switch {
	case err == nil:
		config, err = Decode(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", c.Path(), err)
		}
	case !errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("failed to read %s: %w", c.Path(), err)
	}

	c.inheritOrg(config)
	return config, nil
}

// LoadScrubbed is Load with secrets replaced for display.
func (c *AgentConfig) LoadScrubbed() (map[string]any, error) {
	config, err := c.Load()
	if err != nil {
		return nil, err
	}
	for _, key := range []string{"api_key", "app_key"} {
		if _, ok := config[key]; ok {
			config[key] = ScrubPlaceholder
		}
	}
	return config, nil
}

// IntegrationNames lists integration directories in order.
func (c *AgentConfig) IntegrationNames() ([]string, error) {
	entries, err := os.ReadDir(c.IntegrationsDir())
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list integrations: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	slices.Sort(names)
	return names, nil
}

// LoadIntegrations parses every YAML file of every integration, keyed by
// integration then file name. Integrations without YAML files are omitted.
func (c *AgentConfig) LoadIntegrations() (map[string]map[string]map[string]any, error) {
	names, err := c.IntegrationNames()
	if err != nil {
		return nil, err
	}

	integrations := make(map[string]map[string]map[string]any)
	for _, name := range names {
		dir := filepath.Join(c.IntegrationsDir(), name)
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("failed to read integration %s: %w", name, err)
		}

		files := make(map[string]map[string]any)
		for _, entry := range entries {
			if !entry.Type().IsRegular() || !isYAML(entry.Name()) {
				continue
			}
			data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
			if err != nil {
				return nil, err
			}
			decoded, err := Decode(data)
			if err != nil {
				return nil, fmt.Errorf("failed to parse %s/%s: %w", name, entry.Name(), err)
			}
			files[entry.Name()] = decoded
		}
		if len(files) > 0 {
			integrations[name] = files
		}
	}
	return integrations, nil
}

// Remove deletes the whole directory.
func (c *AgentConfig) Remove() error {
	if err := os.RemoveAll(c.root); err != nil {
		return fmt.Errorf("failed to remove %s: %w", c.root, err)
	}
	return nil
}

// RestoreDefaults replaces the directory with a config holding only the
// inherited org values.
func (c *AgentConfig) RestoreDefaults() error {
	config := map[string]any{}
	c.inheritOrg(config)

	data, err := Encode(config)
	if err != nil {
		return err
	}
	if err := c.Remove(); err != nil {
		return err
	}
	if err := os.MkdirAll(c.root, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", c.root, err)
	}
	return os.WriteFile(c.Path(), data, 0o644)
}

// CopyTo replaces dest with a copy of this directory and returns it.
func (c *AgentConfig) CopyTo(dest string) (*AgentConfig, error) {
	if err := os.RemoveAll(dest); err != nil {
		return nil, fmt.Errorf("failed to clear %s: %w", dest, err)
	}
	if err := transfer.NewPlanner().Copy(c.root, dest); err != nil {
		return nil, fmt.Errorf("failed to copy agent config: %w", err)
	}

	log := logger.GetAgentConfigLogger()
	log.Debug().Str("template", c.Name()).Str("dest", dest).Msg("Copied agent config")

	return New(dest, c.orgs), nil
}

// inheritOrg fills credentials and endpoints from the org named by
// `inherit_org` without overriding values already set. An empty org name
// disables inheritance.
func (c *AgentConfig) inheritOrg(config map[string]any) {
	orgName := DefaultTemplate
	if value, ok := config["inherit_org"]; ok {
		delete(config, "inherit_org")
		orgName, _ = value.(string)
	}
	if orgName == "" {
		return
	}

	org := c.orgs.lookup(orgName)
	setDefault(config, "api_key", c.pick(org.APIKey, "DD_API_KEY"))
	setDefault(config, "app_key", c.pick(org.AppKey, "DD_APP_KEY"))
	setDefault(config, "site", c.pick(org.Site, "DD_SITE"))
	setDefault(config, "dd_url", c.pick(org.DDURL, "DD_DD_URL"))

	if logsURL := c.pick(org.LogsURL, "DD_LOGS_CONFIG_LOGS_DD_URL"); logsURL != "" {
		logs := Section(config, "logs_config")
		if logs == nil {
			logs = map[string]any{}
			config["logs_config"] = logs
		}
		setDefault(logs, "logs_dd_url", logsURL)
	}
}

func (c *AgentConfig) pick(value, envVar string) string {
	if value != "" {
		return value
	}
	return c.orgs.env(envVar)
}

func setDefault(config map[string]any, key, value string) {
	if value == "" {
		return
	}
	if _, ok := config[key]; !ok {
		config[key] = value
	}
}

func isYAML(name string) bool {
	return strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml")
}
