package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/carlosrabelo/vlansync/internal/entities"
	"github.com/carlosrabelo/vlansync/internal/util"
)

// FileName is the config file looked up in the standard locations
const FileName = "vlansync.yaml"

// SwitchConfig defines the connection settings for a single switch
type SwitchConfig struct {
	Target    string        `yaml:"target"`
	Host      string        `yaml:"host"` // Defaults to target
	Transport string        `yaml:"transport"`
	Port      int           `yaml:"port"`
	Username  string        `yaml:"username"`
	Password  string        `yaml:"password"`
	Timeout   time.Duration `yaml:"timeout"`
}

// Profile returns the connection profile described by the switch entry
func (sc SwitchConfig) Profile() entities.ConnectionProfile {
	transport, _ := entities.ParseTransport(sc.Transport)
	port := sc.Port
	if port == 0 {
		port = entities.DefaultPort
	}
	return entities.ConnectionProfile{
		Host:      sc.Host,
		Username:  sc.Username,
		Password:  sc.Password,
		Port:      port,
		Transport: transport,
	}
}

// Config defines the global configuration. Global values are fallbacks for
// every switch entry.
type Config struct {
	Transport string         `yaml:"transport"`
	Port      int            `yaml:"port"`
	Username  string         `yaml:"username"`
	Password  string         `yaml:"password"`
	Timeout   time.Duration  `yaml:"timeout"`
	Switches  []SwitchConfig `yaml:"switches"`
}

// Switch returns the entry registered under target
func (c *Config) Switch(target string) (SwitchConfig, error) {
	for _, sw := range c.Switches {
		if sw.Target == target {
			return sw, nil
		}
	}
	return SwitchConfig{}, fmt.Errorf("target %s not registered in the YAML configuration", target)
}

// Defaults returns an entry for a host that is not registered, carrying
// only the global values
func (c *Config) Defaults(host string) SwitchConfig {
	return SwitchConfig{
		Target:    host,
		Host:      host,
		Transport: c.Transport,
		Port:      c.Port,
		Username:  c.Username,
		Password:  c.Password,
		Timeout:   c.Timeout,
	}
}

// Load loads and validates the configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read YAML file %s: %w", path, err)
	}
	return Parse(data)
}

// Parse validates a YAML configuration and applies global fallbacks to
// every switch entry
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	cfg.Transport = strings.ToLower(strings.TrimSpace(cfg.Transport))
	if cfg.Transport == "" {
		cfg.Transport = entities.TransportTelnet.String()
	}
	if _, err := entities.ParseTransport(cfg.Transport); err != nil {
		return nil, err
	}
	if err := validatePort(cfg.Port, "global port"); err != nil {
		return nil, err
	}
	if cfg.Timeout < 0 {
		return nil, fmt.Errorf("global timeout %s must not be negative", cfg.Timeout)
	}
	util.Logger.Debugf("Global values: Transport=%s, Port=%d, Timeout=%s", cfg.Transport, cfg.Port, cfg.Timeout)

	seen := make(map[string]bool, len(cfg.Switches))
	for i, sw := range cfg.Switches {
		sw.Target = strings.TrimSpace(sw.Target)
		if sw.Target == "" {
			return nil, fmt.Errorf("target is required for switch %d", i)
		}
		if seen[sw.Target] {
			return nil, fmt.Errorf("target %s is defined more than once", sw.Target)
		}
		seen[sw.Target] = true
		log := util.WithDevice(sw.Target)

		if sw.Host = strings.TrimSpace(sw.Host); sw.Host == "" {
			sw.Host = sw.Target
		}

		sw.Transport = strings.ToLower(strings.TrimSpace(sw.Transport))
		if sw.Transport == "" {
			sw.Transport = cfg.Transport
			log.Debugf("No transport defined for switch %s, using global %s", sw.Target, cfg.Transport)
		}
		if _, err := entities.ParseTransport(sw.Transport); err != nil {
			return nil, fmt.Errorf("switch %s: %w", sw.Target, err)
		}

		if err := validatePort(sw.Port, "port for switch "+sw.Target); err != nil {
			return nil, err
		}
		if sw.Port == 0 {
			sw.Port = cfg.Port
		}

		if sw.Username == "" {
			sw.Username = cfg.Username
			log.Debugf("No username defined for switch %s, using global %s", sw.Target, cfg.Username)
		}
		if sw.Password == "" {
			sw.Password = cfg.Password
			log.Debugf("No password defined for switch %s, using global password", sw.Target)
		}

		if sw.Timeout < 0 {
			return nil, fmt.Errorf("timeout %s for switch %s must not be negative", sw.Timeout, sw.Target)
		}
		if sw.Timeout == 0 {
			sw.Timeout = cfg.Timeout
		}

		log.Debugf("Final configuration for switch %s: Host=%s, Transport=%s, Port=%d, Timeout=%s",
			sw.Target, sw.Host, sw.Transport, sw.Port, sw.Timeout)
		cfg.Switches[i] = sw
	}

	return &cfg, nil
}

func validatePort(port int, context string) error {
	if port < 0 || port > 65535 {
		return fmt.Errorf("invalid %s: %d must be between 0 and 65535 (0 = default %d)", context, port, entities.DefaultPort)
	}
	return nil
}

// SearchPaths lists the locations checked, in order, when no config file is
// given explicitly
func SearchPaths() []string {
	return searchPaths(runtime.GOOS, os.Getenv)
}

func searchPaths(goos string, getenv func(string) string) []string {
	paths := []string{filepath.Join(".", FileName)}
	switch goos {
	case "windows":
		// User (%APPDATA%) and global (%ProgramData%) locations
		if dir := getenv("APPDATA"); dir != "" {
			paths = append(paths, filepath.Join(dir, "vlansync", FileName))
		}
		if dir := getenv("ProgramData"); dir != "" {
			paths = append(paths, filepath.Join(dir, "vlansync", FileName))
		}
	default:
		if dir := getenv("XDG_CONFIG_HOME"); dir != "" {
			paths = append(paths, filepath.Join(dir, "vlansync", FileName))
		} else if home := getenv("HOME"); home != "" {
			paths = append(paths, filepath.Join(home, ".config", "vlansync", FileName))
		}
		paths = append(paths, filepath.Join("/etc", "vlansync", FileName))
	}
	return paths
}

// FindConfig returns explicit when set, otherwise the first existing file
// from SearchPaths. An empty path with a nil error means no config file
// exists, which is valid: flags alone can describe a switch.
func FindConfig(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file %s: %w", explicit, err)
		}
		return explicit, nil
	}
	return findFirst(SearchPaths()), nil
}

func findFirst(paths []string) string {
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			util.Logger.Debugf("Configuration file found at %s", path)
			return path
		}
	}
	return ""
}
