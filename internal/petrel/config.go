package petrel

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// AppConfig holds user defaults for the codex command. Every field is
// optional; flags always win over the file, the file wins over built-ins.
type AppConfig struct {
	Name          string `toml:"name,omitempty"`
	Image         string `toml:"image,omitempty"`
	CodexPath     string `toml:"codex-path,omitempty"`
	DestDir       string `toml:"dest-dir,omitempty"`
	PersistentDir string `toml:"persistent-dir,omitempty"`
}

func getConfigDir() string {
	if xdg := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME")); xdg != "" {
		return filepath.Join(expandUser(xdg), "petrel")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".petrel")
	}
	return filepath.Join(home, ".config", "petrel")
}

func getConfigPath() string {
	return filepath.Join(getConfigDir(), "config.toml")
}

// readConfig loads config.toml. A missing file is not an error: petrel works
// with built-in defaults out of the box.
func readConfig() (AppConfig, error) {
	data, err := os.ReadFile(getConfigPath())
	if err != nil {
		if os.IsNotExist(err) {
			return AppConfig{}, nil
		}
		return AppConfig{}, fmt.Errorf("read config file %s: %w", getConfigPath(), err)
	}
	var cfg AppConfig
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return AppConfig{}, fmt.Errorf("parse config file %s: %w", getConfigPath(), err)
	}
	return cfg, nil
}

func writeConfig(cfg AppConfig) error {
	if err := os.MkdirAll(getConfigDir(), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	b, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config TOML: %w", err)
	}
	if len(b) == 0 || b[len(b)-1] != '\n' {
		b = append(b, '\n')
	}
	if err := os.WriteFile(getConfigPath(), b, 0o600); err != nil {
		return fmt.Errorf("write config file %s: %w", getConfigPath(), err)
	}
	return nil
}

// configKeys maps `petrel config set` keys onto AppConfig fields.
func setConfigKey(cfg *AppConfig, key, val string) error {
	switch key {
	case "name":
		cfg.Name = val
	case "image":
		cfg.Image = val
	case "codex-path":
		cfg.CodexPath = val
	case "dest-dir":
		cfg.DestDir = val
	case "persistent-dir":
		cfg.PersistentDir = val
	default:
		return fmt.Errorf("unknown config key %q (valid: name, image, codex-path, dest-dir, persistent-dir)", key)
	}
	return nil
}
