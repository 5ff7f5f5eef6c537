package book

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/gorewood/ideabook/internal/output"
)

// ConfigFile is the name of the book configuration file at the book root.
const ConfigFile = "book.yaml"

// Config is the contents of book.yaml.
type Config struct {
	Title         string   `yaml:"title"`
	Authors       []string `yaml:"authors,omitempty"`
	Language      string   `yaml:"language,omitempty"`
	Src           string   `yaml:"src"`
	BuildDir      string   `yaml:"build_dir"`
	CreateMissing bool     `yaml:"create_missing"`
}

// DefaultConfig returns the configuration used for absent book.yaml fields.
func DefaultConfig() Config {
	return Config{
		Language:      "en",
		Src:           "src",
		BuildDir:      "book",
		CreateMissing: true,
	}
}

// LoadConfig reads book.yaml from root. A missing file yields DefaultConfig.
func LoadConfig(root string) (Config, error) {
	cfg := DefaultConfig()

	path := filepath.Join(root, ConfigFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, output.NewIOError("failed to read "+path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, output.NewUserError("invalid " + path + ": " + err.Error())
	}
	if cfg.Src == "" {
		cfg.Src = "src"
	}
	if cfg.BuildDir == "" {
		cfg.BuildDir = "book"
	}
	return cfg, nil
}

// SaveConfig writes cfg to root/book.yaml.
func SaveConfig(root string, cfg Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return output.NewSystemError("failed to encode book config: " + err.Error())
	}
	path := filepath.Join(root, ConfigFile)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return output.NewIOError("failed to write "+path, err)
	}
	return nil
}
