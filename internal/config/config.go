package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	domainErrors "github.com/thomas-vilte/gitlab-simple/internal/errors"
)

const (
	appDirName     = "gitlab-simple"
	configFileName = "config.json"
)

type (
	Config struct {
		Server   string     `json:"server"`
		Token    string     `json:"token"`
		Project  ProjectRef `json:"project,omitempty"`
		Language string     `json:"language,omitempty"`

		PathFile string `json:"-"`
	}

	// ProjectRef is a project id or a namespace/project path. The config file may
	// hold it as a JSON number or a string.
	ProjectRef string
)

func (p *ProjectRef) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*p = ""
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*p = ProjectRef(strings.TrimSpace(s))
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("project must be a number or a string: %w", err)
	}
	if _, err := strconv.ParseInt(n.String(), 10, 64); err != nil {
		return fmt.Errorf("project id must be an integer: %w", err)
	}
	*p = ProjectRef(n.String())
	return nil
}

func (p ProjectRef) String() string {
	return string(p)
}

// DefaultPath returns <user config dir>/gitlab-simple/config.json.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("could not determine the user config directory: %w", err)
	}
	return filepath.Join(dir, appDirName, configFileName), nil
}

// LoadConfig reads and validates the config file at path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domainErrors.ErrConfigNotFound.WithContext("path", path)
		}
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, domainErrors.ErrConfigMalformed.WithContext("path", path).WithError(err)
	}
	config.PathFile = path

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func validateConfig(config *Config) error {
	config.Server = strings.TrimSpace(config.Server)
	config.Token = strings.TrimSpace(config.Token)

	if config.Server == "" {
		return domainErrors.ErrConfigIncomplete.WithContext("key", "server").WithContext("path", config.PathFile)
	}
	if config.Token == "" {
		return domainErrors.ErrConfigIncomplete.WithContext("key", "token").WithContext("path", config.PathFile)
	}

	u, err := url.Parse(config.Server)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		appErr := domainErrors.ErrConfigIncomplete.WithContext("key", "server").WithContext("path", config.PathFile)
		if err != nil {
			appErr = appErr.WithError(err)
		}
		return appErr
	}

	lang, ok := GetLocaleConfig(config.Language)
	if !ok {
		return domainErrors.ErrConfigIncomplete.
			WithContext("key", "language").
			WithContext("path", config.PathFile).
			WithError(fmt.Errorf("unsupported language %q", config.Language))
	}
	config.Language = lang

	return nil
}
