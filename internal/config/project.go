package config

import (
	"strings"

	domainErrors "github.com/thomas-vilte/gitlab-simple/internal/errors"
)

// ProjectEnvVar overrides the project of the config file.
const ProjectEnvVar = "GITLAB_SIMPLE_PROJECT"

// Source tells where the resolved project came from.
type Source string

const (
	SourceFlag   Source = "flag"
	SourceEnv    Source = "env"
	SourceConfig Source = "config"
)

type Resolution struct {
	Project string
	Source  Source
}

// ResolveProject picks the project by precedence: --project flag, then the
// GITLAB_SIMPLE_PROJECT environment variable, then the config file. Blank
// values count as absent.
func ResolveProject(flagValue, envValue, configValue string) (Resolution, error) {
	candidates := []struct {
		value  string
		source Source
	}{
		{flagValue, SourceFlag},
		{envValue, SourceEnv},
		{configValue, SourceConfig},
	}

	for _, c := range candidates {
		if v := strings.TrimSpace(c.value); v != "" {
			return Resolution{Project: v, Source: c.source}, nil
		}
	}

	return Resolution{}, domainErrors.ErrProjectUnresolved
}
