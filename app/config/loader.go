package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Loader handles loading and validation of the source configuration file
type Loader struct {
	path string
}

func NewLoader(path string) *Loader {
	return &Loader{path: path}
}

// Load reads the YAML source configuration, applies defaults and validates
// that every enabled source carries the identifiers it needs.
func (l *Loader) Load() (*SourcesConfig, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sources file: %w", err)
	}

	var config SourcesConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	l.setDefaults(&config)

	if err := l.validate(&config); err != nil {
		return nil, fmt.Errorf("invalid sources config %s: %w", l.path, err)
	}

	return &config, nil
}

func (l *Loader) setDefaults(config *SourcesConfig) {
	if config.FetchLimit <= 0 {
		config.FetchLimit = 10
	}
	if config.Patreon.APIURL == "" {
		config.Patreon.APIURL = "https://www.patreon.com/api/posts"
	}
}

func (l *Loader) validate(config *SourcesConfig) error {
	if config.Youtube.Enabled && config.Youtube.ChannelID == "" {
		return fmt.Errorf("youtube source requires channel_id")
	}
	if config.Forum.Enabled {
		if config.Forum.FeedURL == "" {
			return fmt.Errorf("forum source requires feed_url")
		}
		if config.Forum.AvatarBaseURL == "" {
			return fmt.Errorf("forum source requires avatar_base_url")
		}
	}
	if config.Patreon.Enabled && config.Patreon.CampaignID == "" {
		return fmt.Errorf("patreon source requires campaign_id")
	}
	return nil
}
