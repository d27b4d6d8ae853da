package cli

import (
	"fmt"

	"github.com/Guepard-Corp/qwery-core-sub001/internal/client"
	"github.com/Guepard-Corp/qwery-core-sub001/internal/config"
)

// settings is the configuration one command runs with after flags, the
// environment and the config file are merged.
type settings struct {
	cfg       *config.Config
	serverURL string
	logLevel  string
}

// loadSettings loads and validates the config file, then applies the global
// flags on top of it.
func loadSettings() (settings, error) {
	cfg, err := config.Load()
	if err != nil {
		return settings{}, fmt.Errorf("load config: %w", err)
	}
	return resolveSettings(cfg, serverURL, logLevel)
}

func resolveSettings(cfg *config.Config, serverFlag, levelFlag string) (settings, error) {
	if err := cfg.Validate(); err != nil {
		return settings{}, fmt.Errorf("invalid config: %w", err)
	}
	s := settings{
		cfg:       cfg,
		serverURL: cfg.GetServerURL(),
		logLevel:  cfg.GetLogLevel(),
	}
	if serverFlag != "" {
		if err := config.ValidateServerURL(serverFlag); err != nil {
			return settings{}, err
		}
		s.serverURL = serverFlag
	}
	if levelFlag != "" {
		if err := config.ValidateLogLevel(levelFlag); err != nil {
			return settings{}, err
		}
		s.logLevel = levelFlag
	}
	return s, nil
}

func (s settings) client() *client.Client {
	return client.New(s.serverURL)
}
