package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/roach88/userstats/internal/config"
	"github.com/roach88/userstats/internal/user"
)

// settings is the resolved configuration for a command run.
type settings struct {
	Config    config.Config
	Location  *time.Location
	Validator *user.Validator
}

// loadSettings reads the config file named by --config, if any, and overlays
// command-line values. Flags win over the file.
func loadSettings(opts *RootOptions, flags config.Config) (*config.Config, error) {
	cfg := &config.Config{}
	if opts.ConfigPath != "" {
		loaded, err := config.Load(opts.ConfigPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	cfg.Merge(flags)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadValidator compiles the schema named in cfg, or the embedded default.
func loadValidator(cfg *config.Config) (*user.Validator, error) {
	if cfg.Schema == "" {
		return user.DefaultValidator()
	}
	src, err := os.ReadFile(cfg.Schema)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}
	return user.NewValidator(src)
}

// resolveSettings loads config, location and validator, reporting failures
// through f as command errors.
func resolveSettings(f *OutputFormatter, opts *RootOptions, flags config.Config) (*settings, error) {
	cfg, err := loadSettings(opts, flags)
	if err != nil {
		return nil, f.Fail(ExitCommandError, ErrCodeConfig, err.Error(), nil, err)
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, f.Fail(ExitCommandError, ErrCodeConfig, err.Error(), nil, err)
	}

	validator, err := loadValidator(cfg)
	if err != nil {
		return nil, f.Fail(ExitCommandError, ErrCodeSchema, err.Error(), nil, err)
	}

	f.VerboseLog("Using schema: %s", schemaName(cfg))
	return &settings{Config: *cfg, Location: loc, Validator: validator}, nil
}

func schemaName(cfg *config.Config) string {
	if cfg.Schema == "" {
		return "(embedded)"
	}
	return cfg.Schema
}
