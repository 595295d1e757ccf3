// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config_cmd.go - The config command.
//
// Usage:
//
//	sortbench config [show] [--json]
//	sortbench config path
//	sortbench config init [--force]
//	sortbench config get KEY
//	sortbench config set KEY VALUE
package cli

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/jeranaias/sortbench/internal/config"
)

func (a *App) runConfig(raw []string) error {
	args := NewArgParser(raw, "json", "force")
	if err := args.Unknown("json", "force"); err != nil {
		return err
	}

	switch sub := args.Subcommand(); sub {
	case "", "show":
		return a.configShow(args.BoolFlag("json"))
	case "path":
		return a.configPath()
	case "init":
		return a.configInit(args.BoolFlag("force"))
	case "get":
		key := args.Positional(1)
		if key == "" {
			return ErrMissingArgument("key", "sortbench config get plot.format")
		}
		return a.configGet(key)
	case "set":
		key, value := args.Positional(1), args.Positional(2)
		if key == "" || args.PositionalCount() < 3 {
			return ErrMissingArgument("key and value", "sortbench config set cpu.l2_kb 256")
		}
		return a.configSet(key, value)
	default:
		return NewValidationErrorWithExample("subcommand", sub, "unknown config subcommand", "sortbench config show")
	}
}

// configFilePath is the file that config init and config set write.
func (a *App) configFilePath() (string, error) {
	if a.Args.ConfigPath != "" {
		return a.Args.ConfigPath, nil
	}
	path, err := config.ConfigPathTOML()
	if err != nil {
		return "", &configError{err: err}
	}
	return path, nil
}

func (a *App) configShow(jsonMode bool) error {
	cfg, err := a.config()
	if err != nil {
		return err
	}
	if jsonMode {
		return NewJSONResponse("config", cfg).Print(a.Stdout)
	}
	fmt.Fprint(a.Stdout, cfg.String())
	return nil
}

func (a *App) configPath() error {
	path, err := a.configFilePath()
	if err != nil {
		return err
	}
	fmt.Fprintln(a.Stdout, path)
	return nil
}

func (a *App) configInit(force bool) error {
	path, err := a.configFilePath()
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err == nil && !force {
		return NewCommandErrorWithHint("config", "init", "config file already exists: "+path,
			"pass --force to overwrite it", nil)
	}

	if err := saveConfigFile(config.Default(), path); err != nil {
		return &configError{err: err}
	}
	a.log.Infof("CONFIG_WRITTEN | path=%s", path)
	fmt.Fprintf(a.Stdout, "%s %s\n", SuccessStyle.Render("wrote"), path)
	return nil
}

func (a *App) configGet(key string) error {
	cfg, err := a.config()
	if err != nil {
		return err
	}
	val, err := cfg.Get(key)
	if err != nil {
		return unknownKeyError(key)
	}
	fmt.Fprintln(a.Stdout, formatConfigValue(val))
	return nil
}

// configSet edits the config file. The file is read without environment
// overrides so they are never written back.
func (a *App) configSet(key, value string) error {
	if !slices.Contains(config.GetAllKeys(), strings.ToLower(key)) {
		return unknownKeyError(key)
	}

	path, err := a.configFilePath()
	if err != nil {
		return err
	}

	cfg := config.Default()
	if _, statErr := os.Stat(path); statErr == nil {
		if err := loadConfigFile(cfg, path); err != nil {
			return &configError{err: err}
		}
	} else if !errors.Is(statErr, os.ErrNotExist) {
		return &configError{err: statErr}
	}

	if err := cfg.Set(key, value); err != nil {
		return NewValidationError(key, value, err.Error())
	}
	if err := cfg.Validate(); err != nil {
		return &configError{err: err}
	}
	if err := saveConfigFile(cfg, path); err != nil {
		return &configError{err: err}
	}

	a.log.Infof("CONFIG_SET | key=%s path=%s", key, path)
	a.Config = nil
	return nil
}

func loadConfigFile(cfg *config.Config, path string) error {
	if strings.HasSuffix(path, ".json") {
		return config.LoadJSON(cfg, path)
	}
	return config.LoadTOML(cfg, path)
}

func saveConfigFile(cfg *config.Config, path string) error {
	if strings.HasSuffix(path, ".json") {
		return config.SaveJSON(cfg, path)
	}
	return config.SaveTOML(cfg, path)
}

func formatConfigValue(v interface{}) string {
	switch val := v.(type) {
	case []int:
		parts := make([]string, len(val))
		for i, n := range val {
			parts[i] = fmt.Sprint(n)
		}
		return strings.Join(parts, ",")
	case []string:
		return strings.Join(val, ",")
	default:
		return fmt.Sprint(val)
	}
}

func unknownKeyError(key string) error {
	example := didYouMean(key, config.GetAllKeys(), "")
	if example == "" {
		example = "one of: " + strings.Join(config.GetAllKeys(), ", ")
	}
	return NewValidationErrorWithExample("key", key, "unknown config key", example)
}
