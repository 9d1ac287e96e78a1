package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/mr-karan/slotdb"
	"github.com/zerodha/logf"
)

const envPrefix = "SLOTDB_"

// initLogger initializes logger instance.
func initLogger(ko *koanf.Koanf) logf.Logger {
	opts := logf.Opts{EnableCaller: true}
	if ko.String("app.log") == "debug" {
		opts.Level = logf.DebugLevel
		opts.EnableColor = true
	}
	return logf.New(opts)
}

// initConfig loads config to `ko` object.
func initConfig(args []string) (*koanf.Koanf, error) {
	var (
		ko = koanf.New(".")
		f  = flag.NewFlagSet("server", flag.ContinueOnError)
	)

	// Configure Flags.
	f.Usage = func() {
		fmt.Println(f.FlagUsages())
		os.Exit(0)
	}

	// Register `--config` flag.
	cfgPath := f.String("config", "config.sample.toml", "Path to a config file to load (toml or yaml).")

	// Parse and Load Flags.
	err := f.Parse(args)
	if err != nil {
		return nil, err
	}

	err = loadDefaults(ko)
	if err != nil {
		return nil, err
	}

	var parser koanf.Parser = toml.Parser()
	switch strings.ToLower(filepath.Ext(*cfgPath)) {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	}
	err = ko.Load(file.Provider(*cfgPath), parser)
	if err != nil {
		return nil, err
	}
	err = ko.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.Replace(strings.ToLower(
			strings.TrimPrefix(s, envPrefix)), "__", ".", -1)
	}), nil)
	if err != nil {
		return nil, err
	}
	return ko, nil
}

// loadDefaults seeds the config with values used when the config file omits them.
func loadDefaults(ko *koanf.Koanf) error {
	defaults := map[string]interface{}{
		"app.log":                "info",
		"server.address":         ":27015",
		"server.admin_address":   "",
		"server.metrics_address": "",
		"store.path":             "slotdb.db",
		"store.always_fsync":     false,
		"store.read_only":        false,
	}
	return ko.Load(confmap.Provider(defaults, "."), nil)
}

// initStore opens the store with the options from config.
func initStore(ko *koanf.Koanf, lo logf.Logger) (*slotdb.Store, error) {
	cfg := []slotdb.Config{slotdb.WithLogger(lo)}
	if ko.String("app.log") == "debug" {
		cfg = append(cfg, slotdb.WithDebug())
	}
	if ko.Bool("store.read_only") {
		cfg = append(cfg, slotdb.WithReadOnly())
	}
	switch {
	case ko.Bool("store.always_fsync"):
		cfg = append(cfg, slotdb.WithAlwaysSync())
	case !ko.Exists("store.sync_interval"):
		cfg = append(cfg, slotdb.WithAutoSync())
	case ko.Duration("store.sync_interval") > 0:
		cfg = append(cfg, slotdb.WithBackgroundSync(ko.Duration("store.sync_interval")))
	}

	return slotdb.Open(ko.String("store.path"), cfg...)
}
