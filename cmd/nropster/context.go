package main

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"nropster/internal/catalog"
	"nropster/internal/config"
	"nropster/internal/logging"
)

type commandContext struct {
	configFlag   *string
	logLevelFlag *string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error
}

func newCommandContext(configFlag, logLevelFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if c.logLevelFlag != nil {
			if level := strings.ToLower(strings.TrimSpace(*c.logLevelFlag)); level != "" {
				cfg.Logging.Level = level
			}
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
	})
	return c.config, c.configErr
}

// consoleLogger builds a logger for the read-only commands. Their output is
// the command's result, so log lines go to stderr only.
func (c *commandContext) consoleLogger(w io.Writer) (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Writer: w,
	})
}

// loadRecordings returns the recorder listing, from the device or from the
// cache written by the last run.
func (c *commandContext) loadRecordings(ctx context.Context, cached bool, logger *slog.Logger) ([]catalog.Recording, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	var lister catalog.Lister
	if !cached {
		if err := cfg.ValidateDevice(); err != nil {
			return nil, err
		}
		client, err := catalog.NewClient(cfg.Device, logger)
		if err != nil {
			return nil, err
		}
		lister = client
	}
	return catalog.Load(ctx, lister, cfg.CatalogCachePath(), cached, logger)
}

// selectionFlags override the [selection] section for one invocation.
type selectionFlags struct {
	include string
	exclude string
	force   bool
}

func (f *selectionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.include, "include", "", "Only fetch recordings whose full title matches this pattern")
	cmd.Flags().StringVar(&f.exclude, "exclude", "", "Skip recordings whose full title matches this pattern")
	cmd.Flags().BoolVar(&f.force, "force", false, "Fetch included recordings even when already present")
}

func (f *selectionFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("include") {
		cfg.Selection.Include = f.include
	}
	if cmd.Flags().Changed("exclude") {
		cfg.Selection.Exclude = f.exclude
	}
	if cmd.Flags().Changed("force") {
		cfg.Selection.Force = f.force
	}
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
