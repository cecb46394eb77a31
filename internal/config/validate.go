package config

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateCommands(); err != nil {
		return err
	}
	if err := c.validateSelection(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	return nil
}

// ValidateDevice checks the settings needed to contact the recorder. It is
// separate from Validate because offline commands never reach the device.
func (c *Config) ValidateDevice() error {
	if strings.TrimSpace(c.Device.Address) == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = defaultConfigPath
		}
		return fmt.Errorf("device.address is required. Edit %s (create with 'nropster config init')", defaultPath)
	}
	if strings.TrimSpace(c.Device.MediaAccessKey) == "" {
		return errors.New("device.media_access_key is required. Set NROPSTER_MAK env var or edit the config file")
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.WorkDir == "" {
		return errors.New("paths.work_dir must be set")
	}
	if c.Paths.DestinationDir == "" {
		return errors.New("paths.destination_dir must be set")
	}
	if c.Paths.WorkDir == c.Paths.DestinationDir {
		return errors.New("paths.work_dir and paths.destination_dir must differ")
	}
	return nil
}

func (c *Config) validateCommands() error {
	if !slices.Contains(c.Decoder.Args, TokenOutput) {
		return fmt.Errorf("decoder.args must contain %s", TokenOutput)
	}
	if !slices.Contains(c.Transcoder.Args, TokenInput) {
		return fmt.Errorf("transcoder.args must contain %s", TokenInput)
	}
	if !slices.Contains(c.Transcoder.Args, TokenOutput) {
		return fmt.Errorf("transcoder.args must contain %s", TokenOutput)
	}
	if strings.ContainsAny(c.Transcoder.Extension, `/\`) {
		return errors.New("transcoder.extension must not contain path separators")
	}
	return nil
}

func (c *Config) validateSelection() error {
	if c.Selection.Include != "" {
		if _, err := regexp.Compile(c.Selection.Include); err != nil {
			return fmt.Errorf("selection.include: %w", err)
		}
	}
	if c.Selection.Exclude != "" {
		if _, err := regexp.Compile(c.Selection.Exclude); err != nil {
			return fmt.Errorf("selection.exclude: %w", err)
		}
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if err := ensurePositiveMap(map[string]int{
		"workflow.poll_interval":        c.Workflow.PollInterval,
		"notifications.request_timeout": c.Notifications.RequestTimeout,
		"device.request_timeout":        c.Device.RequestTimeout,
	}); err != nil {
		return err
	}
	if c.Workflow.FetchPacing < 0 {
		return errors.New("workflow.fetch_pacing must be >= 0")
	}
	switch c.Workflow.Handoff {
	case HandoffPoll, HandoffSignal:
	default:
		return fmt.Errorf("workflow.handoff: unsupported value %q (want %q or %q)", c.Workflow.Handoff, HandoffPoll, HandoffSignal)
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
