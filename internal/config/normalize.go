package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeDevice()
	c.normalizeCommands()
	c.normalizeSelection()
	c.normalizeWorkflow()
	c.normalizeLogging()
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyTimeout
	}
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.WorkDir, err = expandPath(c.Paths.WorkDir); err != nil {
		return fmt.Errorf("paths.work_dir: %w", err)
	}
	if c.Paths.DestinationDir, err = expandPath(c.Paths.DestinationDir); err != nil {
		return fmt.Errorf("paths.destination_dir: %w", err)
	}
	if c.Paths.EditedDir, err = expandPath(c.Paths.EditedDir); err != nil {
		return fmt.Errorf("paths.edited_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeDevice() {
	c.Device.Address = strings.TrimRight(strings.TrimSpace(c.Device.Address), "/")
	c.Device.Username = strings.TrimSpace(c.Device.Username)
	if c.Device.Username == "" {
		c.Device.Username = defaultDeviceUsername
	}
	c.Device.MediaAccessKey = strings.TrimSpace(c.Device.MediaAccessKey)
	if c.Device.MediaAccessKey == "" {
		if value, ok := os.LookupEnv("NROPSTER_MAK"); ok {
			c.Device.MediaAccessKey = strings.TrimSpace(value)
		}
	}
	if c.Device.PageSize <= 0 {
		c.Device.PageSize = defaultDevicePageSize
	}
	if c.Device.RequestTimeout <= 0 {
		c.Device.RequestTimeout = defaultDeviceTimeout
	}
}

func (c *Config) normalizeCommands() {
	c.Decoder.Command = strings.TrimSpace(c.Decoder.Command)
	if c.Decoder.Command == "" {
		c.Decoder.Command = defaultDecoderCommand
	}
	if len(c.Decoder.Args) == 0 {
		c.Decoder.Args = defaultDecoderArgs()
	}
	c.Transcoder.Command = strings.TrimSpace(c.Transcoder.Command)
	if c.Transcoder.Command == "" {
		c.Transcoder.Command = defaultTranscoderCommand
	}
	if len(c.Transcoder.Args) == 0 {
		c.Transcoder.Args = defaultTranscoderArgs()
	}
	c.Transcoder.Extension = strings.TrimPrefix(strings.TrimSpace(c.Transcoder.Extension), ".")
	if c.Transcoder.Extension == "" {
		c.Transcoder.Extension = defaultTranscoderExtension
	}
}

func (c *Config) normalizeSelection() {
	c.Selection.Include = strings.TrimSpace(c.Selection.Include)
	c.Selection.Exclude = strings.TrimSpace(c.Selection.Exclude)
}

func (c *Config) normalizeWorkflow() {
	c.Workflow.Handoff = strings.ToLower(strings.TrimSpace(c.Workflow.Handoff))
	if c.Workflow.Handoff == "" {
		c.Workflow.Handoff = HandoffSignal
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
