package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"mkvaudur/internal/config"
	"mkvaudur/internal/logging"
	"mkvaudur/internal/services"
)

// runFlags holds the persistent flags that override configuration values.
type runFlags struct {
	threshold float64
	language  string
	output    string
	all       bool
	reference string
	verify    bool
	verbose   int
	logFormat string
}

type commandContext struct {
	configFlag *string
	flags      *runFlags

	configOnce   sync.Once
	config       *config.Config
	configPath   string
	configExists bool
	configErr    error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error

	runID string
}

func newCommandContext(configFlag *string, flags *runFlags) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		flags:      flags,
	}
}

// ensureConfig loads the configuration file once and layers changed flags
// on top of it.
func (c *commandContext) ensureConfig(cmd *cobra.Command) (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, exists, err := config.Load(path)
		if err != nil {
			c.configErr = services.Wrap(services.ErrConfiguration, "cli", "load config", "", err)
			return
		}
		if err := c.applyFlags(cmd, cfg); err != nil {
			c.configErr = services.Wrap(services.ErrConfiguration, "cli", "apply flags", "", err)
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = services.Wrap(services.ErrConfiguration, "cli", "ensure directories", "", err)
			return
		}
		c.config = cfg
		c.configPath = resolved
		c.configExists = exists
	})
	return c.config, c.configErr
}

func (c *commandContext) applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	if c.flags == nil || cmd == nil {
		return nil
	}
	flags := cmd.Flags()
	if flags.Changed("threshold") {
		cfg.Filter.Threshold = c.flags.threshold
	}
	if flags.Changed("language") {
		cfg.Filter.Language = c.flags.language
	}
	if flags.Changed("all") {
		cfg.Filter.ProcessAll = c.flags.all
	}
	if flags.Changed("output") {
		expanded, err := config.ExpandPath(strings.TrimSpace(c.flags.output))
		if err != nil {
			return err
		}
		cfg.Paths.OutputDir = expanded
	}
	if flags.Changed("verify") {
		cfg.Media.Verify = c.flags.verify
	}
	if flags.Changed("log-format") {
		cfg.Logging.Format = c.flags.logFormat
	}
	cfg.Logging.Level = logging.LevelFromVerbosity(cfg.Logging.Level, c.flags.verbose)
	if err := cfg.Normalize(); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}
	return nil
}

// ensureLogger builds the run logger writing to the command's stderr and the
// configured log file.
func (c *commandContext) ensureLogger(cmd *cobra.Command) (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig(cmd)
		if err != nil {
			c.loggerErr = err
			return
		}
		logger, err := logging.NewFromConfig(cfg, cmd.ErrOrStderr())
		if err != nil {
			c.loggerErr = services.Wrap(services.ErrConfiguration, "cli", "logger", "", err)
			return
		}
		c.logger = logger
	})
	return c.logger, c.loggerErr
}

// runIDValue returns the identifier shared by every log line and history
// entry of this invocation.
func (c *commandContext) runIDValue() string {
	if c.runID == "" {
		c.runID = uuid.NewString()
	}
	return c.runID
}

func (c *commandContext) referencePath() string {
	if c.flags == nil {
		return ""
	}
	return strings.TrimSpace(c.flags.reference)
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
