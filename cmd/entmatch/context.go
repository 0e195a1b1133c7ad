package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"entmatch/internal/config"
	"entmatch/internal/logging"
	"entmatch/internal/matcher"
	"entmatch/internal/services"
)

type commandContext struct {
	configFlag   *string
	logLevelFlag *string
	sessionID    string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag, logLevelFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
		sessionID:    uuid.NewString(),
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, path, _, err := config.Load(c.configFlagValue())
		if err != nil {
			c.configErr = fmt.Errorf("%w: %w", services.ErrConfiguration, err)
			return
		}
		c.config = cfg
		c.configPath = path
	})
	return c.config, c.configErr
}

func (c *commandContext) configFlagValue() string {
	if c.configFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.configFlag)
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		override := ""
		if c.logLevelFlag != nil {
			override = strings.TrimSpace(*c.logLevelFlag)
		}
		logger, err := logging.NewFromConfig(cfg, override)
		if err != nil {
			c.loggerErr = fmt.Errorf("%w: %w", services.ErrConfiguration, err)
			return
		}
		c.logger = logger.With(logging.String(logging.FieldSessionID, c.sessionID))
		c.logger.Debug("configuration loaded",
			logging.String("config_path", c.configPath),
			logging.String("matcher_url", cfg.Matcher.BaseURL),
			logging.Duration("timeout", cfg.Timeout()),
			logging.Float64("requests_per_second", cfg.Matcher.RequestsPerSecond),
			logging.String("trigger", cfg.Search.Trigger),
			logging.Any("allowed_types", cfg.Upload.AllowedTypes),
			logging.Bool("health_check", cfg.Features.HealthCheck),
			logging.Bool("batch_upload", cfg.Features.BatchUpload),
			logging.Bool("export", cfg.Features.Export),
		)
	})
	return c.logger, c.loggerErr
}

// matcherClient builds the remote client plus the logger it writes to.
func (c *commandContext) matcherClient() (*matcher.Client, *slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, nil, err
	}
	client, err := matcher.NewFromConfig(cfg, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", services.ErrConfiguration, err)
	}
	return client, logger, nil
}

// requestContext tags the command context with the session identifier.
func (c *commandContext) requestContext(cmd *cobra.Command) context.Context {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return services.WithSessionID(ctx, c.sessionID)
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
