package main

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"voicedecoder/internal/config"
	"voicedecoder/internal/device"
	"voicedecoder/internal/estimate"
	"voicedecoder/internal/history"
	"voicedecoder/internal/logging"
	"voicedecoder/internal/media/normalize"
	"voicedecoder/internal/services"
	"voicedecoder/internal/transcription"
	"voicedecoder/internal/whisper"
)

type commandContext struct {
	configFlag  *string
	verboseFlag *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	log        *slog.Logger
}

func newCommandContext(configFlag *string, verboseFlag *bool) *commandContext {
	return &commandContext{
		configFlag:  configFlag,
		verboseFlag: verboseFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = services.Wrap(services.ErrConfiguration, "cli", "load config", "configuration invalid", err)
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) configValue() *config.Config {
	cfg, _ := c.ensureConfig()
	return cfg
}

func (c *commandContext) verbose() bool {
	return c.verboseFlag != nil && *c.verboseFlag
}

// logger writes to the log file, and also to stderr with --verbose. It falls
// back to stderr alone when the file cannot be opened.
func (c *commandContext) logger() *slog.Logger {
	c.loggerOnce.Do(func() {
		cfg := c.configValue()
		if cfg == nil {
			c.log = logging.NewNop()
			return
		}
		var outputs []string
		if dir := strings.TrimSpace(cfg.Paths.LogDir); dir != "" {
			outputs = append(outputs, filepath.Join(dir, logging.LogFileName))
		}
		if c.verbose() || len(outputs) == 0 {
			outputs = append(outputs, "stderr")
		}
		logger, err := logging.New(logging.Options{
			Level:       cfg.Logging.Level,
			Format:      cfg.Logging.Format,
			OutputPaths: outputs,
		})
		if err != nil {
			logger, _ = logging.New(logging.Options{Level: cfg.Logging.Level, Format: "console", OutputPaths: []string{"stderr"}})
			logger.Warn("log file unavailable", logging.Error(err))
		}
		c.log = logger
	})
	return c.log
}

func (c *commandContext) selector() *device.Selector {
	cfg := c.configValue()
	return device.NewSelector(device.NewSystemProber(cfg.Tools.NvidiaSMI), c.logger())
}

func (c *commandContext) estimator(selector estimate.DeviceSelector) *estimate.Estimator {
	cfg := c.configValue()
	return estimate.New(cfg.Tools.FFmpeg, selector, estimate.WithLogger(c.logger()))
}

func (c *commandContext) orchestrator(selector transcription.DeviceSelector) *transcription.Orchestrator {
	cfg := c.configValue()
	logger := c.logger()
	return transcription.New(transcription.Dependencies{
		Normalizer: normalize.New(cfg.Tools.FFmpeg, normalize.WithLogger(logger)),
		Selector:   selector,
		Loader: whisper.NewCLILoader(cfg.Tools.Whisper,
			whisper.WithWorkDir(cfg.WorkDir()),
			whisper.WithLogger(logger),
		),
		ModelDir: cfg.Paths.ModelDir,
		Logger:   logger,
	},
		transcription.WithDirectFormats(cfg.Transcription.DirectFormats),
		transcription.WithSilenceThreshold(cfg.Transcription.SilenceThreshold),
	)
}

// openHistory returns nil when history is disabled.
func (c *commandContext) openHistory() (*history.Store, error) {
	cfg := c.configValue()
	if !cfg.History.Enabled {
		return nil, nil
	}
	store, err := history.Open(cfg.HistoryPath())
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	return store, nil
}

// requireHistory is openHistory for commands that only read history.
func (c *commandContext) requireHistory() (*history.Store, error) {
	store, err := c.openHistory()
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, services.Wrap(services.ErrConfiguration, "cli", "history", "history is disabled; set [history] enabled = true", nil)
	}
	return store, nil
}

func (c *commandContext) resolveSize(flagValue string) (whisper.Size, error) {
	value := strings.TrimSpace(flagValue)
	if value == "" {
		value = c.configValue().Transcription.Model
	}
	return whisper.ParseSize(value)
}
