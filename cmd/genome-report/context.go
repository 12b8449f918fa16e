package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"genomereport/internal/app"
	"genomereport/internal/config"
	"genomereport/internal/logger"
)

type commandContext struct {
	configFlag   *string
	logLevelFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	closers []io.Closer
}

func newCommandContext(configFlag, logLevelFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag, logLevelFlag: logLevelFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var flag string
		if c.configFlag != nil {
			flag = *c.configFlag
		}
		path := config.ResolvePath(flag)
		cfg, err := config.Load(path)
		if err != nil {
			c.configErr = fmt.Errorf("load config: %w", err)
			return
		}
		if c.logLevelFlag != nil && strings.TrimSpace(*c.logLevelFlag) != "" {
			cfg.App.LogLevel = strings.TrimSpace(*c.logLevelFlag)
		}
		if err := c.setupLogging(cfg.App); err != nil {
			c.close()
			c.configErr = err
			return
		}
		if path != "" {
			logger.Debugf("✓ config loaded from %s", path)
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) setupLogging(cfg config.AppConfig) error {
	logger.SetLevel(cfg.LogLevel)
	logFile, err := setupLogOutput(cfg.LogPath)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	if logFile != nil {
		c.closers = append(c.closers, logFile)
	}
	dumpFile, err := setupAPIDumpOutput(cfg.APIDumpPath)
	if err != nil {
		return fmt.Errorf("open api dump file: %w", err)
	}
	if dumpFile != nil {
		c.closers = append(c.closers, dumpFile)
	}
	return nil
}

// withApp builds the application for one command and closes it, together
// with the log files, afterwards. It runs on error paths too, where cobra
// skips PersistentPostRun.
func (c *commandContext) withApp(fn func(*app.App) error) error {
	defer c.close()
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	a, err := app.NewApp(cfg)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}
	defer a.Close()
	return fn(a)
}

func (c *commandContext) close() {
	if len(c.closers) > 0 {
		log.SetOutput(os.Stderr)
		logger.SetOutput(os.Stderr)
	}
	for _, cl := range c.closers {
		_ = cl.Close()
	}
	c.closers = nil
	logger.SetAPIWriter(nil)
}

func setupLogOutput(path string) (*os.File, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return nil, nil
	}
	dir := filepath.Dir(trimmed)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	file, err := os.OpenFile(trimmed, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	mw := io.MultiWriter(os.Stderr, file)
	log.SetOutput(mw)
	logger.SetOutput(mw)
	return file, nil
}

func setupAPIDumpOutput(path string) (*os.File, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		logger.SetAPIWriter(nil)
		return nil, nil
	}
	if err := os.MkdirAll(filepath.Dir(trimmed), 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(trimmed, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	logger.SetAPIWriter(f)
	return f, nil
}
