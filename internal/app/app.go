// Package app wires configuration, the schedule document and the example
// handler into a bot client. Both the server and the Lambda entrypoint use it.
package app

import (
	"context"
	"fmt"
	"net/http"

	"pigeon/internal/bot"
	"pigeon/internal/config"
	"pigeon/internal/logger"
	"pigeon/internal/schedule"
	"pigeon/internal/storage"
)

// InitLogger initializes the global logger from cfg.
func InitLogger(cfg *config.Config) error {
	return logger.InitWithOptions(cfg.LogLevel, logger.Options{File: cfg.LogFile})
}

// NewSource returns the configured schedule source, or nil when no schedule
// is configured.
func NewSource(ctx context.Context, cfg *config.Config) (storage.Source, error) {
	switch {
	case cfg.ScheduleFile != "":
		return storage.NewFileSource(cfg.ScheduleFile), nil
	case cfg.ScheduleBucket != "":
		return storage.NewS3SourceFromEnv(ctx, cfg.ScheduleBucket, cfg.ScheduleKey)
	default:
		return nil, nil
	}
}

// LoadActions reads and parses the configured schedule document.
func LoadActions(ctx context.Context, cfg *config.Config) ([]schedule.Action, error) {
	source, err := NewSource(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if source == nil {
		return nil, nil
	}

	data, err := source.Load(ctx)
	if err != nil {
		return nil, err
	}
	actions, err := config.ParseSchedule(data)
	if err != nil {
		return nil, fmt.Errorf("invalid schedule document: %w", err)
	}
	return actions, nil
}

// NewClient builds the bot client described by cfg.
func NewClient(ctx context.Context, cfg *config.Config) (*bot.Client, error) {
	actions, err := LoadActions(ctx, cfg)
	if err != nil {
		return nil, err
	}

	handler := NewHandler(schedule.NewBook(cfg.Location(), actions))
	return bot.New().
		Port(cfg.Port).
		EventHandler(handler).
		Token(cfg.Token).
		SigningSecret(cfg.SigningSecret).
		SlashCommands(handler.Commands()...).
		MessageActions(handler.Actions()...).
		TickInterval(cfg.TickInterval).
		HTTPClient(&http.Client{Timeout: cfg.APITimeout}).
		Build()
}
