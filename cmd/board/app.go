package main

import (
	"fmt"
	"io"

	"github.com/kandev/taskboard/internal/board"
	"github.com/kandev/taskboard/internal/board/notice"
	"github.com/kandev/taskboard/internal/common/config"
	"github.com/kandev/taskboard/internal/common/logger"
	"github.com/kandev/taskboard/internal/common/tracing"
	"github.com/kandev/taskboard/internal/events"
	"github.com/kandev/taskboard/internal/events/bus"
	"github.com/kandev/taskboard/internal/taskclient"
)

const serviceName = "board"

// app is one CLI invocation's board and the resources behind it.
type app struct {
	cfg    *config.Config
	log    *logger.Logger
	events bus.EventBus
	board  *board.Board
	close  func()
}

func newApp(flags *globalFlags, stderr io.Writer) (*app, error) {
	cfg, err := config.LoadWithPath(flags.configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if flags.storeURL != "" {
		cfg.Board.StoreURL = flags.storeURL
	}

	log, err := logger.NewLogger(logger.LoggingConfig{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		OutputPath: cfg.Logging.OutputPath,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger.SetDefault(log)
	tracing.SetServiceName(serviceName)

	provided, closeBus, err := events.Provide(cfg, log)
	if err != nil {
		return nil, err
	}

	notifiers := notice.Multi{notice.NewWriterNotifier(stderr), notice.NewLogNotifier(log)}
	opts := board.Options{
		PageSize:  cfg.Board.PageSize,
		Rebalance: cfg.Board.Rebalance.Enabled,
	}
	// Board events only leave the process over NATS.
	if provided.NATS != nil {
		notifiers = append(notifiers, notice.NewBusNotifier(provided.Bus, serviceName, log))
		opts.EventBus = provided.Bus
	}

	client := taskclient.NewClient(cfg.Board.StoreURL, log,
		taskclient.WithTimeout(cfg.Board.RequestTimeoutDuration()))

	return &app{
		cfg:    cfg,
		log:    log,
		events: provided.Bus,
		board:  board.New(client, notifiers, opts, log),
		close: func() {
			_ = closeBus()
			_ = log.Sync()
		},
	}, nil
}
