package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/checkpointhr/attendcli/internal/api"
	"github.com/checkpointhr/attendcli/internal/checkin"
	"github.com/checkpointhr/attendcli/internal/config"
	"github.com/checkpointhr/attendcli/internal/i18n"
	"github.com/checkpointhr/attendcli/internal/journal"
	"github.com/checkpointhr/attendcli/internal/location"
	"github.com/checkpointhr/attendcli/internal/logx"
	"github.com/checkpointhr/attendcli/internal/otp"
	"github.com/checkpointhr/attendcli/internal/session"
	"github.com/checkpointhr/attendcli/internal/tui"
	"github.com/checkpointhr/attendcli/internal/tui/screens"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(os.Getenv("ATTEND_ENV_FILE"))
	if err != nil {
		return err
	}

	level := cfg.Log.Level
	if logx.IsLocalDev(string(cfg.Env)) && os.Getenv("ATTEND_LOG_LEVEL") == "" {
		level = "debug"
	}
	logger, err := logx.New(logx.Options{
		Level:  level,
		Format: cfg.Log.Format,
		File:   cfg.Log.File,
	})
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	store, err := session.New(cfg.Session.Backend, cfg.Session.File, cfg.Session.Key)
	if err != nil {
		return err
	}

	// p is set before the program starts; the handler only runs from
	// commands executed by it.
	var p *tea.Program
	client := api.NewClient(store,
		api.WithBaseURL(cfg.API.BaseURL),
		api.WithTenant(cfg.API.Tenant),
		api.WithLogger(logger.Named("api")),
		api.WithHTTPClient(&http.Client{Timeout: cfg.API.Timeout}),
		api.WithUnauthorizedHandler(func() {
			if p != nil {
				p.Send(tui.SessionExpiredMsg{Err: api.ErrUnauthorized})
			}
		}),
	)

	ctx := context.Background()
	j, err := journal.Open(cfg.Journal.Path)
	if err != nil {
		return err
	}
	defer j.Close()
	if err := j.InitSchema(ctx); err != nil {
		return fmt.Errorf("failed to prepare journal: %w", err)
	}

	service := checkin.NewService(client,
		checkin.WithJournal(j),
		checkin.WithLogger(logger.Named("checkin")),
	)

	app := tui.NewApp(tui.Deps{
		Store:           store,
		Backend:         client,
		Flow:            otp.NewFlow(client, store, logger.Named("otp")),
		CheckIn:         service,
		Locator:         locator(cfg.Location),
		LocationTimeout: cfg.Location.Timeout,
		History:         j,
		Messages:        i18n.New(cfg.Locale),
		Logger:          logger,
		Settings: screens.SettingsInfo{
			BaseURL:        cfg.API.BaseURL,
			Tenant:         cfg.API.Tenant,
			SessionBackend: cfg.Session.Backend,
			JournalPath:    cfg.Journal.Path,
			LogFile:        cfg.Log.File,
		},
	})

	logger.Info("starting",
		zap.String("env", string(cfg.Env)),
		zap.String("api", cfg.API.BaseURL),
		zap.String("location_source", cfg.Location.Source),
		zap.String("session_backend", cfg.Session.Backend),
	)

	p = tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}

func locator(cfg config.LocationConfig) location.Provider {
	if cfg.Source == "http" {
		return location.NewHTTPProvider(cfg.URL, &http.Client{Timeout: location.MaxTimeout})
	}
	if p := cfg.FixedPoint(); p != nil {
		return location.NewFixedProvider(*p)
	}
	return &location.FixedProvider{}
}
