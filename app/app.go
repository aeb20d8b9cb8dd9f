package app

import (
	"context"

	"log/slog"

	"github.com/mealmarkt/ops-manager/config"
	"github.com/mealmarkt/ops-manager/internal/analytics"
	httpapi "github.com/mealmarkt/ops-manager/internal/api/http"
	"github.com/mealmarkt/ops-manager/internal/campaign"
	"github.com/mealmarkt/ops-manager/internal/dependency"
	"github.com/mealmarkt/ops-manager/internal/hyperzod"
	"github.com/mealmarkt/ops-manager/internal/mail"
	"github.com/mealmarkt/ops-manager/internal/store"
	syncsrv "github.com/mealmarkt/ops-manager/internal/sync"
)

// App is the main application
type App struct {
	hs     *httpapi.Server
	db     dependency.Repository
	mailer dependency.Mailer
	c      *config.Config
	done   chan struct{}
}

// New returns a new instance of App
func New(c *config.Config) *App {
	return &App{
		c:    c,
		done: make(chan struct{}),
	}
}

// Start starts the app
func (a *App) Start(ctx context.Context) error {
	var err error
	slog.Default().InfoContext(ctx, "starting ops manager")

	a.db, err = store.New(ctx, a.c.DB)
	if err != nil {
		slog.Default().ErrorContext(ctx, "couldn't connect to mysql",
			slog.String("err", err.Error()),
		)
		return err
	}

	a.mailer, err = mail.New(&a.c.Mailer, a.db.Mail())
	if err != nil {
		slog.Default().ErrorContext(ctx, "cannot create mailer",
			slog.String("err", err.Error()),
		)
		return err
	}
	if err := a.mailer.Start(ctx); err != nil {
		slog.Default().ErrorContext(ctx, "cannot start mail worker",
			slog.String("err", err.Error()),
		)
		return err
	}

	commerce, err := hyperzod.New(&a.c.Hyperzod)
	if err != nil {
		slog.Default().ErrorContext(ctx, "cannot create hyperzod client",
			slog.String("err", err.Error()),
		)
		return err
	}

	syncS := syncsrv.New(a.db, commerce)
	analyticsS := analytics.New(&a.c.Analytics, a.db)
	campaignS := campaign.New(&a.c.Campaign, a.db, a.mailer)

	a.hs, err = httpapi.New(&a.c.HTTP, a.db, analyticsS, campaignS, syncS)
	if err != nil {
		slog.Default().ErrorContext(ctx, "cannot create http server",
			slog.String("err", err.Error()),
		)
		return err
	}
	if err := a.hs.Start(ctx); err != nil {
		slog.Default().ErrorContext(ctx, "cannot start http server",
			slog.String("err", err.Error()),
		)
		return err
	}

	return nil
}

// Stop stops the application and waits for all services to exit
func (a *App) Stop(ctx context.Context) {
	if a.hs != nil {
		if err := a.hs.Stop(ctx); err != nil {
			slog.Default().ErrorContext(ctx, "http server shutdown failed",
				slog.String("err", err.Error()),
			)
		}
	}
	if a.mailer != nil {
		if err := a.mailer.Stop(); err != nil {
			slog.Default().ErrorContext(ctx, "mail worker shutdown failed",
				slog.String("err", err.Error()),
			)
		}
	}
	if a.db != nil {
		a.db.Close()
	}
	close(a.done)
}

// Done returns a channel that is closed after the application has exited
func (a *App) Done() chan struct{} {
	return a.done
}
