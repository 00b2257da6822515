package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"title-service/internal/config"
	"title-service/internal/constants"
	"title-service/internal/database"
	fxmodules "title-service/internal/fx"
	"title-service/internal/middleware"
	"title-service/internal/rotation"
	"title-service/internal/scheduler"
	"title-service/internal/server"
	"title-service/internal/service"
	"title-service/internal/session"

	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
	"golang.org/x/sync/errgroup"
)

func main() {
	fx.New(
		fxmodules.Module,
		fx.Invoke(runServer),
	).Run()
}

func runServer(
	lc fx.Lifecycle,
	titleServer *server.TitleServer,
	presets *service.PresetService,
	brackets *service.BracketService,
	sessions *session.Manager,
	rot *rotation.Manager,
	sched *scheduler.Scheduler,
	queue *database.Queue,
	cfg *config.Config,
	db *sql.DB,
	logger zerolog.Logger,
) {
	mux := http.NewServeMux()
	titleServer.RegisterRoutes(mux)

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	handler := middleware.RequestID(logger)(middleware.Recover(logger)(c.Handler(mux)))

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.ServerPort),
		Handler: handler,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			warmCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
			defer cancel()

			g, warmCtx := errgroup.WithContext(warmCtx)
			g.Go(func() error { return presets.Warm(warmCtx) })
			g.Go(func() error { return brackets.LoadCatalog() })
			if err := g.Wait(); err != nil {
				return fmt.Errorf("warm-up failed: %w", err)
			}

			sched.Every("session-sweep", constants.SessionSweepInterval, func() {
				sessions.Sweep(time.Now())
			})
			sched.Every("title-rotation", cfg.RotationInterval, rot.Tick)

			go func() {
				logger.Info().Str("addr", srv.Addr).Msg("server starting")
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Fatal().Err(err).Msg("server failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info().Msg("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error().Err(err).Msg("server shutdown failed")
			}

			sched.Stop()
			sessions.Shutdown()
			queue.Close()

			if err := db.Close(); err != nil {
				logger.Warn().Err(err).Msg("error closing database connection")
			}
			logger.Info().Msg("server stopped gracefully")
			return nil
		},
	})
}
