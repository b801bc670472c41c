package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/eastboundjoe/aviation-study-guide/internal/api"
	"github.com/eastboundjoe/aviation-study-guide/internal/identity"
	"github.com/eastboundjoe/aviation-study-guide/internal/reminder"
	"github.com/eastboundjoe/aviation-study-guide/internal/speech"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the study API over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		rt, err := openRuntime(cmd, os.Stderr)
		if err != nil {
			return err
		}
		defer rt.Close()

		addr, _ := cmd.Flags().GetString("addr")
		if addr == "" {
			addr = net.JoinHostPort("", rt.cfg.Port)
		}

		if rt.cfg.EphemeralSessionKey {
			rt.logger.Warn("STUDYGUIDE_SESSION_KEY is not set; sign-in cookies will not survive a restart")
		}

		learners := rt.registry()
		defer learners.Close()

		speechCfg := speech.DefaultConfig()
		speechCfg.APIKey = rt.cfg.TTSAPIKey
		speechCfg.RequestsPerSecond = rt.cfg.TTSRate

		metrics := api.NewMetrics(learners.PendingWrites)
		handler := api.NewHandler(api.Deps{
			Learners: learners,
			Catalog:  rt.catalog,
			Identity: identity.NewProvider([]byte(rt.cfg.SessionKey), rt.cfg.SecureCookies),
			Grader:   rt.grader(ctx),
			Speech:   speech.NewClient(speechCfg, rt.logger),
			Metrics:  metrics,
			Logger:   rt.logger,
		})

		sweeper := reminder.New(learners, rt.cfg.ReminderInterval, rt.logger)
		if err := sweeper.Register(metrics.Registerer()); err != nil {
			return err
		}
		if err := sweeper.Start(); err != nil {
			return err
		}
		defer sweeper.Stop()

		srv := &http.Server{
			Addr:              addr,
			Handler:           handler.Router(),
			ReadHeaderTimeout: 10 * time.Second,
		}
		return serve(ctx, srv, rt.logger)
	},
}

// serve runs srv until ctx is cancelled, then drains in-flight requests.
func serve(ctx context.Context, srv *http.Server, logger *zap.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (default :$PORT)")
}
