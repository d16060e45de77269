package cmd

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/studypulse/internal/api"
	"github.com/abhisek/studypulse/internal/periodreset"
)

const shutdownTimeout = 15 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the progress JSON API over HTTP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd, logFormat("json"))
		if err != nil {
			return err
		}
		defer e.Close()

		addr := e.cfg.Server.Addr
		if a, _ := cmd.Flags().GetString("addr"); a != "" {
			addr = a
		}
		grade, _ := cmd.Flags().GetString("grade")

		deps := api.Deps{
			Progress:     e.progress,
			Auth:         e.auth,
			Log:          e.log,
			AllowOrigins: e.cfg.Server.AllowOrigins,
			DefaultGrade: grade,
		}
		if t, err := e.tutor(cmd.Context()); err != nil {
			e.log.Warn("tutor disabled", zap.Error(err))
		} else {
			deps.Tutor = t
		}
		srv := api.New(deps)

		if sched, _ := cmd.Flags().GetBool("reset-scheduler"); sched && e.db != nil {
			loc, _ := e.cfg.Location()
			s := periodreset.New(e.progress.Aggregator, loc, e.log)
			if err := s.Start(); err != nil {
				return err
			}
			defer s.Stop()
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		errc := make(chan error, 1)
		go func() {
			e.log.Info("listening", zap.String("addr", addr))
			errc <- srv.Listen(addr)
		}()

		select {
		case err := <-errc:
			return err
		case <-ctx.Done():
		}

		e.log.Info("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides server.addr)")
	serveCmd.Flags().String("grade", "", "Grade used for topic counts when a request names none")
	serveCmd.Flags().Bool("reset-scheduler", true, "Zero weekly/monthly totals on schedule while serving")
}
