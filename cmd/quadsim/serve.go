package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/san-kum/quadsim/internal/control"
	"github.com/san-kum/quadsim/internal/experiment"
	"github.com/san-kum/quadsim/internal/telemetry"
)

// runServe flies in real time with the sticks driven over websocket. The
// run lasts until interrupted unless --time is given.
func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	manual := control.NewManual()
	exp, err := experiment.New(cfg, manual, logger)
	if err != nil {
		return err
	}

	hub := telemetry.NewHub(manual, cfg.UnitsPerMeter, logger)
	exp.Simulator().AddObserver(hub)

	mux := http.NewServeMux()
	mux.Handle("/ws", hub)
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", addr), zap.String("endpoint", "/ws"))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	simCfg := cfg.SimConfig()
	if !cmd.Flags().Changed("time") {
		simCfg.Duration = 0
	}

	flightErr := make(chan error, 1)
	go func() { flightErr <- exp.Simulator().RunRealtime(ctx, simCfg) }()

	select {
	case err = <-flightErr:
	case err = <-serveErr:
		stop()
		<-flightErr
	}

	hub.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil {
		logger.Warn("shutdown", zap.Error(shutdownErr))
	}

	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
