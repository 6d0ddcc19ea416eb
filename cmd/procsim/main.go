package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/viant/procsim"
	"github.com/viant/procsim/api"
	"github.com/viant/procsim/internal/logging"
	"github.com/viant/procsim/internal/shell"
	"github.com/viant/procsim/service/event"
	"github.com/viant/procsim/tracing"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "procsim: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configURL := flag.String("config", "", "config URL (any afs scheme or local path)")
	capacity := flag.Int("capacity", 0, "memory capacity in bytes, overrides config")
	interval := flag.Duration("interval", 0, "wall time between ticks, overrides config")
	listen := flag.String("listen", "", "serve the HTTP API on this address, e.g. :8080")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	config := procsim.DefaultConfig()
	if *configURL != "" {
		var err error
		if config, err = procsim.LoadConfig(ctx, *configURL); err != nil {
			return err
		}
	}
	options := []procsim.Option{procsim.WithConfig(config)}
	if *capacity != 0 {
		options = append(options, procsim.WithMemoryCapacity(*capacity))
	}
	if *interval != 0 {
		options = append(options, procsim.WithInterval(*interval))
	}
	logger := logging.New(config.Log, os.Stderr)
	options = append(options, procsim.WithLogger(logger))
	if config.Events.Enabled {
		options = append(options, procsim.WithEventListener(logEvent(logger)))
	}

	srv, err := procsim.New(options...)
	if err != nil {
		return err
	}
	runtime := srv.Runtime()
	if err = runtime.Start(ctx); err != nil {
		return err
	}
	var server *http.Server
	if *listen != "" {
		server = &http.Server{Addr: *listen, Handler: api.NewHandler(runtime, logger)}
		go func() {
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("http server failed", logging.ErrAttr(err))
			}
		}()
		logger.Info("http api listening", slog.String("addr", *listen))
	}
	runErr := shell.New(runtime, os.Stdin, os.Stdout, logger).Run(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if server != nil {
		if err = server.Shutdown(shutdownCtx); err != nil {
			logger.Warn("http shutdown failed", logging.ErrAttr(err))
		}
	}
	if err = runtime.Shutdown(shutdownCtx); err != nil {
		logger.Warn("shutdown failed", logging.ErrAttr(err))
	}
	if err = tracing.Shutdown(shutdownCtx); err != nil {
		logger.Warn("tracing shutdown failed", logging.ErrAttr(err))
	}
	return runErr
}

// logEvent drains the transition event stream into the log
func logEvent(logger *slog.Logger) func(*event.Event[event.Transition]) {
	return func(anEvent *event.Event[event.Transition]) {
		transition := anEvent.Data
		logger.Info("process event",
			slog.String("id", anEvent.Context.ID),
			slog.Int("pid", transition.PID),
			slog.String("kind", string(transition.Kind)),
			slog.Uint64("tick", transition.Tick))
	}
}
