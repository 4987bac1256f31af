// Command csvexport exports the users of the mock user API as CSV.
//
// In stdout mode the export is written to standard output. In serve mode an HTTP server streams
// exports at /export.csv and exposes Prometheus metrics at /metrics.
//
// Usage:
//
//	csvexport [flags]
//
// Every flag can also be set with a CSVEXPORT_ environment variable (CSVEXPORT_LOG_LEVEL=debug)
// or in the file passed with --config.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := run(ctx, os.Args[1:], os.Stdout)
	stop()

	if errors.Is(err, pflag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "csvexport:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	exp, err := newExporter(cfg, logger, reg)
	if err != nil {
		return err
	}

	logger.Debug("Configuration loaded", zap.Any("config", cfg))

	switch cfg.Mode {
	case modeServe:
		gin.SetMode(gin.ReleaseMode)

		ln, err := net.Listen("tcp", cfg.Listen)
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}

		return serve(ctx, ln, newRouter(exp, cfg, reg), logger)
	default:
		return exp.writeTo(ctx, stdout, cfg.Limit)
	}
}
