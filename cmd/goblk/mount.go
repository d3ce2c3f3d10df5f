package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/oriys/goblk/examples/deadbeef"
	"github.com/oriys/goblk/examples/ramdisk"
	"github.com/oriys/goblk/internal/config"
	"github.com/oriys/goblk/internal/logging"
	"github.com/oriys/goblk/nbd"
)

func mountCmd() *cobra.Command {
	var (
		configPath string
		device     string
		backend    string
		sizeBytes  int64
		blockSize  uint32
		blocks     uint64
	)

	cmd := &cobra.Command{
		Use:   "mount",
		Short: "Mount a backend onto an NBD device node",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(configPath, device, backend, sizeBytes, blockSize, blocks)
			if err != nil {
				return err
			}

			logging.Configure(cfg.Logging.Format, cfg.Logging.Level)
			log := logging.Get()

			sessionID := uuid.NewString()
			log = log.With("session_id", sessionID, "device", cfg.Device, "backend", cfg.Backend)

			reg := prometheus.NewRegistry()
			metrics, err := nbd.NewMetrics(reg)
			if err != nil {
				return fmt.Errorf("goblk: registering metrics: %w", err)
			}

			if cfg.Metrics.Enabled {
				mux := http.NewServeMux()
				mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
				server := &http.Server{Addr: cfg.Metrics.Addr, Handler: mux}
				go func() {
					log.Info("metrics endpoint listening", "addr", cfg.Metrics.Addr)
					if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
						log.Error("metrics server stopped", "error", err)
					}
				}()
				defer server.Shutdown(context.Background())
			}

			backendImpl, err := buildBackend(cfg, log)
			if err != nil {
				return err
			}

			onReady := func(dev *nbd.Device) error {
				ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
				go func() {
					<-ctx.Done()
					stop()
					log.Info("received shutdown signal, unmounting")
					if err := dev.Unmount(); err != nil {
						log.Error("unmount failed", "error", err)
					}
				}()
				return nil
			}

			log.Info("mounting device")
			err = nbd.Mount(backendImpl, cfg.Device, onReady, nbd.WithLogger(log), nbd.WithMetrics(metrics))
			if err != nil {
				return fmt.Errorf("goblk: mount: %w", err)
			}
			log.Info("mount exited cleanly")
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Path to a YAML mount configuration file")
	cmd.Flags().StringVar(&device, "device", "", "NBD device node, e.g. /dev/nbd0")
	cmd.Flags().StringVar(&backend, "backend", "ramdisk", "Backend to mount: ramdisk or deadbeef")
	cmd.Flags().Int64Var(&sizeBytes, "size-bytes", 33554432, "Ramdisk size in bytes")
	cmd.Flags().Uint32Var(&blockSize, "block-size", 4096, "Logical block size in bytes")
	cmd.Flags().Uint64Var(&blocks, "blocks", 4096, "Deadbeef device block count")

	return cmd
}

func resolveConfig(configPath, device, backend string, sizeBytes int64, blockSize uint32, blocks uint64) (*config.MountConfig, error) {
	if configPath != "" {
		return config.Load(configPath)
	}
	if device == "" {
		return nil, fmt.Errorf("goblk: either --config or --device is required")
	}
	return &config.MountConfig{
		Device:    device,
		Backend:   backend,
		SizeBytes: sizeBytes,
		BlockSize: blockSize,
		Blocks:    blocks,
		Logging:   config.LoggingConfig{Format: "text", Level: "info"},
		Metrics:   config.MetricsConfig{Addr: "127.0.0.1:9109"},
	}, nil
}

func buildBackend(cfg *config.MountConfig, log *slog.Logger) (nbd.Backend, error) {
	switch cfg.Backend {
	case "ramdisk":
		size := cfg.SizeBytes
		if size == 0 {
			size = 33554432
		}
		return ramdisk.New(int(size), cfg.BlockSize, log), nil
	case "deadbeef":
		blocks := cfg.Blocks
		if blocks == 0 {
			blocks = 4096
		}
		return deadbeef.New(cfg.BlockSize, blocks, log), nil
	default:
		return nil, fmt.Errorf("goblk: unknown backend %q", cfg.Backend)
	}
}
