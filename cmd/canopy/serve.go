package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	httpAdapter "canopy/internal/adapters/http"
	"canopy/internal/logging"
	"canopy/pkg/adapters/memory"
	"canopy/pkg/adapters/redis"
	"canopy/pkg/ports"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the attack-tree analysis HTTP server",
	Long: `Starts the REST API for uploading, editing and analyzing attack trees.
Sessions live in memory by default; use --store redis to share them
across replicas.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		port, _ := cmd.Flags().GetString("port")
		level, _ := cmd.Flags().GetString("log-level")

		log := logging.New(logging.ParseLevel(level))

		store, closeStore, err := buildStore(cmd)
		if err != nil {
			return err
		}
		defer closeStore()

		printBanner()
		handler := httpAdapter.NewHandler(store, log)

		srv := &http.Server{
			Addr:    ":" + port,
			Handler: handler,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			log.Info("server listening", "addr", srv.Addr)
			serverErrors <- srv.ListenAndServe()
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			return fmt.Errorf("server error: %w", err)

		case sig := <-shutdown:
			log.Info("shutdown started", "signal", sig.String())

			// Give outstanding requests a deadline for completion.
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				log.Error("graceful shutdown did not complete", "err", err)
				if err := srv.Close(); err != nil {
					return fmt.Errorf("could not stop server: %w", err)
				}
			}
			log.Info("server stopped gracefully")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	serveCmd.Flags().String("store", "memory", "Session store backend: memory or redis")
	serveCmd.Flags().String("redis-addr", "localhost:6379", "Redis address (with --store redis)")
	serveCmd.Flags().String("redis-password", "", "Redis password (with --store redis)")
	serveCmd.Flags().Int("redis-db", 0, "Redis database number (with --store redis)")
	serveCmd.Flags().Duration("session-ttl", 0, "Session expiry, 0 keeps sessions forever (with --store redis)")
	serveCmd.Flags().String("log-level", "info", "Log level: debug, info, warn or error")
}

func buildStore(cmd *cobra.Command) (ports.SpecStore, func(), error) {
	backend, _ := cmd.Flags().GetString("store")
	switch backend {
	case "memory":
		return memory.NewStore(), func() {}, nil
	case "redis":
		addr, _ := cmd.Flags().GetString("redis-addr")
		password, _ := cmd.Flags().GetString("redis-password")
		db, _ := cmd.Flags().GetInt("redis-db")
		ttl, _ := cmd.Flags().GetDuration("session-ttl")

		store := redis.New(addr, password, db, redis.WithTTL(ttl))
		return store, func() { store.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q, supported: memory, redis", backend)
	}
}
