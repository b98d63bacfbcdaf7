package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tomas/iqdb/internal/config"
	"github.com/tomas/iqdb/internal/constants"
	"github.com/tomas/iqdb/internal/core"
	"github.com/tomas/iqdb/internal/web"
)

var httpCmd = &cobra.Command{
	Use:   "http [host] [port] [dbfile]",
	Short: "Run the HTTP server",
	Long: `Run the iqdb HTTP server, serving the images, query and status
endpoints over the persistent store at dbfile.`,
	Args: cobra.MaximumNArgs(3),
	RunE: runHTTP,
}

func init() {
	rootCmd.AddCommand(httpCmd)
}

func runHTTP(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	weights, err := config.LoadWeights(cfg)
	if err != nil {
		return err
	}

	host := cfg.HTTP.Host
	port := cfg.HTTP.Port
	dbfile := cfg.Store.Path

	if len(args) > 0 {
		host = args[0]
	}
	if len(args) > 1 {
		p, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("port must be an integer, got %q", args[1])
		}
		port = p
	}
	if len(args) > 2 {
		dbfile = args[2]
	} else if dbfile == "" {
		dbfile = constants.DefaultDBFile
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fmt.Printf("iqdb: opening store %s\n", dbfile)
	db, err := core.OpenWithOptions(ctx, dbfile, cfg.Store.MaxOpenConns, cfg.Store.BusyTimeoutMS, weights)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer db.Close()

	server := web.NewServer(cfg, db, host, port)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\niqdb: shutting down")

		shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			fmt.Printf("iqdb: error during shutdown: %v\n", err)
		}
	}()

	fmt.Printf("iqdb: starting HTTP server on http://%s:%d (press Ctrl+C to stop)\n", host, port)
	if err := server.Start(); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	return nil
}
