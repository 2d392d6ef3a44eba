package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/eringen/inkwell"
)

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "inkwell",
		Short:         "A blog publishing engine built with Go, Echo, and templ",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "inkwell.yaml", "path to config file")

	root.AddCommand(newServeCmd(&configPath))
	root.AddCommand(newUserCmd(&configPath))
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the inkwell version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "inkwell %s\n", version)
		},
	})
	return root
}

func newServeCmd(configPath *string) *cobra.Command {
	var dev bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the blog",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := inkwell.LoadConfig(*configPath)
			if err != nil {
				return err
			}
			logger, err := newLogger(dev)
			if err != nil {
				return err
			}
			defer logger.Sync()

			app := inkwell.New(cfg, inkwell.WithLogger(logger))
			if err := app.Init(); err != nil {
				return err
			}
			defer app.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errc := make(chan error, 1)
			go func() {
				logger.Info("listening", zap.String("addr", cfg.Addr))
				errc <- app.Echo.Start(cfg.Addr)
			}()

			select {
			case err := <-errc:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
			}
			logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return app.Echo.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().BoolVar(&dev, "dev", false, "human-readable development logging")
	return cmd
}

func newLogger(dev bool) (*zap.Logger, error) {
	if dev {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
