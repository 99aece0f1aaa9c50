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

	"github.com/drblury/todoweaver/config"
	"github.com/drblury/todoweaver/info"
	"github.com/drblury/todoweaver/jsonutil"
	"github.com/drblury/todoweaver/probe"
	"github.com/drblury/todoweaver/server"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "todoweaver",
		Short: "todoweaver serves a todo collection over HTTP",
		Long: `todoweaver serves a todo collection over HTTP, backed by memory or MongoDB.

Configuration is read from an optional YAML or TOML file, TODOWEAVER_*
environment variables and command line flags, in increasing precedence.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newServeCmd(), newHealthcheckCmd(), newVersionCmd())
	return root
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			logger, err := config.NewLogger(cfg.Logging, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv, err := server.New(ctx, cfg, server.WithLogger(logger))
			if err != nil {
				return err
			}
			return srv.Run(ctx)
		},
	}

	cmd.Flags().StringP("config", "c", "", "path to a .yaml, .yml or .toml config file")
	cmd.Flags().String("backend", config.BackendMemory, "store backend: memory or mongo")
	cmd.Flags().String("host", config.DefaultHost, "address to listen on")
	cmd.Flags().IntP("port", "p", config.DefaultPort, "port to listen on")
	return cmd
}

// loadConfig applies the flags the user actually set on top of the loaded
// configuration.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	flags := cmd.Flags()
	path, _ := flags.GetString("config")

	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}

	if flags.Changed("backend") {
		cfg.Store.Backend, _ = flags.GetString("backend")
	}
	if flags.Changed("host") {
		cfg.Server.Host, _ = flags.GetString("host")
	}
	if flags.Changed("port") {
		cfg.Server.Port, _ = flags.GetInt("port")
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func newHealthcheckCmd() *cobra.Command {
	var (
		target  string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "healthcheck",
		Short: "Probe a running server, exiting non-zero when it is not ready",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			check := probe.NewHTTPProbe(target,
				probe.WithClient(&http.Client{Timeout: timeout}),
				probe.WithHeader("Accept", "application/json"),
				probe.WithReportedState("ready"),
			)
			if err := check(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	}

	cmd.Flags().StringVar(&target, "url", "http://localhost:8080"+info.ReadyzPath, "readiness endpoint to probe")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "probe timeout")
	return cmd
}

func newVersionCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			bi := info.ReadBuildInfo()
			if !asJSON {
				fmt.Fprintf(cmd.OutOrStdout(), "todoweaver %s\n", bi.Version)
				return nil
			}
			out, err := jsonutil.MarshalIndent(bi, "", "  ")
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print build information as JSON")
	return cmd
}
