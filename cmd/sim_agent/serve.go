package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/kaldeqca/sex-sim-ai/internal/config"
	"github.com/kaldeqca/sex-sim-ai/internal/server"
	"github.com/kaldeqca/sex-sim-ai/internal/server/ratelimit"
	"github.com/spf13/cobra"
)

type serveOptions struct {
	engineFlags
	port int
}

func newServeCmd(root *rootOptions) *cobra.Command {
	opts := &serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the REST API server",
		Long: `Start an HTTP server that exposes the parsing engine, locale profiles and profile
cards as REST endpoints. Setting JWT_SECRET requires a bearer token on every route except
/health and /auth/token; API clients are listed under "clients" in the config file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, root, opts)
		},
	}

	opts.register(cmd)
	cmd.Flags().IntVar(&opts.port, "port", 0, "Port to listen on (default: PORT or 8080)")
	return cmd
}

func runServe(cmd *cobra.Command, root *rootOptions, opts *serveOptions) error {
	s, err := loadSettings(cmd, root, &opts.engineFlags)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("port") {
		s.cfg.Port = opts.port
	}

	jwtConfig, err := config.NewJWTConfig()
	if err != nil {
		return fmt.Errorf("failed to create JWT config: %w", err)
	}
	if jwtConfig != nil && len(s.cfg.Clients) == 0 {
		s.logger.Warn("JWT_SECRET is set but no clients are configured; no tokens can be issued")
	}

	srv, err := server.New(server.Config{
		Port:      s.cfg.Port,
		App:       &s.cfg,
		JWT:       jwtConfig,
		RateLimit: ratelimit.LoadConfig(),
		Logger:    s.logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	ctx, stop := signal.NotifyContext(contextOf(cmd), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return srv.Start(ctx)
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
