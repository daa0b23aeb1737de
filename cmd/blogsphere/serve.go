package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"

	"blogsphere/internal/auth"
	"blogsphere/internal/handlers"
	"blogsphere/internal/storage"
)

const addrFlag = "addr"

var serveFlags = map[string]cobraflags.Flag{
	addrFlag: &cobraflags.StringFlag{
		Name:  addrFlag,
		Value: "",
		Usage: "Listen address, overrides server.addr",
	},
}

const shutdownTimeout = 15 * time.Second

func newServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Migrate the database and start the HTTP API",
		RunE:  serveCommand,
	}
	cobraflags.RegisterMap(cmd, serveFlags)
	return cmd
}

func serveCommand(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	e, err := setup(ctx)
	if err != nil {
		return err
	}
	defer e.db.Close()

	if err := e.db.Migrate(ctx); err != nil {
		return err
	}

	authService := auth.NewService(e.db, auth.GoogleVerifier{ClientID: e.cfg.Auth.GoogleClientID},
		e.cfg.Session.TTL, e.cfg.Session.AdminTTL, e.logger)
	if err := authService.BootstrapAdmin(ctx, e.cfg.Admin.Email, e.cfg.Admin.Password); err != nil {
		return err
	}

	store, err := storage.NewLocalStore(e.cfg.Upload.Dir, e.cfg.Upload.PublicPath)
	if err != nil {
		return err
	}

	addr := e.cfg.Server.Addr
	if v := serveFlags[addrFlag].GetString(); v != "" {
		addr = v
	}

	srv := &http.Server{
		Addr: addr,
		Handler: handlers.NewRouter(handlers.Options{
			DB:             e.db,
			Auth:           authService,
			Store:          store,
			Files:          store.Handler(),
			PublicPath:     store.PublicPath,
			MaxFileSize:    e.cfg.Upload.MaxFileSize,
			MaxFiles:       e.cfg.Upload.MaxFiles,
			AllowedOrigins: e.cfg.Server.AllowedOrigins,
			Logger:         e.logger,
		}),
		ReadTimeout:  e.cfg.Server.ReadTimeout,
		WriteTimeout: e.cfg.Server.WriteTimeout,
		IdleTimeout:  e.cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		e.logger.Info("server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	e.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	e.logger.Info("server stopped")
	return nil
}
