package main

import (
	"context"
	"net/http"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"weightnav/internal/api"
	"weightnav/internal/buildinfo"
)

func newServeCommand(ctx context.Context, input *Input) func(*cobra.Command, []string) error {
	return func(_ *cobra.Command, _ []string) error {
		cfg, err := loadConfig(input)
		if err != nil {
			return err
		}
		logger := log.WithField("service", "weightnav")
		srvDeps, err := api.NewServer(ctx, cfg, logger)
		if err != nil {
			return errors.Wrap(err, "init server")
		}
		defer srvDeps.Close()
		srvDeps.Start(ctx)

		srv := &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           srvDeps.Routes(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		errc := make(chan error, 1)
		go func() { errc <- srv.ListenAndServe() }()
		logger.WithFields(log.Fields{"addr": srv.Addr, "version": buildinfo.Version}).Info("API listening")

		select {
		case err := <-errc:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return errors.Wrap(err, "server error")
		case <-ctx.Done():
		}
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
