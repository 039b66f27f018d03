package main

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/viant/cpicrag/api"
	"github.com/viant/cpicrag/vectordb/sqlitevec"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve POST /explain over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, svc, logger, err := root.setup(cmd)
			if err != nil {
				return err
			}
			defer svc.Close()
			if _, err := svc.Collection(cmd.Context()); err != nil {
				if errors.Is(err, sqlitevec.ErrCollectionNotFound) {
					return fmt.Errorf("collection %q not found: run \"cpicrag index\" first", svc.CollectionName())
				}
				return err
			}
			if addr == "" {
				addr = cfg.Server.Addr
			}
			gin.SetMode(gin.ReleaseMode)
			srv := api.NewServer(addr, api.NewRouter(svc, logger))
			return api.Serve(cmd.Context(), srv, logger)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	return cmd
}
