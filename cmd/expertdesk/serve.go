package main

import (
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/csheth/expertdesk/internal/web"
)

func init() {
	serveCmd.Flags().String("addr", ":8501", "listen address for the web form")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the question form over HTTP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap(cmd.Flags(), true)
		if err != nil {
			return err
		}
		defer a.log.Sync()

		if a.cfg.LogMode == "prod" {
			gin.SetMode(gin.ReleaseMode)
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		server := web.NewServer(web.Config{
			Generator:  a.generator,
			ClientName: a.clientName,
			Logger:     a.log,
		})
		return server.Run(ctx, a.cfg.Addr)
	},
}
