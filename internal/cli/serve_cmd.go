package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"justdo/internal/api"
)

func newServeCmd(app *App) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			server := api.New(app.Store, app.Orchestrator, app.ProfilePath, app.AIEnabled, app.Log)

			addr := fmt.Sprintf(":%d", port)
			app.Log.WithField("addr", addr).Info("starting http api")
			return server.App().Listen(addr)
		},
	}

	cmd.Flags().IntVar(&port, "port", app.Port, "Port to listen on")

	return cmd
}
