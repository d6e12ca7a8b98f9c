package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"productcatalog/httpapi"
)

func init() {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the REST API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			defer backend.Close()
			return httpapi.NewServer(services).Run(ctx, viper.GetString("addr"))
		},
	}
	serveCmd.Flags().String("addr", ":8080", "listen address")
	_ = viper.BindPFlag("addr", serveCmd.Flags().Lookup("addr"))
	rootCmd.AddCommand(serveCmd)
}
