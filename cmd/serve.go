package cmd

import (
	"github.com/spf13/cobra"

	"github.com/rageebridwan/newsmind/config"
	srv "github.com/rageebridwan/newsmind/internal/server"
)

func serveCMD() *cobra.Command {
	var cfgPath string
	var serve = &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfig(cfgPath)

			return srv.Run(cfg)
		},
	}
	serve.Flags().StringVarP(&cfgPath, "config", "c", "", "config file (default searches ./config, . and the binary dir)")

	return serve
}
