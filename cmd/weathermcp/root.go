package main

import (
	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

func newRootCmd() *cobra.Command {
	var configFile string

	root := &cobra.Command{
		Use:     "weathermcp",
		Short:   "Weather MCP server with bearer token authentication",
		Version: version,
		Long: `weathermcp serves weather tools over the Model Context Protocol,
guarded by signed bearer tokens. It can also mint tokens and run as an
authenticating reverse proxy in front of another MCP server.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&configFile, "config", "c", "",
		"path to config file (default: ./config.yaml)")

	root.AddCommand(newServeCmd(&configFile))
	root.AddCommand(newTokenCmd(&configFile))
	root.AddCommand(newProxyCmd(&configFile))
	return root
}
