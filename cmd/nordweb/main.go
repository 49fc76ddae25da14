// Command nordweb runs the Nordweb marketing site and customer portal.
//
// Configuration is read from a YAML file (--config, NORDWEB_CONFIG,
// ./config.yaml or /etc/nordweb/config.yaml) and NORDWEB_* environment
// variables. See pkg/config for the full list.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/nordweb/portal/pkg/config"
	"github.com/nordweb/portal/pkg/debug"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// options are the flags shared by every subcommand.
type options struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "nordweb [sub-command]",
		Short: "Nordweb website and customer portal",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		SilenceUsage:      true,
		DisableAutoGenTag: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to the YAML config file")

	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(newMigrateCmd(opts))
	cmd.AddCommand(newUserCmd(opts))
	cmd.AddCommand(newVersionCmd())
	return cmd
}

// load reads the configuration and installs the default logger.
func (o *options) load() (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	debug.Init(debug.Options{
		Categories: cfg.Log.Categories,
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
	})
	return cfg, nil
}
