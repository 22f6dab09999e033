package cli

import (
	"github.com/spf13/cobra"

	"github.com/quarkusio/extensions-enricher/pkg/buildinfo"
)

// RootCommand creates the root cobra command with all subcommands registered.
//
// Commands:
//   - enrich: attach GitHub information to catalog entries
//   - cache: inspect or clear the persisted caches
//   - serve: expose emitted records over HTTP
//   - config: show the effective configuration
//   - completion: shell completion scripts
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Enrich extension catalog entries with GitHub information",
		Long: `enricher reads extension catalog entries, looks up their source repositories
on GitHub and emits source-control records: open issue counts, labels,
extension descriptor locations, sponsors, contributors and social images.

Responses are cached between runs so that repeated builds stay within the
GitHub rate limit.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.ConfigPath, "config", "", "config file (default $XDG_CONFIG_HOME/enricher/config.toml)")

	root.AddCommand(c.enrichCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}
