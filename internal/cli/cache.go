package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/quarkusio/extensions-enricher/pkg/cache"
	"github.com/quarkusio/extensions-enricher/pkg/config"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the persisted GitHub caches",
	}

	cmd.AddCommand(c.cachePathCommand())
	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cacheStatsCommand())

	return cmd
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print where caches are stored",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cacheLocation(cfg))
			return nil
		},
	}
}

// cacheLocation describes where the configured backend keeps snapshots.
func cacheLocation(cfg *config.Config) string {
	switch cfg.Cache.Backend {
	case config.BackendSQLite:
		return cfg.Cache.SQLitePath
	case config.BackendRedis:
		return "redis://" + cfg.Cache.RedisAddr + "/" + cfg.Cache.RedisPrefix
	case config.BackendNone:
		return "(caching disabled)"
	default:
		return cfg.Cache.Dir
	}
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	var images bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every persisted cache snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			p, err := openPersister(ctx, cfg, false)
			if err != nil {
				return fmt.Errorf("open cache: %w", err)
			}
			defer p.Close()

			n, err := clearSnapshots(ctx, p)
			if err != nil {
				return err
			}
			printSuccess("Cleared %d caches", n)
			printDetail("Location: %s", cacheLocation(cfg))

			if images {
				if err := os.RemoveAll(cfg.Images.Dir); err != nil {
					return fmt.Errorf("remove images: %w", err)
				}
				printSuccess("Removed downloaded images")
				printDetail("Directory: %s", cfg.Images.Dir)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&images, "images", false, "also delete downloaded social images")
	return cmd
}

// clearSnapshots removes every known snapshot and returns how many caches
// it cleared.
func clearSnapshots(ctx context.Context, p cache.Persister) (int, error) {
	r, ok := p.(cache.Remover)
	if !ok {
		return 0, nil
	}
	n := 0
	for _, name := range cache.Names() {
		if err := r.Remove(ctx, name); err != nil {
			return n, fmt.Errorf("clear %s: %w", name, err)
		}
		n++
	}
	return n, nil
}

// cacheStat is one row of "cache stats".
type cacheStat struct {
	Name    string
	Entries int
	TTL     time.Duration
}

// cacheStatsCommand creates the "cache stats" subcommand.
func (c *CLI) cacheStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show how many live entries each cache holds",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			p, err := openPersister(ctx, cfg, false)
			if err != nil {
				return fmt.Errorf("open cache: %w", err)
			}
			defer p.Close()

			stats, err := c.collectStats(ctx, cfg, p)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderStats(stats))
			printDetail("Location: %s", cacheLocation(cfg))
			return nil
		},
	}
}

// collectStats loads each snapshot without decoding its values.
func (c *CLI) collectStats(ctx context.Context, cfg *config.Config, p cache.Persister) ([]cacheStat, error) {
	ttls := map[string]time.Duration{
		cache.RepoCacheName:        cfg.Cache.RepoTTL.Duration,
		cache.LocationCacheName:    cfg.Cache.LocationTTL.Duration,
		cache.ContributorCacheName: cfg.Cache.ContributorTTL.Duration,
	}
	var stats []cacheStat
	for _, name := range cache.Names() {
		s := cache.NewStore[json.RawMessage](name, ttls[name], p, cache.WithLogger(c.Logger))
		if err := s.Ready(ctx); err != nil {
			return nil, err
		}
		stats = append(stats, cacheStat{Name: s.Name(), Entries: s.Size(), TTL: s.TTL()})
	}
	return stats, nil
}

func renderStats(stats []cacheStat) string {
	rows := make([][]string, 0, len(stats))
	for _, s := range stats {
		rows = append(rows, []string{s.Name, fmt.Sprint(s.Entries), s.TTL.String()})
	}
	header := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Cache", "Entries", "TTL").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			if col == 1 {
				return styleNumber.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Render()
}
