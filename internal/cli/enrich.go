package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/quarkusio/extensions-enricher/pkg/catalog"
	"github.com/quarkusio/extensions-enricher/pkg/config"
	"github.com/quarkusio/extensions-enricher/pkg/observability"
	"github.com/quarkusio/extensions-enricher/pkg/sink"
)

// enrichOptions holds the flags of the enrich command.
type enrichOptions struct {
	input       string
	output      string
	noCache     bool
	noImages    bool
	progress    bool
	sink        string
	mongoURL    string
	concurrency int
}

// enrichCommand creates the enrich command.
func (c *CLI) enrichCommand() *cobra.Command {
	var opts enrichOptions

	cmd := &cobra.Command{
		Use:   "enrich",
		Short: "Attach GitHub information to catalog entries",
		Long: `Read catalog entries (a JSON array or one JSON object per line), look up
each entry's source repository on GitHub and write one source-control record
per entry.

Caches are loaded before the run and persisted afterwards, even when the run
fails part way, so the next run starts where this one left off.`,
		Example: `  # Enrich extensions and write the records to a file
  enricher enrich --input extensions.json --output source-control.json

  # Upsert the records into MongoDB with a live progress view
  GITHUB_TOKEN=... enricher enrich -i extensions.ndjson --sink mongo --mongo-url mongodb://localhost --progress`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if err := opts.apply(cmd, cfg); err != nil {
				return err
			}
			return c.runEnrich(cmd.Context(), cfg, opts, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&opts.input, "input", "i", "", "catalog entries to enrich (- for stdin)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "-", "records output file for the json sink (- for stdout)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "neither read nor persist caches")
	cmd.Flags().BoolVar(&opts.noImages, "no-images", false, "do not download social images")
	cmd.Flags().BoolVar(&opts.progress, "progress", false, "show an interactive progress view")
	cmd.Flags().StringVar(&opts.sink, "sink", "", "record sink: json or mongo (default from config)")
	cmd.Flags().StringVar(&opts.mongoURL, "mongo-url", "", "MongoDB connection string for the mongo sink")
	cmd.Flags().IntVar(&opts.concurrency, "concurrency", 0, "entries processed at once (default from config, 0 = unbounded)")
	cmd.MarkFlagRequired("input")

	return cmd
}

// apply lets flags override the configuration.
func (o *enrichOptions) apply(cmd *cobra.Command, cfg *config.Config) error {
	if o.sink != "" {
		cfg.Output.Sink = o.sink
	}
	if o.mongoURL != "" {
		cfg.Output.MongoURL = o.mongoURL
	}
	if cmd.Flags().Changed("concurrency") {
		cfg.Enrich.Concurrency = o.concurrency
	}
	if o.noImages {
		cfg.Images.Disabled = true
	}
	return cfg.Validate()
}

func (c *CLI) runEnrich(ctx context.Context, cfg *config.Config, opts enrichOptions, stdin io.Reader, out io.Writer) (err error) {
	if cfg.Output.Sink == config.SinkJSON && (opts.output == "-" || opts.output == "") {
		// Records go to stdout; keep status lines out of them.
		old := stdout
		stdout = os.Stderr
		defer func() { stdout = old }()
	}

	nodes, err := readNodes(opts.input, stdin)
	if err != nil {
		return err
	}
	nodes = catalog.FilterType(nodes, cfg.Enrich.NodeType)

	hooks := newRunHooks(c.Logger)
	hooks.install()
	defer observability.Reset()

	st, err := c.newStack(ctx, cfg, opts.noCache)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("close cache: %w", cerr))
		}
	}()
	e := st.enricher

	if err := e.Ready(ctx); err != nil {
		return fmt.Errorf("load caches: %w", err)
	}
	defer func() {
		// Persist whatever was learned, even after a failure or Ctrl-C.
		if perr := e.Persist(context.WithoutCancel(ctx)); perr != nil {
			printWarning("Could not persist caches: %v", perr)
			err = errors.Join(err, perr)
		}
	}()

	sw := newStopwatch(c.Logger)
	if err := e.Bootstrap(ctx); err != nil {
		return err
	}

	var records []*catalog.SourceControlInfo
	run := func(ctx context.Context) error {
		var err error
		records, err = e.EnrichAll(ctx, nodes)
		return err
	}
	if opts.progress {
		err = runWithProgress(ctx, os.Stderr, len(nodes), hooks, run)
	} else {
		spin := newSpinner(ctx, os.Stderr, fmt.Sprintf("Enriching %d entries", len(nodes)))
		hooks.onEntry = func(done int64, _ string, _ error) {
			spin.SetMessage("Enriching %d/%d entries", done, len(nodes))
		}
		spin.Start()
		err = run(ctx)
		hooks.onEntry = nil
		if err != nil {
			spin.StopWithError("Enrichment stopped: %v", err)
			return err
		}
		spin.StopWithSuccess("Enriched %d entries", len(records))
	}
	if err != nil {
		printError("Enrichment stopped: %v", err)
		return err
	}
	sw.done(fmt.Sprintf("Enriched %d entries", len(records)))

	if err := writeRecords(ctx, cfg, opts.output, out, records); err != nil {
		return err
	}

	stats := e.Stats()
	printSuccess("Wrote %d source-control records", len(records))
	printSummary(summary{
		Records:   len(records),
		Skipped:   stats.Skipped,
		NonGitHub: stats.NonGitHub,
		CacheHits: hooks.hits.Load(),
		Queries:   hooks.queryCounts(),
	})
	if cfg.Output.Sink == config.SinkJSON && opts.output != "-" {
		printFile(opts.output)
		printNextStep("Serve them", "enricher serve --records "+opts.output)
	}
	return nil
}

// readNodes reads catalog entries from path, or from stdin when path is "-".
func readNodes(path string, stdin io.Reader) ([]catalog.Node, error) {
	if path == "-" {
		return catalog.ReadNodes(stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()
	return catalog.ReadNodes(f)
}

// openSink returns the sink selected by the configuration.
func openSink(ctx context.Context, cfg *config.Config, output string, stdout io.Writer) (sink.Sink, error) {
	if cfg.Output.Sink == config.SinkMongo {
		return sink.NewMongoSink(ctx, sink.MongoConfig{
			URL:        cfg.Output.MongoURL,
			Database:   cfg.Output.MongoDatabase,
			Collection: cfg.Output.MongoCollection,
		})
	}
	if output == "-" || output == "" {
		return sink.NewJSONSink(stdout), nil
	}
	return sink.CreateJSONFile(output)
}

func writeRecords(ctx context.Context, cfg *config.Config, output string, stdout io.Writer, records []*catalog.SourceControlInfo) error {
	s, err := openSink(ctx, cfg, output, stdout)
	if err != nil {
		return fmt.Errorf("open sink: %w", err)
	}
	if err := s.Write(ctx, records); err != nil {
		s.Close()
		return fmt.Errorf("write records: %w", err)
	}
	return s.Close()
}
