package cli

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/quarkusio/extensions-enricher/pkg/catalog"
	"github.com/quarkusio/extensions-enricher/pkg/sink"
)

const shutdownTimeout = 5 * time.Second

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var records, addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve emitted records over HTTP",
		Long: `Serve a records file written by "enricher enrich" as a read-only JSON API:

  GET /source-control-info           all records (filter with ?owner=)
  GET /source-control-info/{key}     one record by key or id
  GET /healthz                       liveness and record count`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Serve.Addr
			}
			recs, err := sink.ReadJSON(records)
			if err != nil {
				return err
			}

			srv := &http.Server{
				Addr:              addr,
				Handler:           newRecordsHandler(recs, c.Logger),
				ReadHeaderTimeout: 10 * time.Second,
			}
			printSuccess("Serving %d records on %s", len(recs), addr)
			return serve(cmd.Context(), srv)
		},
	}
	cmd.Flags().StringVar(&records, "records", "", "records file written by enrich")
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	cmd.MarkFlagRequired("records")
	return cmd
}

// serve runs srv until ctx is done, then shuts it down gracefully.
func serve(ctx context.Context, srv *http.Server) error {
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// recordsAPI answers lookups over an immutable set of records.
type recordsAPI struct {
	records []*catalog.SourceControlInfo
	byKey   map[string]*catalog.SourceControlInfo
	byID    map[string]*catalog.SourceControlInfo
}

func newRecordsHandler(records []*catalog.SourceControlInfo, logger *log.Logger) http.Handler {
	api := &recordsAPI{
		records: records,
		byKey:   make(map[string]*catalog.SourceControlInfo, len(records)),
		byID:    make(map[string]*catalog.SourceControlInfo, len(records)),
	}
	for _, r := range records {
		api.byKey[r.Key] = r
		api.byID[r.ID] = r
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(logger))

	r.Get("/healthz", api.health)
	r.Route("/source-control-info", func(r chi.Router) {
		r.Get("/", api.list)
		r.Get("/*", api.get)
	})
	return r
}

func (a *recordsAPI) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "records": len(a.records)})
}

func (a *recordsAPI) list(w http.ResponseWriter, r *http.Request) {
	owner := r.URL.Query().Get("owner")
	if owner == "" {
		writeJSON(w, http.StatusOK, a.records)
		return
	}
	out := []*catalog.SourceControlInfo{}
	for _, rec := range a.records {
		if rec.Owner == owner {
			out = append(out, rec)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

// get looks a record up by id or by key. Keys contain slashes, so they are
// matched against the rest of the path, unescaped.
func (a *recordsAPI) get(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "*")
	key, err := url.PathUnescape(raw)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed key"})
		return
	}
	if rec, ok := a.byID[key]; ok {
		writeJSON(w, http.StatusOK, rec)
		return
	}
	if rec, ok := a.byKey[key]; ok {
		writeJSON(w, http.StatusOK, rec)
		return
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "no record for " + key})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// requestLogger logs each request at debug level.
func requestLogger(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug("http", "method", r.Method, "path", r.URL.Path, "status", ww.Status(), "duration", time.Since(start).Round(time.Microsecond))
		})
	}
}
