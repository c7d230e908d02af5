// Package server serves the renderings of a tree dump over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	taxerrors "github.com/matzehuels/taxotree/pkg/errors"
	"github.com/matzehuels/taxotree/pkg/extract"
	taxio "github.com/matzehuels/taxotree/pkg/io"
	"github.com/matzehuels/taxotree/pkg/pipeline"
)

// Server serves one tree.
type Server struct {
	dump   *taxio.Dump
	runner *pipeline.Runner
	opts   pipeline.Options
	logger *log.Logger
}

// New returns a server for d. Renderings go through runner, so they are
// computed once per set of options.
func New(d *taxio.Dump, runner *pipeline.Runner, opts pipeline.Options, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if runner == nil {
		runner = pipeline.NewRunner(nil, nil, logger)
	}
	return &Server{dump: d, runner: runner, opts: opts, logger: logger}
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(time.Minute))

	r.Get("/", s.artifact(pipeline.FormatKronaHTML))
	r.Get("/krona.xml", s.artifact(pipeline.FormatKronaXML))
	r.Get("/krona.json", s.artifact(pipeline.FormatKronaJSON))
	r.Get("/dendrogram.txt", s.artifact(pipeline.FormatText))
	r.Get("/tree.svg", s.artifact(pipeline.FormatSVG))
	r.Get("/tree.dot", s.artifact(pipeline.FormatDOT))
	r.Get("/tree.json", s.artifact(pipeline.FormatJSON))
	r.Get("/members/{name}", s.members)
	r.Get("/healthz", s.health)
	return r
}

// ListenAndServe serves on addr until ctx is canceled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
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

// artifact serves one format. The dendrogram honours ?queries=1.
func (s *Server) artifact(format string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		opts := s.opts
		opts.Formats = []string{format}
		if q := r.URL.Query().Get("queries"); q != "" {
			opts.Queries, _ = strconv.ParseBool(q)
		}
		out, err := s.runner.Render(r.Context(), s.dump.Tree, s.dump.Header, opts)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		w.Header().Set("Content-Type", pipeline.ContentTypes[format])
		w.Write(out[format])
	}
}

func (s *Server) members(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	refs, err := extract.Members(s.dump.Tree.Root, name)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if err := extract.Write(w, refs); err != nil {
		s.logger.Error("write members", "err", err)
	}
}

type healthResponse struct {
	Status  string    `json:"status"`
	RunID   string    `json:"run_id"`
	Source  string    `json:"source,omitempty"`
	Created time.Time `json:"created_at"`
	Reads   int       `json:"reads"`
	Nodes   int       `json:"nodes"`
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	h := s.dump.Header
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(healthResponse{
		Status:  "ok",
		RunID:   h.RunID.String(),
		Source:  h.Source,
		Created: h.CreatedAt,
		Reads:   s.dump.Tree.Root.Count,
		Nodes:   s.dump.Tree.Root.Size(),
	})
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch taxerrors.GetCode(err) {
	case taxerrors.ErrCodeNotFound:
		status = http.StatusNotFound
	case taxerrors.ErrCodeInvalidInput, taxerrors.ErrCodeInvalidFormat:
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "err", err)
	}
	http.Error(w, taxerrors.UserMessage(err), status)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"id", middleware.GetReqID(r.Context()))
	})
}
