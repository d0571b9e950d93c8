package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"MegaStore/pkg/kit"
)

const (
	orderByName = "name"
	orderByCode = "code"

	headerGeneration = "X-Catalog-Generation"
	reloadTimeout    = 30 * time.Second
)

type Server struct {
	Holder  *Holder
	Log     *zap.Logger
	Metrics *Metrics
	Admin   *TokenMaker
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 1*time.Second)
		defer cancel()

		if err := s.Holder.Ping(ctx); err != nil {
			if s.Log != nil {
				s.Log.Warn("readyz failed", zap.Error(err))
			}
			kit.WriteError(w, r, http.StatusServiceUnavailable, "not ready", nil)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	r.Get("/products", s.list)
	r.Get("/products/{code}", s.get)
	r.Get("/search", s.search)
	r.Get("/letters/{letter}", s.letter)
	r.Get("/stats", s.stats)

	r.With(RequireAdmin(s.Admin)).Post("/admin/reload", s.reload)

	return r
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	order := r.URL.Query().Get("order")
	if order == "" {
		order = orderByName
	}
	if order != orderByName && order != orderByCode {
		kit.WriteError(w, r, http.StatusBadRequest, "bad order", map[string]any{"order": order, "allowed": []string{orderByName, orderByCode}})
		return
	}

	snap, ok := s.snapshot(w, r)
	if !ok {
		return
	}

	var products []Product
	s.timed(w, "list_by_"+order, func() {
		if order == orderByCode {
			products = snap.Index.ListByCode()
		} else {
			products = snap.Index.ListByName()
		}
	})
	kit.WriteJSON(w, http.StatusOK, products)
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	code := pathParam(r, "code")

	snap, ok := s.snapshot(w, r)
	if !ok {
		return
	}

	var (
		p     Product
		found bool
	)
	s.timed(w, "lookup_by_code", func() {
		p, found = snap.Index.LookupByCode(code)
	})
	if !found {
		kit.WriteError(w, r, http.StatusNotFound, "not found", map[string]any{"code": code})
		return
	}
	kit.WriteJSON(w, http.StatusOK, p)
}

func (s *Server) search(w http.ResponseWriter, r *http.Request) {
	term := strings.TrimSpace(r.URL.Query().Get("q"))

	snap, ok := s.snapshot(w, r)
	if !ok {
		return
	}

	var (
		products []Product
		err      error
	)
	s.timed(w, "search_by_prefix", func() {
		products, err = snap.Index.SearchByPrefix(term)
	})
	if err != nil {
		s.writeQueryError(w, r, err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, products)
}

func (s *Server) letter(w http.ResponseWriter, r *http.Request) {
	letter := strings.TrimSpace(pathParam(r, "letter"))

	snap, ok := s.snapshot(w, r)
	if !ok {
		return
	}

	var (
		products []Product
		err      error
	)
	s.timed(w, "filter_by_initial", func() {
		products, err = snap.Index.FilterByInitial(letter)
	})
	if err != nil {
		s.writeQueryError(w, r, err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, products)
}

func (s *Server) stats(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot(w, r)
	if !ok {
		return
	}
	kit.WriteJSON(w, http.StatusOK, snap.Stats())
}

func (s *Server) reload(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), reloadTimeout)
	defer cancel()

	snap, err := s.Holder.Reload(ctx)
	if err != nil {
		if s.Log != nil {
			s.Log.Error("admin reload failed", zap.Error(err))
		}
		kit.WriteError(w, r, http.StatusBadGateway, "reload failed", nil)
		return
	}
	w.Header().Set(headerGeneration, snap.Generation)
	kit.WriteJSON(w, http.StatusOK, snap.Stats())
}

// snapshot pins one snapshot for the whole request.
func (s *Server) snapshot(w http.ResponseWriter, r *http.Request) (*Snapshot, bool) {
	snap := s.Holder.Current()
	if snap == nil {
		kit.WriteError(w, r, http.StatusServiceUnavailable, "catalog not loaded", nil)
		return nil, false
	}
	w.Header().Set(headerGeneration, snap.Generation)
	return snap, true
}

// timed runs fn and reports its duration as a Server-Timing header.
func (s *Server) timed(w http.ResponseWriter, op string, fn func()) {
	start := time.Now()
	fn()
	d := time.Since(start)

	s.Metrics.observeQuery(op, d)
	ms := strconv.FormatFloat(float64(d)/float64(time.Millisecond), 'f', 3, 64)
	w.Header().Set("Server-Timing", fmt.Sprintf("%s;dur=%s", op, ms))
}

func (s *Server) writeQueryError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, ErrValidation) {
		kit.WriteError(w, r, http.StatusBadRequest, err.Error(), nil)
		return
	}
	if s.Log != nil {
		s.Log.Error("query failed", zap.Error(err))
	}
	kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
}

// pathParam decodes a route parameter. chi matches on RawPath when the
// request carries escapes such as %2F, leaving the parameter encoded.
func pathParam(r *http.Request, name string) string {
	v := chi.URLParam(r, name)
	if r.URL.RawPath == "" {
		return v
	}
	if dec, err := url.PathUnescape(v); err == nil {
		return dec
	}
	return v
}
