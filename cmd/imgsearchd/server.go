package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/andybalholm/brotli"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/moddengine/imgsearch"
)

// searchFunc runs one provider search from the raw query string, minus q.
type searchFunc func(ctx context.Context, query string, params url.Values) (*imgsearch.Result, error)

type Server struct {
	providers  map[string]searchFunc
	users      *Store
	prettyJson bool
	log        zerolog.Logger
}

func NewServer(cfg *Config, users *Store, logger zerolog.Logger) (*Server, error) {
	s := &Server{
		providers:  map[string]searchFunc{},
		prettyJson: cfg.Debug.PrettyJson,
		log:        logger,
	}
	if cfg.Auth.Enabled {
		if users == nil {
			return nil, errors.New("auth is enabled but no user store is configured")
		}
		s.users = users
	}

	if cfg.Google.Key != "" {
		opts := []imgsearch.ClientOption{imgsearch.WithLogger(logger)}
		if cfg.Google.Endpoint != "" {
			opts = append(opts, imgsearch.WithEndpoint(cfg.Google.Endpoint))
		}
		google, err := imgsearch.NewCustomSearchClient(cfg.Google.Key, cfg.Google.Cx, opts...)
		if err != nil {
			return nil, fmt.Errorf("google: %w", err)
		}
		s.providers[google.Name()] = func(ctx context.Context, query string, params url.Values) (*imgsearch.Result, error) {
			opts, err := imgsearch.ParseCustomSearchOptions(params)
			if err != nil {
				return nil, err
			}
			return google.Search(ctx, query, opts)
		}
	}
	if cfg.Bing.Key != "" {
		opts := []imgsearch.ClientOption{imgsearch.WithLogger(logger)}
		if cfg.Bing.Endpoint != "" {
			opts = append(opts, imgsearch.WithEndpoint(cfg.Bing.Endpoint))
		}
		bing, err := imgsearch.NewWebImageSearchClient(cfg.Bing.Key, opts...)
		if err != nil {
			return nil, fmt.Errorf("bing: %w", err)
		}
		s.providers[bing.Name()] = func(ctx context.Context, query string, params url.Values) (*imgsearch.Result, error) {
			opts, err := imgsearch.ParseWebImageSearchOptions(params)
			if err != nil {
				return nil, err
			}
			return bing.Search(ctx, query, opts)
		}
	}
	return s, nil
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, "Not Found")
	})
	mux.HandleFunc("/search/", s.handleSearch)
	return s.withRequestId(mux)
}

func (s *Server) withRequestId(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-Id", id)
		logger := s.log.With().Str("request_id", id).Logger()
		next.ServeHTTP(w, r.WithContext(logger.WithContext(r.Context())))
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	log := zerolog.Ctx(r.Context())
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		fmt.Fprint(w, "Method Not Allowed")
		return
	}
	if s.users != nil {
		user, pass, ok := r.BasicAuth()
		if !ok || !s.users.TestUser(user, pass) {
			w.Header().Set("WWW-Authenticate", `Basic realm="imgsearch"`)
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, "Unauthorized")
			return
		}
	}

	search, ok := s.providers[r.URL.Path[len("/search/"):]]
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, "Not Found")
		return
	}

	params := r.URL.Query()
	q, hasQ := params["q"]
	if !hasQ || q[0] == "" {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, "Query Search Parameter ?q= missing")
		return
	}
	params.Del("q")

	result, err := search(r.Context(), q[0], params)
	if err != nil {
		status := statusFor(err)
		log.Warn().Err(err).Int("status", status).Str("path", r.URL.Path).Msg("search failed")
		w.WriteHeader(status)
		if status == http.StatusBadRequest {
			fmt.Fprint(w, err.Error())
		} else {
			fmt.Fprint(w, http.StatusText(status))
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	body := brotli.HTTPCompressor(w, r)
	defer body.Close()
	enc := json.NewEncoder(body)
	if s.prettyJson {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(result); err != nil {
		log.Warn().Err(err).Msg("failed to write response")
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, imgsearch.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, imgsearch.ErrTransport), errors.Is(err, imgsearch.ErrDecode):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
