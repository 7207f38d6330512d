package imgsearch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/rs/zerolog"
)

// maxErrorBody bounds how much of a failed upstream response ends up in a
// StatusError.
const maxErrorBody = 512

// SearchClient runs the request/response lifecycle shared by all providers.
// It holds no per-call state and may be used from several goroutines.
type SearchClient[O Options] struct {
	Http     *http.Client
	adapter  Adapter[O]
	endpoint string
	base     *url.URL
	headers  http.Header
	params   url.Values
	limits   Limits
	log      zerolog.Logger
}

type clientConfig struct {
	http     *http.Client
	endpoint string
	log      *zerolog.Logger
}

// ClientOption changes how a client is constructed.
type ClientOption func(*clientConfig)

// WithHTTPClient sets the client used for requests. http.DefaultClient is
// used otherwise.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(cfg *clientConfig) { cfg.http = c }
}

// WithEndpoint replaces the provider's default endpoint URL.
func WithEndpoint(endpoint string) ClientOption {
	return func(cfg *clientConfig) { cfg.endpoint = endpoint }
}

// WithLogger sets the logger. Nothing is logged by default.
func WithLogger(l zerolog.Logger) ClientOption {
	return func(cfg *clientConfig) { cfg.log = &l }
}

func newSearchClient[O Options](adapter Adapter[O], endpoint string, limits Limits,
	headers http.Header, params url.Values, opts []ClientOption) (*SearchClient[O], error) {
	cfg := clientConfig{endpoint: endpoint}
	for _, opt := range opts {
		opt(&cfg)
	}
	base, err := url.Parse(cfg.endpoint)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, invalidArgument("invalid endpoint for %s", adapter.Name())
	}
	if cfg.http == nil {
		cfg.http = http.DefaultClient
	}
	logger := zerolog.Nop()
	if cfg.log != nil {
		logger = cfg.log.With().Str("provider", adapter.Name()).Logger()
	}
	if headers == nil {
		headers = http.Header{}
	}
	if params == nil {
		params = url.Values{}
	}
	return &SearchClient[O]{
		Http:     cfg.http,
		adapter:  adapter,
		endpoint: cfg.endpoint,
		base:     base,
		headers:  headers,
		params:   params,
		limits:   limits,
		log:      logger,
	}, nil
}

// Name is the provider name, e.g. "google".
func (c *SearchClient[O]) Name() string { return c.adapter.Name() }

// Endpoint is the URL requests are sent to, before query parameters.
func (c *SearchClient[O]) Endpoint() string { return c.endpoint }

// Limits reports the provider's pagination bounds.
func (c *SearchClient[O]) Limits() Limits { return c.limits }

// transportError wraps err as ErrTransport. Any request URL in err is cut
// back to the endpoint path, since the query carries credentials.
func (c *SearchClient[O]) transportError(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		redacted := *c.base
		redacted.RawQuery = ""
		redacted.User = nil
		ue.URL = redacted.String()
	}
	return fmt.Errorf("%w: %s: %w", ErrTransport, c.Name(), err)
}

// Search validates the options, issues a single GET and hands the body to
// the provider adapter. Errors from validation, transport and parsing are
// returned as they are.
func (c *SearchClient[O]) Search(ctx context.Context, query string, opts O) (*Result, error) {
	if query == "" {
		return nil, invalidArgument("expected a query")
	}
	if err := c.adapter.ValidateOptions(opts, c.limits); err != nil {
		return nil, err
	}

	qParam := c.base.Query()
	for k, v := range c.params {
		qParam[k] = append([]string(nil), v...)
	}
	qParam.Set("q", query)
	for k, v := range opts.Values() {
		qParam[k] = v
	}
	reqUrl := *c.base
	reqUrl.RawQuery = qParam.Encode()

	getReq, err := http.NewRequestWithContext(ctx, http.MethodGet, reqUrl.String(), nil)
	if err != nil {
		err = c.transportError(err)
		c.log.Warn().Err(err).Msg("failed to create http request")
		return nil, err
	}
	for k, v := range c.headers {
		getReq.Header[k] = append([]string(nil), v...)
	}
	getReq.Header.Set("Accept", "application/json")

	c.log.Debug().Str("query", query).Str("host", getReq.URL.Host).Msg("searching")
	res, err := c.Http.Do(getReq)
	if err != nil {
		err = c.transportError(err)
		c.log.Warn().Err(err).Msg("failed to fetch")
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
		c.log.Warn().Int("status", res.StatusCode).Msg("upstream returned an error")
		return nil, &StatusError{Provider: c.Name(), StatusCode: res.StatusCode, Body: string(snippet)}
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		err = c.transportError(err)
		c.log.Warn().Err(err).Msg("failed to read response")
		return nil, err
	}
	result, err := c.adapter.ParseResponse(body)
	if err != nil {
		c.log.Warn().Err(err).Msg("failed to decode response")
		return nil, err
	}
	return result, nil
}
