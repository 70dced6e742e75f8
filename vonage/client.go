// Package vonage talks to the telephony platform's REST API: conversation
// events, call control and outbound messages.
package vonage

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/room4-2/jurgo-ivr/metrics"
)

const (
	defaultBaseURL  = "https://api.nexmo.com"
	defaultTimeout  = 10 * time.Second
	defaultPageSize = 100
)

// ClientConfig captures the knobs for the platform client.
type ClientConfig struct {
	BaseURL  string
	Timeout  time.Duration
	PageSize int
}

// Client is a resty-backed client for the platform API. Every request carries
// a freshly minted application JWT.
type Client struct {
	http     *resty.Client
	tokens   TokenMinter
	pageSize int
	log      zerolog.Logger
}

// NewClient wires the HTTP client with sonic as its JSON codec.
func NewClient(cfg ClientConfig, tokens TokenMinter, log zerolog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = defaultPageSize
	}

	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("User-Agent", "jurgo-ivr/1.0").
		SetJSONMarshaler(sonic.Marshal).
		SetJSONUnmarshaler(sonic.Unmarshal)

	return &Client{
		http:     httpClient,
		tokens:   tokens,
		pageSize: cfg.PageSize,
		log:      log.With().Str("component", "vonage").Logger(),
	}
}

// request starts an authenticated request bound to ctx.
func (c *Client) request(ctx context.Context) (*resty.Request, error) {
	token, err := c.tokens.Token()
	if err != nil {
		return nil, err
	}
	return c.http.R().
		SetContext(ctx).
		SetAuthToken(token), nil
}

// do runs a request and maps failures onto kind (ErrRemoteFetch or ErrRemoteWrite).
func (c *Client) do(ctx context.Context, op string, kind error, send func(*resty.Request) (*resty.Response, error)) (err error) {
	start := time.Now()
	defer func() {
		metrics.RemoteCallsTotal.WithLabelValues(op, metrics.Outcome(err)).Inc()
		c.log.Debug().Err(err).Str("operation", op).Dur("elapsed", time.Since(start)).Msg("platform call")
	}()

	req, err := c.request(ctx)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", kind, op, err)
	}

	resp, err := send(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", kind, op, err)
	}
	if resp.IsError() {
		return fmt.Errorf("%w: %s: status %d: %s", kind, op, resp.StatusCode(), resp.String())
	}
	return nil
}
