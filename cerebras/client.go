package cerebras

import (
	"errors"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/nikothomas/cerebras-go/httpx"
	"github.com/nikothomas/cerebras-go/version"
)

const (
	// DefaultBaseURL is the production endpoint of the inference service.
	DefaultBaseURL = "https://api.cerebras.ai"

	chatCompletionsPath = "/v1/chat/completions"
	completionsPath     = "/v1/completions"
	modelsPath          = "/v1/models"

	// EnvAPIKey is the environment variable FromEnv reads the key from.
	EnvAPIKey = "CEREBRAS_API_KEY"
)

// ErrMissingAPIKey is returned when no API key is available.
var ErrMissingAPIKey = errors.New("cerebras: missing API key")

// Client is the entry point of the SDK. It is safe for concurrent use;
// each stream it opens is not.
type Client struct {
	tr           *httpx.Client
	apiKey       string
	decodePolicy DecodePolicy
}

// ClientOption configures a Client at construction time.
type ClientOption func(*clientConfig)

type clientConfig struct {
	baseURL      string
	decodePolicy DecodePolicy
	httpxOpts    []httpx.Option
}

// WithBaseURL points the client at a different endpoint, e.g. a proxy or
// a test server.
func WithBaseURL(u string) ClientOption {
	return func(c *clientConfig) { c.baseURL = u }
}

// WithHTTPClient substitutes the underlying *http.Client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *clientConfig) { c.httpxOpts = append(c.httpxOpts, httpx.WithHTTPClient(hc)) }
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) ClientOption {
	return func(c *clientConfig) { c.httpxOpts = append(c.httpxOpts, httpx.WithUserAgent(ua)) }
}

// WithLogger attaches a structured logger; transport retries log at debug.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *clientConfig) { c.httpxOpts = append(c.httpxOpts, httpx.WithLogger(logger)) }
}

// WithRetry replaces the transport retry policy. Retries apply to
// buffered calls only; streams are never replayed.
func WithRetry(cfg httpx.RetryConfig) ClientOption {
	return func(c *clientConfig) { c.httpxOpts = append(c.httpxOpts, httpx.WithRetry(cfg)) }
}

// WithDefaultHeader adds a header to every request.
func WithDefaultHeader(key, value string) ClientOption {
	return func(c *clientConfig) { c.httpxOpts = append(c.httpxOpts, httpx.WithDefaultHeader(key, value)) }
}

// WithDecodePolicy sets how streams handle frames that fail to decode.
// The default is DecodeAbort.
func WithDecodePolicy(p DecodePolicy) ClientOption {
	return func(c *clientConfig) { c.decodePolicy = p }
}

// New builds a client for the given API key.
func New(apiKey string, opts ...ClientOption) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	cfg := clientConfig{baseURL: DefaultBaseURL, decodePolicy: DecodeAbort}
	for _, o := range opts {
		if o != nil {
			o(&cfg)
		}
	}

	tr, err := httpx.New(cfg.baseURL,
		append([]httpx.Option{httpx.WithUserAgent(defaultUserAgent())}, cfg.httpxOpts...)...)
	if err != nil {
		return nil, err
	}
	return &Client{tr: tr, apiKey: apiKey, decodePolicy: cfg.decodePolicy}, nil
}

// FromEnv builds a client from the CEREBRAS_API_KEY environment variable.
func FromEnv(opts ...ClientOption) (*Client, error) {
	key := os.Getenv(EnvAPIKey)
	if strings.TrimSpace(key) == "" {
		return nil, ErrMissingAPIKey
	}
	return New(key, opts...)
}

func defaultUserAgent() string {
	return "cerebras-go/" + version.Get().ShortString()
}

func (c *Client) authHeader() http.Header {
	h := make(http.Header)
	h.Set("Authorization", "Bearer "+c.apiKey)
	return h
}
