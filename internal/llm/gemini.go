package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// DefaultEndpoint is the generateContent URL used when none is configured.
const DefaultEndpoint = "https://generativelanguage.googleapis.com/v1beta/models/gemini-2.0-flash:generateContent"

const apiKeyHeader = "X-goog-api-key"

// ErrNoAPIKey is returned by NewGeminiClient when no credential was injected.
var ErrNoAPIKey = errors.New("gemini: api key not configured")

// GeminiOptions configures a GeminiClient. Endpoint and APIKey are injected by
// the caller; nothing about the remote service is compiled in besides the
// default URL.
type GeminiOptions struct {
	Endpoint string
	APIKey   string
	// Preamble is prepended to every query as the persona and guidelines.
	Preamble string
	// DefaultText replaces a reply whose text cannot be found in the payload.
	DefaultText string
	// Timeout bounds a single call. Zero means no limit.
	Timeout time.Duration
	Logger  zerolog.Logger
}

// GeminiClient sends one generateContent request per Complete call.
type GeminiClient struct {
	http        *resty.Client
	endpoint    string
	preamble    string
	defaultText string
	log         zerolog.Logger
}

// NewGeminiClient creates a Resty-backed client.
func NewGeminiClient(opts GeminiOptions) (*GeminiClient, error) {
	key := strings.TrimSpace(opts.APIKey)
	if key == "" {
		return nil, ErrNoAPIKey
	}
	endpoint := strings.TrimSpace(opts.Endpoint)
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	httpClient := resty.New().
		SetHeader("Content-Type", "application/json").
		SetHeader(apiKeyHeader, key)
	if opts.Timeout > 0 {
		httpClient.SetTimeout(opts.Timeout)
	}
	return &GeminiClient{
		http:        httpClient,
		endpoint:    endpoint,
		preamble:    opts.Preamble,
		defaultText: opts.DefaultText,
		log:         opts.Logger.With().Str("component", "gemini").Logger(),
	}, nil
}

// BuildPrompt joins the preamble and the labeled user query into the single
// text block sent to the endpoint.
func BuildPrompt(preamble, userText string) string {
	return fmt.Sprintf("%s\n\nUser Query: %s", preamble, userText)
}

// Complete performs the call. It never returns an error value: failures are
// reported through Result.Outcome.
func (c *GeminiClient) Complete(ctx context.Context, userText string) Result {
	body := generateRequest{
		Contents: []content{{Parts: []part{{Text: BuildPrompt(c.preamble, userText)}}}},
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		Post(c.endpoint)
	if err != nil {
		c.log.Warn().Err(err).Msg("completion request failed")
		return Result{Outcome: OutcomeFailed, Err: errors.Wrap(err, "gemini: post")}
	}
	if !resp.IsSuccess() {
		c.log.Warn().Int("status", resp.StatusCode()).Msg("completion request rejected")
		return Result{
			Outcome:    OutcomeFailed,
			StatusCode: resp.StatusCode(),
			Err:        errors.Errorf("gemini: api request failed: %d", resp.StatusCode()),
		}
	}

	var decoded any
	if err := json.Unmarshal(resp.Body(), &decoded); err != nil {
		c.log.Warn().Err(err).Int("status", resp.StatusCode()).Msg("completion body not decodable")
		return Result{
			Outcome:    OutcomeFailed,
			StatusCode: resp.StatusCode(),
			Err:        errors.Wrap(err, "gemini: decode response"),
		}
	}

	text, ok := firstText(decoded)
	if !ok {
		c.log.Debug().Int("status", resp.StatusCode()).Msg("completion missing text, using default")
		return Result{Text: c.defaultText, Outcome: OutcomeDefaulted, StatusCode: resp.StatusCode()}
	}
	return Result{Text: text, Outcome: OutcomeOK, StatusCode: resp.StatusCode()}
}

// Ensure interface compliance.
var _ Completer = (*GeminiClient)(nil)
