package recaptcha

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/iho/debtledger/internal/domain"
	"github.com/iho/debtledger/internal/usecase"
)

// Client verifies reCAPTCHA v3 tokens. It implements usecase.CaptchaVerifier.
type Client struct {
	verifyURL  string
	secret     string
	httpClient *http.Client
}

// NewClient creates a client whose calls are bounded by timeout.
func NewClient(verifyURL, secret string, timeout time.Duration) *Client {
	return &Client{
		verifyURL:  verifyURL,
		secret:     secret,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Verify posts the token once. Any transport failure, non-2xx status or
// unreadable body is reported as domain.ErrUpstreamUnavailable.
func (c *Client) Verify(ctx context.Context, response string) (*usecase.CaptchaResult, error) {
	form := url.Values{}
	form.Set("secret", c.secret)
	form.Set("response", response)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build recaptcha request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("recaptcha request failed")
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Ctx(ctx).Error().Int("status", resp.StatusCode).Msg("recaptcha returned an error status")
		return nil, fmt.Errorf("%w: status %d", domain.ErrUpstreamUnavailable, resp.StatusCode)
	}

	var raw map[string]any
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&raw); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("recaptcha returned an unreadable body")
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
	}

	result := &usecase.CaptchaResult{Raw: raw}
	result.Success, _ = raw["success"].(bool)
	result.Score, _ = raw["score"].(float64)
	return result, nil
}
