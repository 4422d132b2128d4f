package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/listenx/internal/models"
	"github.com/desertthunder/listenx/internal/shared"
)

// headerTransport adds provider default headers to every request that does not set them.
type headerTransport struct {
	base    http.RoundTripper
	headers http.Header
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	for k, v := range t.headers {
		if r.Header.Get(k) == "" {
			r.Header[k] = v
		}
	}
	return t.base.RoundTrip(r)
}

// newHTTPClient builds the one client a provider service reuses for all its calls.
func newHTTPClient(headers http.Header, jar http.CookieJar, timeout time.Duration) *http.Client {
	return &http.Client{
		Transport: &headerTransport{base: http.DefaultTransport, headers: headers},
		Jar:       jar,
		Timeout:   timeout,
	}
}

func defaultHeaders(userAgent, referer string) http.Header {
	h := http.Header{}
	if userAgent != "" {
		h.Set("User-Agent", userAgent)
	}
	if referer != "" {
		h.Set("Referer", referer)
	}
	return h
}

// requester performs provider calls and maps failures onto the shared error kinds.
type requester struct {
	provider models.Provider
	client   *http.Client
	logger   *log.Logger
}

func (r *requester) do(req *http.Request) ([]byte, error) {
	start := time.Now()
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, &shared.TransportError{Provider: string(r.provider), URL: req.URL.String(), Err: err}
	}
	defer resp.Body.Close()

	r.logger.Debug("request", "method", req.Method, "url", req.URL.String(), "status", resp.StatusCode, "elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &shared.HTTPStatusError{URL: req.URL.String(), StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &shared.TransportError{Provider: string(r.provider), URL: req.URL.String(), Err: fmt.Errorf("read body: %w", err)}
	}
	return body, nil
}

func (r *requester) get(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return r.do(req)
}

func (r *requester) postForm(ctx context.Context, u string, form url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return r.do(req)
}

// validator is implemented by payloads with required fields encoding/json cannot enforce.
type validator interface {
	validate() error
}

func (r *requester) decode(body []byte, what string, v any) error {
	if err := json.Unmarshal(body, v); err != nil {
		return &shared.DecodeError{Provider: string(r.provider), What: what, Err: err}
	}
	if val, ok := v.(validator); ok {
		if err := val.validate(); err != nil {
			return &shared.DecodeError{Provider: string(r.provider), What: what, Err: err}
		}
	}
	return nil
}

func (r *requester) getJSON(ctx context.Context, u, what string, v any) error {
	body, err := r.get(ctx, u)
	if err != nil {
		return err
	}
	return r.decode(body, what, v)
}

func (r *requester) postJSON(ctx context.Context, u string, form url.Values, what string, v any) error {
	body, err := r.postForm(ctx, u, form)
	if err != nil {
		return err
	}
	return r.decode(body, what, v)
}

func missing(field string) error {
	return fmt.Errorf("missing required field %q", field)
}
