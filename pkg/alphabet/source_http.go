package alphabet

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/matzehuels/streettype/pkg/buildinfo"
	"github.com/matzehuels/streettype/pkg/observability"
)

// HTTPSource reads assets from a remote web root such as a CDN or a running
// `streettype serve` instance. Failed requests are not retried.
type HTTPSource struct {
	base    *url.URL
	http    *http.Client
	headers map[string]string
}

// NewHTTPSource creates a source rooted at baseURL. Asset paths are resolved
// relative to it, so "https://cdn.example.com/street/" serves
// "https://cdn.example.com/street/assets/Alphabet/...".
func NewHTTPSource(baseURL string, headers map[string]string) (*HTTPSource, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url must use http or https: %s", baseURL)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return &HTTPSource{
		base:    u,
		http:    newHTTPClient(),
		headers: headers,
	}, nil
}

// newHTTPClient returns a client with conservative timeouts; a hung asset
// host would otherwise stall the whole text.
func newHTTPClient() *http.Client {
	return &http.Client{
		Timeout: 15 * time.Second,
		Transport: &http.Transport{
			DialContext:         (&net.Dialer{Timeout: 5 * time.Second}).DialContext,
			TLSHandshakeTimeout: 5 * time.Second,
			MaxIdleConnsPerHost: 8,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

// Name returns "http".
func (s *HTTPSource) Name() string { return "http" }

// URL returns the absolute URL of path.
func (s *HTTPSource) URL(path AssetPath) string {
	return s.base.ResolveReference(&url.URL{Path: string(path)}).String()
}

// Stat issues a HEAD request. Hosts that reject HEAD with 405 are probed
// with GET instead.
func (s *HTTPSource) Stat(ctx context.Context, path AssetPath) error {
	body, err := s.do(ctx, http.MethodHead, path)
	if err != nil {
		if !isMethodNotAllowed(err) {
			return err
		}
		body, err = s.do(ctx, http.MethodGet, path)
		if err != nil {
			return err
		}
	}
	return body.Close()
}

// Open issues a GET request and returns the response body.
func (s *HTTPSource) Open(ctx context.Context, path AssetPath) (io.ReadCloser, error) {
	return s.do(ctx, http.MethodGet, path)
}

func (s *HTTPSource) do(ctx context.Context, method string, path AssetPath) (io.ReadCloser, error) {
	target := s.base.ResolveReference(&url.URL{Path: string(path)})
	req, err := http.NewRequestWithContext(ctx, method, target.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "streettype/"+buildinfo.Version)
	for k, v := range s.headers {
		req.Header.Set(k, v)
	}

	hooks := observability.HTTP()
	hooks.OnRequest(ctx, method, target.Host, target.Path)
	start := time.Now()

	resp, err := s.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, method, target.Host, target.Path, err)
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	hooks.OnResponse(ctx, method, target.Host, target.Path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp.StatusCode, path); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp.Body, nil
}

// statusError carries an unexpected HTTP status.
type statusError struct {
	code int
	path AssetPath
}

func (e *statusError) Error() string {
	return fmt.Sprintf("%s: status %d", e.path, e.code)
}

func (e *statusError) Unwrap() error {
	if e.code >= 500 {
		return ErrNetwork
	}
	return nil
}

func checkStatus(code int, path AssetPath) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound || code == http.StatusGone:
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	default:
		return &statusError{code: code, path: path}
	}
}

func isMethodNotAllowed(err error) bool {
	se, ok := err.(*statusError)
	return ok && se.code == http.StatusMethodNotAllowed
}

// Ensure HTTPSource implements Source.
var _ Source = (*HTTPSource)(nil)
