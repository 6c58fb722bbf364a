package completion

import (
	"io"
	"net/http"
	"strings"
	"time"

	"edugenie/internal/domain"
)

const maxErrorBody = 4 << 10

// statusTransport turns non-2xx responses into *domain.UpstreamError so the
// status and body survive the provider SDK's own error wrapping.
type statusTransport struct {
	base http.RoundTripper
}

// NewHTTPClient returns a client for provider SDKs whose non-2xx responses
// surface as *domain.UpstreamError.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: newStatusTransport(nil),
	}
}

func newStatusTransport(base http.RoundTripper) *statusTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &statusTransport{base: base}
}

func (t *statusTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return nil, &domain.UpstreamError{
		StatusCode: resp.StatusCode,
		Body:       strings.TrimSpace(string(body)),
	}
}
