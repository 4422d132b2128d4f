// package testing contains shared testing utilities
package testing

import (
	"errors"
	"net/http"
)

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

// ZeroSource always draws index 0, so every weapi session key is "0000000000000000".
// Fake servers use it to decrypt signed requests.
type ZeroSource struct{}

func (ZeroSource) Intn(int) int { return 0 }

// ZeroKey is the session key produced by [ZeroSource].
const ZeroKey = "0000000000000000"
