package passgage

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// apiError is a machine-readable failure the server reported inside its
// error envelope.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *apiError) Error() string {
	if e.Message != "" {
		return e.Message
	}

	return e.Code
}

// envelope is the server's response wrapper. Success responses carry data,
// failures carry error; meta is ignored by the facade.
type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *apiError       `json:"error"`
}

// transport performs the HTTP calls for the facade. It decodes the response
// envelope and separates server-reported failures (apiError) from transport
// failures (wrapped errors).
type transport struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  *slog.Logger
}

func newTransport(baseURL, apiKey string, timeout time.Duration, logger *slog.Logger) *transport {
	return &transport{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// do sends one request and decodes the envelope into out. A non-nil return
// is either an *apiError (server said no) or a wrapped transport error.
func (t *transport) do(ctx context.Context, method, path string, body any, accessToken string, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "failed to encode request body")
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, t.baseURL+path, reader)
	if err != nil {
		return errors.Wrap(err, "failed to build request")
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if t.apiKey != "" {
		req.Header.Set("X-Api-Key", t.apiKey)
	}
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	start := time.Now()
	resp, err := t.client.Do(req)
	if err != nil {
		t.logger.DebugContext(ctx, "request failed",
			slog.String("method", method),
			slog.String("path", path),
			slog.Any("error", err))

		return errors.Wrap(err, "request failed")
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return errors.Wrap(err, "failed to read response body")
	}

	t.logger.DebugContext(ctx, "request completed",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)))

	var env envelope
	if err := json.Unmarshal(responseBody, &env); err != nil {
		return errors.Wrapf(err, "failed to decode response (status %d)", resp.StatusCode)
	}

	if env.Error != nil {
		return env.Error
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return &apiError{Code: "UNEXPECTED_STATUS", Message: resp.Status}
	}

	if out != nil && env.Data != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return errors.Wrap(err, "failed to decode response data")
		}
	}

	return nil
}

// asAPIError unwraps a server-reported failure, if that is what err is.
func asAPIError(err error) (*apiError, bool) {
	var apiErr *apiError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}

	return nil, false
}
