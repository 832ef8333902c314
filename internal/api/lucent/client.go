package lucent

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	httpClient "github.com/Alias1177/Lucent/internal/platform/http"
	"github.com/Alias1177/Lucent/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Client is the prediction service API client
type Client struct {
	baseURL    string
	httpClient *httpClient.Client
	logger     zerolog.Logger
}

// ClientOptions holds options for creating a new prediction client
type ClientOptions struct {
	BaseURL        string
	RequestTimeout time.Duration
	RequestsPerSec int
}

// NewClient creates a new prediction service client
func NewClient(options ClientOptions) *Client {
	return &Client{
		baseURL: strings.TrimRight(options.BaseURL, "/"),
		httpClient: httpClient.NewClient(httpClient.ClientOptions{
			Timeout:        options.RequestTimeout,
			RequestsPerSec: options.RequestsPerSec,
		}),
		logger: log.With().Str("component", "lucent_client").Logger(),
	}
}

// Predict fetches the prediction for a single trial.
//
// A payload with an error field is returned as-is together with a nil
// error, whatever the HTTP status was; the caller decides what it means.
// Transport failures, non-2xx responses without an error payload and
// undecodable bodies are returned as errors.
func (c *Client) Predict(ctx context.Context, nctid string) (*models.PredictResponse, error) {
	endpoint := fmt.Sprintf("%s/predict/%s", c.baseURL, url.PathEscape(nctid))

	c.logger.Debug().Str("url", endpoint).Msg("Fetching prediction")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.DoRequest(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	var data models.PredictResponse
	decodeErr := json.Unmarshal(body, &data)

	if decodeErr == nil && data.HasError() {
		c.logger.Warn().Int("status", resp.StatusCode).Str("nctid", nctid).Str("error", data.ErrorText()).Msg("Prediction service reported an error")
		return &data, nil
	}

	if !httpClient.IsSuccess(resp.StatusCode) {
		return nil, &httpClient.HTTPStatusError{StatusCode: resp.StatusCode}
	}

	if decodeErr != nil {
		c.logger.Error().Err(decodeErr).Str("response", string(body)).Msg("Error parsing JSON")
		return nil, fmt.Errorf("parsing JSON: %w", decodeErr)
	}

	if data.Deterministic == nil || data.Uncertainty == nil {
		c.logger.Warn().Str("response", string(body)).Msg("Prediction payload is missing fields")
		return nil, fmt.Errorf("parsing JSON: missing deterministic or uncertainty field")
	}

	c.logger.Debug().Str("nctid", data.NCTID).Float64("deterministic", *data.Deterministic).Msg("Fetched prediction")
	return &data, nil
}
