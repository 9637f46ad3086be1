package execsvc

import (
	"context"
	"fmt"
	"time"

	"resty.dev/v3"

	"github.com/vk/stagewatch/internal/model"
)

// ClientConfig holds everything needed to reach the execution service.
type ClientConfig struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// Client is the REST implementation of Service. It also serves pipeline
// definition text, satisfying defstore.Store.
type Client struct {
	http *resty.Client
}

// NewClient builds a Client for the given service endpoint.
func NewClient(cfg ClientConfig) *Client {
	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetHeader("Accept", "application/json")
	if cfg.Token != "" {
		httpClient.SetAuthToken(cfg.Token)
	}
	if cfg.Timeout > 0 {
		httpClient.SetTimeout(cfg.Timeout)
	}
	return &Client{http: httpClient}
}

// Close releases the underlying HTTP resources.
func (c *Client) Close() error {
	return c.http.Close()
}

// GetRun implements Service.
func (c *Client) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	var payload runPayload
	res, err := c.http.R().
		SetContext(ctx).
		SetResult(&payload).
		SetPathParam("runID", runID).
		Get("/runs/{runID}")
	if err != nil {
		return nil, fmt.Errorf("fetching run %s: %w", runID, err)
	}
	if res.IsError() {
		return nil, fmt.Errorf("fetching run %s: service returned %s", runID, res.Status())
	}
	run := payload.toModel()
	return &run, nil
}

// GetTimeline implements Service.
func (c *Client) GetTimeline(ctx context.Context, runID string) ([]model.TimelineRecord, error) {
	var payload timelinePayload
	res, err := c.http.R().
		SetContext(ctx).
		SetResult(&payload).
		SetPathParam("runID", runID).
		Get("/runs/{runID}/timeline")
	if err != nil {
		return nil, fmt.Errorf("fetching timeline of run %s: %w", runID, err)
	}
	if res.IsError() {
		return nil, fmt.Errorf("fetching timeline of run %s: service returned %s", runID, res.Status())
	}

	records := make([]model.TimelineRecord, 0, len(payload.Records))
	for _, rec := range payload.Records {
		records = append(records, rec.toModel())
	}
	return records, nil
}

// GetLogContent implements Service.
func (c *Client) GetLogContent(ctx context.Context, runID string, logID int) (string, error) {
	res, err := c.http.R().
		SetContext(ctx).
		SetPathParam("runID", runID).
		SetPathParam("logID", fmt.Sprintf("%d", logID)).
		SetHeader("Accept", "text/plain").
		Get("/runs/{runID}/logs/{logID}")
	if err != nil {
		return "", fmt.Errorf("fetching log %d of run %s: %w", logID, runID, err)
	}
	if res.IsError() {
		return "", fmt.Errorf("fetching log %d of run %s: service returned %s", logID, runID, res.Status())
	}
	return res.String(), nil
}

// StartRun implements Service.
func (c *Client) StartRun(ctx context.Context, pipelineID string) (*model.Run, error) {
	var payload runPayload
	res, err := c.http.R().
		SetContext(ctx).
		SetResult(&payload).
		SetPathParam("pipelineID", pipelineID).
		Post("/pipelines/{pipelineID}/runs")
	if err != nil {
		return nil, fmt.Errorf("starting run of pipeline %s: %w", pipelineID, err)
	}
	if res.IsError() {
		return nil, fmt.Errorf("starting run of pipeline %s: service returned %s", pipelineID, res.Status())
	}
	run := payload.toModel()
	return &run, nil
}

// CancelRun implements Service.
func (c *Client) CancelRun(ctx context.Context, runID string) error {
	res, err := c.http.R().
		SetContext(ctx).
		SetPathParam("runID", runID).
		Post("/runs/{runID}/cancel")
	if err != nil {
		return fmt.Errorf("cancelling run %s: %w", runID, err)
	}
	if res.IsError() {
		return fmt.Errorf("cancelling run %s: service returned %s", runID, res.Status())
	}
	return nil
}

// RetryRun implements Service.
func (c *Client) RetryRun(ctx context.Context, runID string) (*model.Run, error) {
	var payload runPayload
	res, err := c.http.R().
		SetContext(ctx).
		SetResult(&payload).
		SetPathParam("runID", runID).
		Post("/runs/{runID}/retry")
	if err != nil {
		return nil, fmt.Errorf("retrying run %s: %w", runID, err)
	}
	if res.IsError() {
		return nil, fmt.Errorf("retrying run %s: service returned %s", runID, res.Status())
	}
	run := payload.toModel()
	return &run, nil
}

// Definition fetches the raw pipeline definition text, implementing
// defstore.Store over HTTP.
func (c *Client) Definition(ctx context.Context, pipelineID string) (string, error) {
	res, err := c.http.R().
		SetContext(ctx).
		SetPathParam("pipelineID", pipelineID).
		SetHeader("Accept", "text/plain").
		Get("/pipelines/{pipelineID}/definition")
	if err != nil {
		return "", fmt.Errorf("fetching definition of pipeline %s: %w", pipelineID, err)
	}
	if res.IsError() {
		return "", fmt.Errorf("fetching definition of pipeline %s: service returned %s", pipelineID, res.Status())
	}
	return res.String(), nil
}
