package dynatrace

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/time/rate"
	"k8s.io/klog/v2"

	"cloudformation-dynatrace-resource-providers/internal/domain/models"
)

const monitorsPath = "/api/v1/synthetic/monitors"

// Client базовый HTTP клиент Dynatrace Synthetic API.
// Каждый метод выполняет ровно один запрос без внутренних повторов;
// retry происходит только между инвокациями хендлера.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	config     ClientConfig
}

// NewClient создает новый Client
func NewClient(config ClientConfig) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid dynatrace client config")
	}

	return &Client{
		httpClient: &http.Client{Timeout: config.RequestTimeout},
		limiter:    rate.NewLimiter(rate.Limit(config.RateLimit), config.RateBurst),
		config:     config,
	}, nil
}

// GetMonitor reads one monitor by its entity ID. The second return value is
// the backend's Server-Timing total duration marker for this response, used
// by update verification to detect stale reads.
func (c *Client) GetMonitor(ctx context.Context, entityID string) (*models.SyntheticMonitor, float64, error) {
	body, header, err := c.do(ctx, http.MethodGet, monitorsPath+"/"+entityID, nil)
	if err != nil {
		return nil, 0, err
	}

	var monitor models.SyntheticMonitor
	if err := json.Unmarshal(body, &monitor); err != nil {
		return nil, 0, errors.Wrap(err, "failed to decode monitor")
	}

	return &monitor, serverTiming(header), nil
}

// CreateMonitor creates a monitor from the desired state and returns the
// backend's view of it, including the assigned entity ID
func (c *Client) CreateMonitor(ctx context.Context, desired *models.SyntheticMonitor) (*models.SyntheticMonitor, error) {
	body, _, err := c.do(ctx, http.MethodPost, monitorsPath, desired)
	if err != nil {
		return nil, err
	}

	var monitor models.SyntheticMonitor
	if err := json.Unmarshal(body, &monitor); err != nil {
		return nil, errors.Wrap(err, "failed to decode created monitor")
	}

	return &monitor, nil
}

// UpdateMonitor replaces the monitor's configuration with the desired state
func (c *Client) UpdateMonitor(ctx context.Context, entityID string, desired *models.SyntheticMonitor) (*models.SyntheticMonitor, error) {
	body, _, err := c.do(ctx, http.MethodPut, monitorsPath+"/"+entityID, desired)
	if err != nil {
		return nil, err
	}

	// PUT отвечает 204 без тела; считанное состояние берем из desired
	if len(bytes.TrimSpace(body)) == 0 {
		return desired.Clone(), nil
	}

	var monitor models.SyntheticMonitor
	if err := json.Unmarshal(body, &monitor); err != nil {
		return nil, errors.Wrap(err, "failed to decode updated monitor")
	}

	return &monitor, nil
}

// DeleteMonitor deletes a monitor by its entity ID
func (c *Client) DeleteMonitor(ctx context.Context, entityID string) error {
	_, _, err := c.do(ctx, http.MethodDelete, monitorsPath+"/"+entityID, nil)
	return err
}

// ListMonitors enumerates all monitors of the environment
func (c *Client) ListMonitors(ctx context.Context) ([]models.SyntheticMonitor, error) {
	body, _, err := c.do(ctx, http.MethodGet, monitorsPath, nil)
	if err != nil {
		return nil, err
	}

	var page struct {
		Monitors []models.SyntheticMonitor `json:"monitors"`
	}
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, errors.Wrap(err, "failed to decode monitor list")
	}

	return page.Monitors, nil
}

// do выполняет один HTTP запрос с rate limiting и корреляционным ID
func (c *Client) do(ctx context.Context, method, path string, payload interface{}) ([]byte, http.Header, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, nil, errors.Wrap(err, "rate limiter wait failed")
	}

	var reqBody io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, nil, errors.Wrap(err, "failed to encode request body")
		}
		reqBody = bytes.NewReader(raw)
	}

	requestID := uuid.New().String()
	url := strings.TrimRight(c.config.Endpoint, "/") + path

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "failed to build %s %s", method, path)
	}
	req.Header.Set("Authorization", "Api-Token "+c.config.APIToken)
	req.Header.Set("X-Request-Id", requestID)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	klog.V(2).Infof("dynatrace: %s %s request_id=%s", method, path, requestID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "%s %s failed (request_id=%s)", method, path, requestID)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "failed to read response (request_id=%s)", requestID)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		apiErr := decodeAPIError(resp.StatusCode, body)
		klog.V(2).Infof("dynatrace: %s %s request_id=%s status=%d code=%s",
			method, path, requestID, apiErr.Status, apiErr.Code)
		return nil, nil, apiErr
	}

	return body, resp.Header, nil
}

// serverTiming извлекает первый маркер dur=... из заголовка Server-Timing
func serverTiming(header http.Header) float64 {
	raw := header.Get("Server-Timing")
	if raw == "" {
		return 0
	}

	for _, metric := range strings.Split(raw, ",") {
		for _, part := range strings.Split(metric, ";") {
			part = strings.TrimSpace(part)
			if !strings.HasPrefix(part, "dur=") {
				continue
			}
			value, err := strconv.ParseFloat(strings.TrimPrefix(part, "dur="), 64)
			if err != nil {
				return 0
			}
			return value
		}
	}

	return 0
}
