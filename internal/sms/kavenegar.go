package sms

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/cast"
	"go.uber.org/zap"
)

const defaultKavenegarBaseURL = "https://api.kavenegar.com/v1/"

// KavenegarDispatcher usa la API verify/lookup de Kavenegar con una plantilla registrada.
type KavenegarDispatcher struct {
	endpoint string
	template string
	client   *http.Client
	logger   *zap.Logger
}

func NewKavenegarDispatcher(baseURL, apiKey, template string, timeout time.Duration, logger *zap.Logger) (*KavenegarDispatcher, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("kavenegar api key is required")
	}
	if strings.TrimSpace(template) == "" {
		return nil, fmt.Errorf("kavenegar template is required")
	}
	if baseURL == "" {
		baseURL = defaultKavenegarBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &KavenegarDispatcher{
		endpoint: baseURL + apiKey + "/verify/lookup.json",
		template: template,
		client:   &http.Client{Timeout: timeout},
		logger:   logger,
	}, nil
}

type lookupResponse struct {
	Return struct {
		Status  any    `json:"status"`
		Message string `json:"message"`
	} `json:"return"`
}

func (d *KavenegarDispatcher) Send(ctx context.Context, phone, code string) error {
	params := url.Values{}
	params.Set("receptor", phone)
	params.Set("token", code)
	params.Set("template", d.template)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return classifyTransportError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return classifyTransportError(err)
	}

	if resp.StatusCode != http.StatusOK {
		d.logger.Warn("kavenegar error status", zap.Int("status", resp.StatusCode), zap.String("phone", phone))
		return fmt.Errorf("%w: http status=%d", ErrBadStatus, resp.StatusCode)
	}

	var lr lookupResponse
	if err := json.Unmarshal(body, &lr); err != nil {
		return fmt.Errorf("%w: unmarshal response: %v", ErrBadStatus, err)
	}
	status, err := cast.ToIntE(lr.Return.Status)
	if err != nil {
		return fmt.Errorf("%w: invalid return status %v", ErrBadStatus, lr.Return.Status)
	}
	if status != http.StatusOK {
		d.logger.Warn("kavenegar rejected message", zap.Int("return_status", status), zap.String("message", lr.Return.Message))
		return fmt.Errorf("%w: return status=%d", ErrBadStatus, status)
	}
	return nil
}
