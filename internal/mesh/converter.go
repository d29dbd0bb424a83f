package mesh

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// ErrNoConverter is returned for FBX uploads when no conversion service is configured.
var ErrNoConverter = errors.New("no FBX converter configured")

// Converter turns FBX bytes into GLB bytes.
type Converter interface {
	Convert(ctx context.Context, name string, data []byte) ([]byte, error)
}

// HTTPConverter posts the raw FBX to a conversion service and expects GLB back.
type HTTPConverter struct {
	httpClient *resty.Client
	logger     *zap.Logger
}

// NewHTTPConverter 创建 FBX→GLB 转换服务客户端
func NewHTTPConverter(baseURL string, timeout time.Duration, retries int, logger *zap.Logger) *HTTPConverter {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetRetryCount(retries).
		SetRetryWaitTime(200 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		SetHeader("Accept", "model/gltf-binary")

	return &HTTPConverter{httpClient: client, logger: logger}
}

func (c *HTTPConverter) Convert(ctx context.Context, name string, data []byte) ([]byte, error) {
	c.logger.Info("Calling mesh converter",
		zap.String("file_name", name),
		zap.Int("size", len(data)),
	)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/octet-stream").
		SetQueryParam("filename", name).
		SetBody(data).
		Post("/convert")
	if err != nil {
		return nil, fmt.Errorf("failed to call mesh converter: %w", err)
	}
	if resp.IsError() {
		c.logger.Warn("mesh converter returned error",
			zap.Int("status_code", resp.StatusCode()),
			zap.String("body", truncate(resp.String(), 200)),
		)
		return nil, fmt.Errorf("mesh converter error: %s (status: %d)", truncate(resp.String(), 200), resp.StatusCode())
	}

	out := resp.Body()
	if err := CheckGLB(out); err != nil {
		return nil, fmt.Errorf("mesh converter output: %w", err)
	}
	return out, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

var _ Converter = (*HTTPConverter)(nil)
