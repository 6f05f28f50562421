package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"healthcmd/internal/models"
)

// APIResponse 后端统一响应包裹
type APIResponse struct {
	Success bool                      `json:"success"`
	Data    *models.VitalsPushPayload `json:"data,omitempty"`
	Error   string                    `json:"error,omitempty"`
	Message string                    `json:"message,omitempty"`
}

// historyResponse GET /api/vitals/history 响应
type historyResponse struct {
	Success bool                       `json:"success"`
	Count   int                        `json:"count"`
	Data    []models.VitalsPushPayload `json:"data,omitempty"`
	Error   string                     `json:"error,omitempty"`
}

// predictResponse POST /api/predict/risk 响应
type predictResponse struct {
	Success    bool            `json:"success"`
	Prediction json.RawMessage `json:"prediction,omitempty"`
	Error      string          `json:"error,omitempty"`
}

// alertsResponse GET /api/alerts 响应
type alertsResponse struct {
	Success bool              `json:"success"`
	Count   int               `json:"count"`
	Alerts  []json.RawMessage `json:"alerts,omitempty"`
	Error   string            `json:"error,omitempty"`
}

// healthResponse GET /api/health 响应
type healthResponse struct {
	Status string `json:"status"`
}

// Client 后端 REST 客户端。
// 网络失败只体现为返回的 error，不触发任何存储写入，由调用方
// 决定是否提示用户（不做请求级重试，重连策略只存在于推送通道）。
type Client struct {
	http      *resty.Client
	soldierID string
	logger    *zap.Logger
}

// NewClient 创建后端客户端
func NewClient(baseURL, soldierID string, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &Client{
		http:      httpClient,
		soldierID: soldierID,
		logger:    logger,
	}
}

// SoldierID 被监测对象标识
func (c *Client) SoldierID() string {
	return c.soldierID
}

// Available 健康检查：status == "operational" 视为可用，任何错误视为不可用
func (c *Client) Available(ctx context.Context) bool {
	var out healthResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		Get("/api/health")
	if err != nil || resp.IsError() {
		return false
	}
	return out.Status == "operational"
}

// PushVitals 上报一次读数，返回后端处理结果（含 ml_analysis）
func (c *Client) PushVitals(ctx context.Context, reading models.VitalsReading) (*models.VitalsPushPayload, error) {
	var out APIResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(reading).
		SetResult(&out).
		SetError(&out).
		Post("/api/vitals")
	if err != nil {
		return nil, fmt.Errorf("failed to push vitals: %w", err)
	}
	if resp.IsError() || !out.Success {
		return nil, apiError("push vitals", &out, resp.StatusCode())
	}
	return out.Data, nil
}

// Latest 拉取最新读数
func (c *Client) Latest(ctx context.Context) (*models.VitalsPushPayload, error) {
	var out APIResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		SetError(&out).
		Get("/api/vitals/latest/" + c.soldierID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch latest vitals: %w", err)
	}
	if resp.IsError() || !out.Success || out.Data == nil {
		return nil, apiError("fetch latest vitals", &out, resp.StatusCode())
	}
	return out.Data, nil
}

// History 拉取历史读数
func (c *Client) History(ctx context.Context, limit, hours int) ([]models.VitalsPushPayload, error) {
	var out historyResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("limit", fmt.Sprintf("%d", limit)).
		SetQueryParam("hours", fmt.Sprintf("%d", hours)).
		SetResult(&out).
		SetError(&out).
		Get("/api/vitals/history/" + c.soldierID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch vitals history: %w", err)
	}
	if resp.IsError() || !out.Success {
		return nil, fmt.Errorf("fetch vitals history failed (status %d): %s", resp.StatusCode(), out.Error)
	}
	return out.Data, nil
}

// PredictRisk 请求风险预测
func (c *Client) PredictRisk(ctx context.Context, reading models.VitalsReading) (json.RawMessage, error) {
	var out predictResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(reading).
		SetResult(&out).
		SetError(&out).
		Post("/api/predict/risk")
	if err != nil {
		return nil, fmt.Errorf("failed to request risk prediction: %w", err)
	}
	if resp.IsError() || !out.Success {
		return nil, fmt.Errorf("risk prediction failed (status %d): %s", resp.StatusCode(), out.Error)
	}
	return out.Prediction, nil
}

// Alerts 拉取当前告警
func (c *Client) Alerts(ctx context.Context) ([]json.RawMessage, error) {
	var out alertsResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		SetError(&out).
		Get("/api/alerts/" + c.soldierID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch alerts: %w", err)
	}
	if resp.IsError() || !out.Success {
		return nil, fmt.Errorf("fetch alerts failed (status %d): %s", resp.StatusCode(), out.Error)
	}
	return out.Alerts, nil
}

// Simulate 触发后端生成一条模拟读数
func (c *Client) Simulate(ctx context.Context) (*models.VitalsPushPayload, error) {
	var out APIResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		SetError(&out).
		Post("/api/simulate")
	if err != nil {
		return nil, fmt.Errorf("failed to trigger simulation: %w", err)
	}
	if resp.IsError() || !out.Success {
		return nil, apiError("trigger simulation", &out, resp.StatusCode())
	}
	return out.Data, nil
}

func apiError(op string, out *APIResponse, statusCode int) error {
	msg := out.Error
	if msg == "" {
		msg = out.Message
	}
	return fmt.Errorf("%s failed (status %d): %s", op, statusCode, msg)
}
