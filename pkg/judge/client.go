package judge

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/vaishnav-mv/LudusCode-Backend/internal/models"
	"github.com/vaishnav-mv/LudusCode-Backend/pkg/logger"
)

// Client 외부 채점 서비스 HTTP 클라이언트
type Client struct {
	http    *resty.Client
	baseURL string
}

// NewClient 채점 서비스 클라이언트 생성
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	http := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")

	return &Client{
		http:    http,
		baseURL: baseURL,
	}
}

// ExecuteRequest 채점 서비스에 보낼 요청
type ExecuteRequest struct {
	UserCode     string            `json:"userCode"`
	SolutionCode string            `json:"solutionCode"`
	TestCases    []models.TestCase `json:"testCases"`
	FunctionName string            `json:"functionName,omitempty"`
	Language     string            `json:"language"`
}

// TestCaseResult 테스트 케이스별 채점 결과
type TestCaseResult struct {
	Input      string `json:"input"`
	Expected   string `json:"expected"`
	UserOutput string `json:"userOutput"`
	Status     string `json:"status"`
}

// ExecuteResponse 채점 서비스 응답
type ExecuteResponse struct {
	OverallStatus models.SubmissionStatus `json:"overallStatus"`
	Results       []TestCaseResult        `json:"results"`
	ExecutionTime int                     `json:"executionTime"` // ms
	MemoryUsage   float64                 `json:"memoryUsage"`   // MB
}

// Execute 사용자 코드 채점 요청
// 재시도하지 않음: 채점 실행은 멱등하지 않으므로 재시도 여부는 호출자 책임
func (c *Client) Execute(ctx context.Context, req *ExecuteRequest) (*ExecuteResponse, error) {
	result := &ExecuteResponse{}

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(result).
		Post("/api/v1/execute")

	if err != nil {
		return nil, fmt.Errorf("judge request failed: %w", err)
	}

	if resp.IsError() {
		return nil, fmt.Errorf("judge returned status %d: %s", resp.StatusCode(), resp.String())
	}

	logger.Debug("Judge execution completed",
		"overallStatus", result.OverallStatus,
		"executionTime", result.ExecutionTime,
		"memoryUsage", result.MemoryUsage,
	)

	return result, nil
}

// HealthCheck 채점 서비스 상태 확인
func (c *Client) HealthCheck(ctx context.Context) error {
	resp, err := c.http.R().SetContext(ctx).Get("/health")
	if err != nil {
		return fmt.Errorf("judge health check failed: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("judge is not healthy: status %d", resp.StatusCode())
	}
	return nil
}
