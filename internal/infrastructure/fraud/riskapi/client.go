package riskapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/finagent/expense-pipeline/internal/core/domain"
	"github.com/finagent/expense-pipeline/internal/infrastructure/resilience"
)

// Client calls the hosted fraud-scoring service. Only the numeric risk
// score is consumed; banding happens in the pipeline.
type Client struct {
	baseURL    string
	httpClient *http.Client
	executor   *resilience.Executor
}

func New(baseURL string, timeout time.Duration, executor *resilience.Executor) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		executor:   executor,
	}
}

type scoreResponse struct {
	RiskScore *int   `json:"risk_score"`
	Severity  string `json:"severity"`
}

func (c *Client) Score(ctx context.Context, sub *domain.ExpenseSubmission, cls *domain.ClassificationResult) (*domain.FraudAssessment, error) {
	request := map[string]any{
		"transaction_id": sub.ID,
		"user_id":        sub.UserID,
		"amount":         cls.Amount,
		"merchant":       cls.Merchant,
		"category":       cls.Category,
	}

	var response scoreResponse
	call := func(callCtx context.Context) error {
		return c.postJSON(callCtx, "/v1/transactions/score", request, &response)
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, "fraud.score", call, scoreTransportError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return nil, wrapTemporaryIfNeeded("score transaction", err)
	}

	if response.RiskScore == nil {
		return nil, errors.New("fraud response lacks risk_score")
	}
	if *response.RiskScore < 0 || *response.RiskScore > 100 {
		return nil, fmt.Errorf("risk_score %d out of range [0,100]", *response.RiskScore)
	}

	// The scorer's own severity label is advisory only.
	return &domain.FraudAssessment{
		RiskScore: *response.RiskScore,
		Severity:  domain.SeverityForScore(*response.RiskScore),
	}, nil
}

func (c *Client) postJSON(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal score request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create score request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fraud scorer request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return &HTTPStatusError{
			Operation:  "score",
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       strings.TrimSpace(string(raw)),
		}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode score response: %w", err)
	}
	return nil
}
