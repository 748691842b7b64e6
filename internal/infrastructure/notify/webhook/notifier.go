// Package webhook delivers hold notifications to a configured HTTP
// endpoint, typically a chat-ops integration watched by the finance team.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/finagent/expense-pipeline/internal/core/domain"
)

type Notifier struct {
	endpoint   string
	httpClient *http.Client
}

func New(endpoint string, timeout time.Duration) *Notifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Notifier{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type holdPayload struct {
	Event        string `json:"event"`
	AlertID      string `json:"alert_id"`
	SubmissionID string `json:"submission_id"`
	UserID       string `json:"user_id"`
	RiskScore    int    `json:"risk_score"`
	Severity     string `json:"severity"`
	CreatedAt    string `json:"created_at"`
}

func (n *Notifier) NotifyHold(ctx context.Context, alert domain.FraudAlert) error {
	payload := holdPayload{
		Event:        "expense.held",
		AlertID:      alert.ID,
		SubmissionID: alert.SubmissionID,
		UserID:       alert.UserID,
		RiskScore:    alert.RiskScore,
		Severity:     string(alert.Severity),
		CreatedAt:    alert.CreatedAt.UTC().Format(time.RFC3339),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal hold notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create hold notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("deliver hold notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("hold notification status %s: %s", resp.Status, strings.TrimSpace(string(raw)))
	}
	return nil
}
