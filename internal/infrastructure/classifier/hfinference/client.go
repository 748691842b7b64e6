package hfinference

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

// Client calls a hosted receipt-classification endpoint. The pipeline
// never sees the receipt bytes; the artifact reference is forwarded and
// the service resolves it against shared storage.
type Client struct {
	baseURL    string
	model      string
	token      string
	httpClient *http.Client
	executor   *resilience.Executor
}

func New(baseURL, model, token string, timeout time.Duration, executor *resilience.Executor) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
		executor:   executor,
	}
}

type classifyResponse struct {
	Amount     *float64 `json:"amount"`
	Merchant   string   `json:"merchant"`
	Category   string   `json:"category"`
	Confidence *float64 `json:"confidence"`
}

func (c *Client) Classify(ctx context.Context, artifactRef string) (*domain.ClassificationResult, error) {
	request := map[string]any{
		"artifact_ref": artifactRef,
		"model":        c.model,
	}

	var response classifyResponse
	call := func(callCtx context.Context) error {
		return c.postJSON(callCtx, "/v1/receipts/classify", request, &response)
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, "classifier.classify", call, classifyTransportError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return nil, wrapTemporaryIfNeeded("classify receipt", err)
	}

	return validateResponse(response)
}

// validateResponse converts loose collaborator JSON into the typed
// result. A missing confidence key is a classifier failure, never a
// zero-confidence result.
func validateResponse(resp classifyResponse) (*domain.ClassificationResult, error) {
	if resp.Confidence == nil {
		return nil, errors.New("classifier response lacks confidence")
	}
	if *resp.Confidence < 0 || *resp.Confidence > 1 {
		return nil, fmt.Errorf("confidence %v out of range [0,1]", *resp.Confidence)
	}
	if resp.Amount == nil {
		return nil, errors.New("classifier response lacks amount")
	}
	if *resp.Amount < 0 {
		return nil, fmt.Errorf("negative amount %v", *resp.Amount)
	}

	category := resp.Category
	if category == "" {
		category = "Other"
	}
	return &domain.ClassificationResult{
		Amount:     *resp.Amount,
		Merchant:   resp.Merchant,
		Category:   category,
		Confidence: *resp.Confidence,
	}, nil
}

func (c *Client) postJSON(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal classify request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create classify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("classifier request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return &HTTPStatusError{
			Operation:  "classify",
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       strings.TrimSpace(string(raw)),
		}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode classify response: %w", err)
	}
	return nil
}
