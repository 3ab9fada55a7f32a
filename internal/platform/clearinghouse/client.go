// Package clearinghouse submits generated EDI documents to an external
// clearinghouse over its JSON API.
package clearinghouse

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Client talks to the clearinghouse API. All requests carry the account API
// key as a bearer token.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  zerolog.Logger
}

// SubmissionResult is the clearinghouse acknowledgement for a submitted
// claim document.
type SubmissionResult struct {
	SubmissionID string `json:"submissionId"`
	Status       string `json:"status"`
	Message      string `json:"message,omitempty"`
}

// EligibilityResult is the clearinghouse response to an eligibility inquiry.
type EligibilityResult struct {
	InquiryID string          `json:"inquiryId"`
	Status    string          `json:"status"`
	Response  json.RawMessage `json:"response,omitempty"`
}

func New(baseURL, apiKey string, logger zerolog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 30 * time.Second},
		logger:  logger,
	}
}

// SubmitClaim sends a generated 837P document for forwarding to the payer.
func (c *Client) SubmitClaim(ctx context.Context, claimNumber, document string) (*SubmissionResult, error) {
	payload := struct {
		ClaimNumber     string `json:"claimNumber"`
		TransactionType string `json:"transactionType"`
		Document        string `json:"document"`
	}{
		ClaimNumber:     claimNumber,
		TransactionType: "837P",
		Document:        document,
	}

	var result SubmissionResult
	if err := c.post(ctx, "/claims", payload, &result); err != nil {
		return nil, err
	}

	c.logger.Info().
		Str("claim_number", claimNumber).
		Str("submission_id", result.SubmissionID).
		Str("status", result.Status).
		Msg("claim submitted to clearinghouse")

	return &result, nil
}

// CheckEligibility sends a generated 270 document and returns the
// clearinghouse's response.
func (c *Client) CheckEligibility(ctx context.Context, traceNumber, document string) (*EligibilityResult, error) {
	payload := struct {
		TraceNumber     string `json:"traceNumber"`
		TransactionType string `json:"transactionType"`
		Document        string `json:"document"`
	}{
		TraceNumber:     traceNumber,
		TransactionType: "270",
		Document:        document,
	}

	var result EligibilityResult
	if err := c.post(ctx, "/eligibility", payload, &result); err != nil {
		return nil, err
	}

	c.logger.Info().
		Str("trace_number", traceNumber).
		Str("inquiry_id", result.InquiryID).
		Msg("eligibility inquiry submitted to clearinghouse")

	return &result, nil
}

func (c *Client) post(ctx context.Context, path string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("POST %s: %w", path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Error().
			Int("status", resp.StatusCode).
			Str("path", path).
			Str("body", string(respBody)).
			Msg("clearinghouse request failed")
		return fmt.Errorf("clearinghouse returned status %d", resp.StatusCode)
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}
