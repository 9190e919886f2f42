// Package eligibility is the thin call-out to the external eligibility
// collaborator, which decides whether a student may currently book a given
// schedule (payment status, cutoff windows).
package eligibility

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"

	"github.com/ridewise/backend/internal/domain"
)

// Client calls the eligibility service over HTTP. Network errors and 5xx
// responses are retried with fibonacci backoff; 4xx responses are not, since
// repeating a rejected request cannot change the answer.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs a Client for the collaborator at baseURL
// (no trailing slash).
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// checkRequest is the wire shape of an eligibility query.
type checkRequest struct {
	StudentID  uuid.UUID `json:"student_id"`
	ScheduleID uuid.UUID `json:"schedule_id"`
}

// Check asks the collaborator whether studentID may book scheduleID.
// The returned verdict carries CheckedAt so callers storing it as a snapshot
// can see its age.
func (c *Client) Check(ctx context.Context, studentID, scheduleID uuid.UUID) (domain.Eligibility, error) {
	body, err := json.Marshal(checkRequest{StudentID: studentID, ScheduleID: scheduleID})
	if err != nil {
		return domain.Eligibility{}, fmt.Errorf("eligibility.Client.Check: marshal: %w", err)
	}

	var result domain.Eligibility
	backoff := retry.WithMaxRetries(2, retry.NewFibonacci(250*time.Millisecond))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost,
			c.baseURL+"/api/v1/eligibility/check", bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return retry.RetryableError(err)
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode >= 500:
			io.Copy(io.Discard, resp.Body) //nolint:errcheck // drain for connection reuse
			return retry.RetryableError(fmt.Errorf("status %d", resp.StatusCode))
		case resp.StatusCode != http.StatusOK:
			return fmt.Errorf("status %d", resp.StatusCode)
		}

		return json.NewDecoder(resp.Body).Decode(&result)
	})
	if err != nil {
		return domain.Eligibility{}, fmt.Errorf("eligibility.Client.Check: %w", err)
	}

	result.CheckedAt = time.Now().UTC()
	return result, nil
}
