// Package remote is a moderation scorer backed by an external HTTP scoring
// service.
//
// The wire format is a simple JSON score API: POST /v1/score with the text
// and request metadata, bearer-token auth, scorer verdict in the response
// body. Retries and backoff live in the HTTP client; the governance pipeline
// itself never retries scoring inline.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/time/rate"

	"github.com/quillfeed/gatekeeper/govern/moderation"
	"github.com/quillfeed/gatekeeper/util"
)

type Client struct {
	Client   *http.Client
	Host     string
	APIToken string
	// bounds outbound request rate to the scoring service
	Limiter *rate.Limiter
}

func NewClient(host, token string, reqPerSec int) *Client {
	if reqPerSec <= 0 {
		reqPerSec = 20
	}
	return &Client{
		Client:   util.RobustHTTPClient(),
		Host:     host,
		APIToken: token,
		Limiter:  rate.NewLimiter(rate.Limit(reqPerSec), 1),
	}
}

type scoreRequest struct {
	Text     string            `json:"text"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

type scoreResponse struct {
	Blocked         bool     `json:"blocked"`
	Reasons         []string `json:"reasons"`
	Categories      []string `json:"categories"`
	Severity        string   `json:"severity"`
	Confidence      float64  `json:"confidence"`
	SuggestedAction string   `json:"suggestedAction"`
}

func (c *Client) Score(ctx context.Context, text string, meta map[string]string) (*moderation.Result, error) {
	if err := c.Limiter.Wait(ctx); err != nil {
		return nil, err
	}

	body, err := json.Marshal(scoreRequest{Text: text, Metadata: meta})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, "POST", c.Host+"/v1/score", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.APIToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIToken)
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("scoring service request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("scoring service request failed: status=%d", resp.StatusCode)
	}

	var sr scoreResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("failed to parse scoring service response: %w", err)
	}

	return &moderation.Result{
		Blocked:         sr.Blocked,
		Reasons:         sr.Reasons,
		Categories:      sr.Categories,
		Severity:        moderation.Severity(sr.Severity),
		Confidence:      sr.Confidence,
		SuggestedAction: moderation.Action(sr.SuggestedAction),
	}, nil
}
