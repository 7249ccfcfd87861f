// Package ai holds the clients for the two external AI dependencies: the
// medical QA model and the Xunfei speech recognition service.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"time"

	"nomad-health-backend/internal/config"

	"github.com/sirupsen/logrus"
)

// QAResult is the outcome of one medical QA query. Query never fails with an
// error; OK reports whether the upstream answered, and Response always holds
// text usable as a reply.
type QAResult struct {
	Response  string
	TimeTaken float64
	OK        bool
	Mock      bool
}

// QAClient answers medical questions.
type QAClient interface {
	Query(ctx context.Context, query, language string, maxTokens int, temperature float64) QAResult
}

// NewQAClient selects the live or mock client from configuration. The choice
// is fixed at startup; nothing consults the flag afterwards.
func NewQAClient(cfg *config.Config) QAClient {
	if cfg.QAUseMock {
		logrus.Info("medical QA client running in mock mode")
		return NewMockQAClient()
	}
	return NewHTTPQAClient(cfg.QAAPIURL)
}

// qaUnavailable is the generic reply when the live upstream cannot answer.
const qaUnavailable = "医疗咨询服务暂时不可用"

// qaQueryTimeout bounds one upstream round trip.
const qaQueryTimeout = 30 * time.Second

// HTTPQAClient queries the live medical model endpoint.
type HTTPQAClient struct {
	baseURL string

	// Timeout bounds one round trip; overridable, mainly for tests.
	Timeout time.Duration

	httpClient *http.Client
}

func NewHTTPQAClient(baseURL string) *HTTPQAClient {
	return &HTTPQAClient{
		baseURL:    baseURL,
		Timeout:    qaQueryTimeout,
		httpClient: &http.Client{},
	}
}

type qaRequest struct {
	Query       string  `json:"query"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
	Language    string  `json:"language"`
}

type qaResponse struct {
	Response  string  `json:"response"`
	TimeTaken float64 `json:"time_taken"`
}

// Query sends the question to the model service. Any transport error, timeout
// or non-2xx status degrades to OK=false with the generic unavailability
// message; the caller decides whether that is soft or hard.
func (c *HTTPQAClient) Query(ctx context.Context, query, language string, maxTokens int, temperature float64) QAResult {
	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	payload := qaRequest{
		Query:       query,
		MaxTokens:   maxTokens,
		Temperature: temperature,
		TopP:        0.95,
		Language:    language,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		logrus.WithError(err).Error("medical QA request marshal failed")
		return QAResult{Response: qaUnavailable, OK: false}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s/api/medical_qa", c.baseURL), bytes.NewReader(body))
	if err != nil {
		logrus.WithError(err).Error("medical QA request build failed")
		return QAResult{Response: qaUnavailable, OK: false}
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	elapsed := time.Since(start).Seconds()
	if err != nil {
		logrus.WithError(err).Warn("medical QA upstream unreachable")
		return QAResult{Response: qaUnavailable, TimeTaken: round2(elapsed), OK: false}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logrus.WithField("status", resp.StatusCode).Warn("medical QA upstream returned error status")
		return QAResult{Response: qaUnavailable, TimeTaken: round2(elapsed), OK: false}
	}

	var result qaResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		logrus.WithError(err).Warn("medical QA response decode failed")
		return QAResult{Response: qaUnavailable, TimeTaken: round2(elapsed), OK: false}
	}

	timeTaken := result.TimeTaken
	if timeTaken == 0 {
		timeTaken = round2(elapsed)
	}
	return QAResult{Response: result.Response, TimeTaken: timeTaken, OK: true}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
