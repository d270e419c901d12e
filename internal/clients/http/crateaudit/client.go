package crateaudit

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"resty.dev/v3"
)

// Dimensions is the pet measurement and crate requirement block sent to the auditor, in centimeters.
type Dimensions struct {
	A             float64 `json:"A"`
	B             float64 `json:"B"`
	C             float64 `json:"C"`
	D             float64 `json:"D"`
	IsSnubNosed   bool    `json:"isSnubNosed"`
	Length        float64 `json:"length"`
	Width         float64 `json:"width"`
	Height        float64 `json:"height"`
	RecommendedID string  `json:"recommendedCrate,omitempty"`
}

// AuditRequest is the audit endpoint request body.
type AuditRequest struct {
	Dimensions  Dimensions `json:"dimensions"`
	Breed       string     `json:"breed,omitempty"`
	Weight      float64    `json:"weight,omitempty"`
	Destination string     `json:"destination,omitempty"`
}

// AuditResponse is the audit endpoint response body.
type AuditResponse struct {
	SafetyScore           int      `json:"safety_score"`
	Verdict               string   `json:"verdict,omitempty"`
	Issues                []string `json:"issues,omitempty"`
	ComfortAnalysis       string   `json:"comfort_analysis,omitempty"`
	AirlineWarning        string   `json:"airline_warning,omitempty"`
	RecommendedCrateModel string   `json:"recommended_crate_model,omitempty"`
	IsCustomBuildNeeded   bool     `json:"is_custom_build_needed,omitempty"`
	ProTip                string   `json:"pro_tip,omitempty"`
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Detail  string `json:"detail"`
}

// Client calls the crate audit HTTP endpoint.
type Client struct {
	http *resty.Client
	url  string
}

// Option configures the client.
type Option func(*options)

type options struct {
	timeout    time.Duration
	retries    int
	httpClient *http.Client
}

// WithTimeout bounds each request.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithRetryCount sets how many times a failed request is retried.
func WithRetryCount(n int) Option {
	return func(o *options) {
		if n >= 0 {
			o.retries = n
		}
	}
}

// WithHTTPClient replaces the underlying transport client.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		o.httpClient = c
	}
}

// NewClient builds an audit client posting to url.
func NewClient(url string, opts ...Option) (*Client, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, errors.New("crate audit URL is required")
	}
	o := options{timeout: 20 * time.Second, retries: 2}
	for _, fn := range opts {
		if fn != nil {
			fn(&o)
		}
	}
	var rc *resty.Client
	if o.httpClient != nil {
		rc = resty.NewWithClient(o.httpClient)
	} else {
		rc = resty.New()
	}
	rc.SetTimeout(o.timeout).
		SetRetryCount(o.retries).
		SetRetryWaitTime(500*time.Millisecond).
		SetRetryMaxWaitTime(5*time.Second).
		SetHeader("Accept", "application/json")
	return &Client{http: rc, url: url}, nil
}

// Close releases idle connections.
func (c *Client) Close() error {
	if c == nil || c.http == nil {
		return nil
	}
	return c.http.Close()
}

// Audit posts the request and decodes the auditor's verdict.
func (c *Client) Audit(ctx context.Context, req AuditRequest) (*AuditResponse, error) {
	if c == nil || c.http == nil {
		return nil, errors.New("crate audit client not configured")
	}
	var result AuditResponse
	var failure errorBody
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		SetResult(&result).
		SetError(&failure).
		Post(c.url)
	if err != nil {
		return nil, fmt.Errorf("call crate audit API: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("crate audit API error: %s", errorMessage(failure, resp.Status()))
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("crate audit API unexpected status: %s", resp.Status())
	}
	return &result, nil
}

func errorMessage(body errorBody, fallback string) string {
	for _, msg := range []string{body.Detail, body.Message, body.Error} {
		if msg = strings.TrimSpace(msg); msg != "" {
			return msg
		}
	}
	return fallback
}
