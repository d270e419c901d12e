//go:build pact
// +build pact

package consumer_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	pactconsumer "github.com/pact-foundation/pact-go/v2/consumer"
	pactlog "github.com/pact-foundation/pact-go/v2/log"
	"github.com/pact-foundation/pact-go/v2/matchers"
	"github.com/stretchr/testify/require"

	pacttest "github.com/Apurer/pet-crate-sizer/test/pact"
)

type dimensions struct {
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type crate struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Internal dimensions `json:"internal"`
}

type recommendation struct {
	Unit                string     `json:"unit"`
	MinInternal         dimensions `json:"minInternal"`
	RecommendedCrate    *crate     `json:"recommendedCrate"`
	IsCustomBuildNeeded bool       `json:"isCustomBuildNeeded"`
}

type calculateResponse struct {
	Complete       bool            `json:"complete"`
	Recommendation *recommendation `json:"recommendation"`
}

type assessment struct {
	ID             int64          `json:"id"`
	BookingRef     string         `json:"bookingRef"`
	Recommendation recommendation `json:"recommendation"`
}

type problemDetail struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail"`
}

type apiError struct {
	status int
	title  string
}

func (e apiError) Error() string {
	return fmt.Sprintf("%s (status %d)", e.title, e.status)
}

func TestBookingPortalContract(t *testing.T) {
	pactlog.SetLogLevel("INFO")

	pact, err := pactconsumer.NewV2Pact(pactconsumer.MockHTTPProviderConfig{
		Consumer: pacttest.ConsumerName,
		Provider: pacttest.ProviderName,
		PactDir:  pacttest.PactDir(t),
		LogDir:   pacttest.LogDir(t),
	})
	require.NoError(t, err)

	jsonContentType := matchers.Regex("application/json; charset=utf-8", "application\\/json(?:;\\s?charset=utf-8)?")
	dimensionsMatcher := matchers.Map{
		"length": matchers.Like(75.0),
		"width":  matchers.Like(70.0),
		"height": matchers.Like(58.0),
	}
	recommendationMatcher := matchers.Map{
		"unit":        matchers.Term("cm", "cm|in"),
		"minInternal": dimensionsMatcher,
		"recommendedCrate": matchers.Map{
			"id":       matchers.Like("sky-700"),
			"name":     matchers.Like("Giant (Series 700)"),
			"internal": dimensionsMatcher,
		},
		"isCustomBuildNeeded": matchers.Like(false),
		"crateType":           matchers.Term("standard", "standard|custom"),
		"catalogVersion":      matchers.Like("sky-2024.1"),
		"formula":             matchers.Term("head-clearance", "head-clearance|elbow-stacked"),
	}

	pact.AddInteraction().
		Given(pacttest.StateCatalogBaseline).
		UponReceiving("a request to size a crate").
		WithRequest("POST", "/v1/crates/calculate", func(b *pactconsumer.V2RequestBuilder) {
			b.Header("Content-Type", matchers.S("application/json"))
			b.JSONBody(pacttest.ExampleMeasurements())
		}).
		WillRespondWith(http.StatusOK, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(matchers.Map{
				"complete":       matchers.Like(true),
				"recommendation": recommendationMatcher,
			})
		})

	pact.AddInteraction().
		Given(pacttest.StateAssessmentExists).
		UponReceiving("a request to fetch an existing assessment").
		WithRequest("GET", fmt.Sprintf("/v1/crates/assessments/%d", pacttest.ExistingAssessmentID)).
		WillRespondWith(http.StatusOK, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(matchers.Map{
				"id":             matchers.Like(pacttest.ExistingAssessmentID),
				"bookingRef":     matchers.Like(pacttest.ExampleBookingRef),
				"recommendation": recommendationMatcher,
			})
		})

	pact.AddInteraction().
		Given(pacttest.StateAssessmentMissing).
		UponReceiving("a request for a missing assessment").
		WithRequest("GET", fmt.Sprintf("/v1/crates/assessments/%d", pacttest.MissingAssessmentID)).
		WillRespondWith(http.StatusNotFound, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", matchers.S("application/problem+json"))
			b.JSONBody(matchers.Map{
				"type":   matchers.S("/problems/not-found"),
				"title":  matchers.S("Resource Not Found"),
				"status": matchers.Like(http.StatusNotFound),
			})
		})

	err = pact.ExecuteTest(t, func(config pactconsumer.MockServerConfig) error {
		client := newCrateClient(config)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		sized, err := client.Calculate(ctx, pacttest.ExampleMeasurements())
		if err != nil {
			return fmt.Errorf("calculate: %w", err)
		}
		if !sized.Complete || sized.Recommendation == nil || sized.Recommendation.RecommendedCrate == nil {
			return fmt.Errorf("expected a crate recommendation, got %+v", sized)
		}

		fetched, err := client.GetAssessment(ctx, pacttest.ExistingAssessmentID)
		if err != nil {
			return fmt.Errorf("get assessment: %w", err)
		}
		if fetched.ID != pacttest.ExistingAssessmentID {
			return fmt.Errorf("expected assessment %d, got %+v", pacttest.ExistingAssessmentID, fetched)
		}

		_, err = client.GetAssessment(ctx, pacttest.MissingAssessmentID)
		apiErr, ok := err.(apiError)
		if !ok || apiErr.status != http.StatusNotFound {
			return fmt.Errorf("expected 404 for assessment %d, got %v", pacttest.MissingAssessmentID, err)
		}
		return nil
	})
	require.NoError(t, err)
}

type crateClient struct {
	baseURL    string
	httpClient *http.Client
}

func newCrateClient(config pactconsumer.MockServerConfig) *crateClient {
	host := config.Host
	if host == "" {
		host = "localhost"
	}
	transport := &http.Transport{TLSClientConfig: config.TLSConfig}
	return &crateClient{
		baseURL:    fmt.Sprintf("http://%s:%d", host, config.Port),
		httpClient: &http.Client{Transport: transport, Timeout: 10 * time.Second},
	}
}

func (c *crateClient) Calculate(ctx context.Context, measurements map[string]any) (*calculateResponse, error) {
	body, err := json.Marshal(measurements)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/crates/calculate", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	var out calculateResponse
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *crateClient) GetAssessment(ctx context.Context, id int64) (*assessment, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/v1/crates/assessments/%d", c.baseURL, id), nil)
	if err != nil {
		return nil, err
	}
	var out assessment
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *crateClient) do(req *http.Request, out any) error {
	res, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode >= http.StatusBadRequest {
		var problem problemDetail
		_ = json.NewDecoder(res.Body).Decode(&problem)
		return apiError{status: res.StatusCode, title: problem.Title}
	}
	return json.NewDecoder(res.Body).Decode(out)
}
