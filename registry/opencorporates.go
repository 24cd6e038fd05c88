package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

const (
	DefaultOpenCorporatesURL = "https://api.opencorporates.com/v0.4"
	openCorporatesSource     = "OpenCorporates"
)

// OpenCorporatesConfig настройки клиента OpenCorporates
type OpenCorporatesConfig struct {
	BaseURL           string
	APIToken          string
	Timeout           time.Duration
	RequestsPerMinute int
	MaxConcurrency    int
}

// OpenCorporatesClient поиск компаний через OpenCorporates API v0.4
type OpenCorporatesClient struct {
	config     OpenCorporatesConfig
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewOpenCorporatesClient создает клиент; незаданные параметры заполняются значениями по умолчанию
func NewOpenCorporatesClient(config OpenCorporatesConfig) *OpenCorporatesClient {
	if config.BaseURL == "" {
		config.BaseURL = DefaultOpenCorporatesURL
	}
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}
	if config.MaxConcurrency <= 0 {
		config.MaxConcurrency = 1
	}

	var limiter *rate.Limiter
	if config.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(config.RequestsPerMinute)), 1)
	}

	return &OpenCorporatesClient{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		limiter: limiter,
		logger:  slog.Default().With("component", "opencorporates"),
	}
}

type openCorporatesResponse struct {
	Results struct {
		Companies []struct {
			Company openCorporatesCompany `json:"company"`
		} `json:"companies"`
	} `json:"results"`
}

type openCorporatesCompany struct {
	Name              string `json:"name"`
	JurisdictionCode  string `json:"jurisdiction_code"`
	CompanyNumber     string `json:"company_number"`
	CurrentStatus     string `json:"current_status"`
	IncorporationDate string `json:"incorporation_date"`
	CompanyType       string `json:"company_type"`
	OpenCorporatesURL string `json:"opencorporates_url"`
}

// Lookup возвращает первую найденную компанию или nil
func (c *OpenCorporatesClient) Lookup(ctx context.Context, name string) (*Record, error) {
	records, err := c.LookupAll(ctx, name, 1)
	if err != nil || len(records) == 0 {
		return nil, err
	}
	return &records[0], nil
}

// LookupAll возвращает до limit компаний в порядке релевантности API
func (c *OpenCorporatesClient) LookupAll(ctx context.Context, name string, limit int) ([]Record, error) {
	if limit < 1 {
		limit = 1
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter wait failed: %w", err)
		}
	}

	params := url.Values{}
	params.Set("q", name)
	params.Set("per_page", strconv.Itoa(limit))
	if c.config.APIToken != "" {
		params.Set("api_token", c.config.APIToken)
	}
	reqURL := c.config.BaseURL + "/companies/search?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("opencorporates request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("opencorporates: %w", ErrRateLimited)
	case resp.StatusCode == http.StatusNotFound:
		return nil, nil
	case resp.StatusCode != http.StatusOK:
		return nil, &StatusError{Provider: "opencorporates", StatusCode: resp.StatusCode, Body: truncate(string(body), 200)}
	}

	var payload openCorporatesResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode opencorporates response: %w", err)
	}

	records := make([]Record, 0, len(payload.Results.Companies))
	for _, item := range payload.Results.Companies {
		company := item.Company
		if company.Name == "" {
			continue
		}
		records = append(records, Record{
			MatchedName: company.Name,
			Fields: map[string]*string{
				FieldJurisdiction:      StringField(company.JurisdictionCode),
				FieldCompanyNumber:     StringField(company.CompanyNumber),
				FieldStatus:            StringField(company.CurrentStatus),
				FieldIncorporationDate: StringField(company.IncorporationDate),
				FieldCompanyType:       StringField(company.CompanyType),
				FieldSourceURL:         StringField(company.OpenCorporatesURL),
				FieldSource:            StringField(openCorporatesSource),
			},
		})
		if len(records) == limit {
			break
		}
	}

	c.logger.Debug("OpenCorporates search completed",
		"query", name,
		"results", len(records))

	return records, nil
}

// MaxConcurrency допустимое число параллельных запросов
func (c *OpenCorporatesClient) MaxConcurrency() int {
	return c.config.MaxConcurrency
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
