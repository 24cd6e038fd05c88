package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/oauth2/clientcredentials"
)

const refinitivSource = "Refinitiv"

// RefinitivConfig настройки клиента Refinitiv Data Platform
type RefinitivConfig struct {
	BaseURL      string
	TokenURL     string
	ClientID     string
	ClientSecret string
	Scopes       []string
	Timeout      time.Duration
}

// RefinitivClient поиск организаций через entity search; авторизация OAuth2 client credentials
type RefinitivClient struct {
	config     RefinitivConfig
	httpClient *http.Client
	logger     *slog.Logger
}

type refinitivResponse struct {
	Results []refinitivEntity `json:"results"`
}

type refinitivEntity struct {
	Name              string `json:"name"`
	Country           string `json:"country"`
	Identifier        string `json:"identifier"`
	Status            string `json:"status"`
	IncorporationDate string `json:"incorporationDate"`
	EntityType        string `json:"entityType"`
	URL               string `json:"url"`
}

// NewRefinitivClient создает клиент; токен запрашивается и обновляется автоматически
func NewRefinitivClient(ctx context.Context, config RefinitivConfig) (*RefinitivClient, error) {
	if config.BaseURL == "" || config.TokenURL == "" {
		return nil, errors.New("refinitiv base url and token url are required")
	}
	if config.ClientID == "" || config.ClientSecret == "" {
		return nil, errors.New("refinitiv client credentials are required")
	}
	if config.Timeout <= 0 {
		config.Timeout = 15 * time.Second
	}

	credentials := clientcredentials.Config{
		ClientID:     config.ClientID,
		ClientSecret: config.ClientSecret,
		TokenURL:     config.TokenURL,
		Scopes:       config.Scopes,
	}
	httpClient := credentials.Client(ctx)
	httpClient.Timeout = config.Timeout

	return &RefinitivClient{
		config:     config,
		httpClient: httpClient,
		logger:     slog.Default().With("component", "refinitiv"),
	}, nil
}

// Lookup возвращает первую найденную организацию или nil
func (c *RefinitivClient) Lookup(ctx context.Context, name string) (*Record, error) {
	records, err := c.LookupAll(ctx, name, 1)
	if err != nil || len(records) == 0 {
		return nil, err
	}
	return &records[0], nil
}

// LookupAll возвращает до limit организаций
func (c *RefinitivClient) LookupAll(ctx context.Context, name string, limit int) ([]Record, error) {
	if limit < 1 {
		limit = 1
	}

	params := url.Values{}
	params.Set("query", name)
	params.Set("limit", strconv.Itoa(limit))
	reqURL := c.config.BaseURL + "/entity-search?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("refinitiv request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("refinitiv: %w", ErrRateLimited)
	case resp.StatusCode == http.StatusNotFound:
		return nil, nil
	case resp.StatusCode != http.StatusOK:
		return nil, &StatusError{Provider: "refinitiv", StatusCode: resp.StatusCode, Body: truncate(string(body), 200)}
	}

	var payload refinitivResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode refinitiv response: %w", err)
	}

	records := make([]Record, 0, len(payload.Results))
	for _, entity := range payload.Results {
		if entity.Name == "" {
			continue
		}
		records = append(records, Record{
			MatchedName: entity.Name,
			Fields: map[string]*string{
				FieldJurisdiction:      StringField(entity.Country),
				FieldCompanyNumber:     StringField(entity.Identifier),
				FieldStatus:            StringField(entity.Status),
				FieldIncorporationDate: StringField(entity.IncorporationDate),
				FieldCompanyType:       StringField(entity.EntityType),
				FieldSourceURL:         StringField(entity.URL),
				FieldSource:            StringField(refinitivSource),
			},
		})
		if len(records) == limit {
			break
		}
	}

	c.logger.Debug("Refinitiv search completed",
		"query", name,
		"results", len(records))

	return records, nil
}
