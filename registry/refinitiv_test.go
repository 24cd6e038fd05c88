package registry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRefinitivTestServer(t *testing.T, tokenRequests *int32) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/token", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(tokenRequests, 1)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.PostForm.Get("grant_type"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"test-token","token_type":"bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/data/entity-search", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		switch r.URL.Query().Get("query") {
		case "Nobody":
			_, _ = w.Write([]byte(`{"results":[]}`))
		case "Busy":
			w.WriteHeader(http.StatusTooManyRequests)
		default:
			assert.Equal(t, "2", r.URL.Query().Get("limit"))
			_, _ = w.Write([]byte(`{"results":[
				{"name":"Regional Chamber of Commerce","country":"US","identifier":"5000123","status":"Active","entityType":"Nonprofit"},
				{"name":"Regional Chamber","country":"US","identifier":"5000999"}
			]}`))
		}
	})

	return httptest.NewServer(mux)
}

func TestRefinitivClient_LookupAll(t *testing.T) {
	var tokenRequests int32
	server := newRefinitivTestServer(t, &tokenRequests)
	defer server.Close()

	client, err := NewRefinitivClient(context.Background(), RefinitivConfig{
		BaseURL:      server.URL + "/data",
		TokenURL:     server.URL + "/auth/token",
		ClientID:     "id",
		ClientSecret: "secret",
	})
	require.NoError(t, err)

	records, err := client.LookupAll(context.Background(), "Regional Chamber", 2)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "Regional Chamber of Commerce", records[0].MatchedName)
	assert.Equal(t, "5000123", *records[0].Fields[FieldCompanyNumber])
	assert.Equal(t, "Refinitiv", *records[0].Fields[FieldSource])
	assert.Nil(t, records[1].Fields[FieldStatus])

	_, err = client.LookupAll(context.Background(), "Regional Chamber", 2)
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&tokenRequests), "token is reused until expiry")
}

func TestRefinitivClient_LookupOutcomes(t *testing.T) {
	var tokenRequests int32
	server := newRefinitivTestServer(t, &tokenRequests)
	defer server.Close()

	client, err := NewRefinitivClient(context.Background(), RefinitivConfig{
		BaseURL:      server.URL + "/data",
		TokenURL:     server.URL + "/auth/token",
		ClientID:     "id",
		ClientSecret: "secret",
	})
	require.NoError(t, err)

	record, err := client.Lookup(context.Background(), "Nobody")
	require.NoError(t, err)
	assert.Nil(t, record)

	_, err = client.Lookup(context.Background(), "Busy")
	assert.ErrorIs(t, err, ErrRateLimited)
}

func TestNewRefinitivClient_Validation(t *testing.T) {
	tests := []struct {
		name   string
		config RefinitivConfig
	}{
		{name: "missing urls", config: RefinitivConfig{ClientID: "id", ClientSecret: "secret"}},
		{name: "missing credentials", config: RefinitivConfig{BaseURL: "http://x", TokenURL: "http://x/token"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewRefinitivClient(context.Background(), tt.config)
			assert.Error(t, err)
			assert.Nil(t, client)
		})
	}
}
