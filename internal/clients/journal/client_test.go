package journal

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckExchange(t *testing.T) {
	var gotPath, gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")

		var creds Credentials
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		assert.Equal(t, "key", creds.APIKey)

		json.NewEncoder(w).Encode(CheckResult{Status: "ok", Balance: 1500})
	}))
	defer server.Close()

	client := NewClient(server.URL, "token123", zerolog.Nop())
	result, err := client.CheckExchange("binance", Credentials{APIKey: "key", SecretKey: "secret"})

	require.NoError(t, err)
	assert.Equal(t, "/check/binance", gotPath)
	assert.Equal(t, "Bearer token123", gotAuth)
	assert.Equal(t, "ok", result.Status)
	assert.InDelta(t, 1500, result.Balance, 1e-9)
}

func TestListRecords(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/records", r.URL.Path)
		json.NewEncoder(w).Encode([]RecordPayload{{ID: 1, Symbol: "BTCUSDT"}})
	}))
	defer server.Close()

	client := NewClient(server.URL, "", zerolog.Nop())
	list, err := client.ListRecords()

	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "BTCUSDT", list[0].Symbol)
}

func TestErrorResponseIncludesBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid api key", http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient(server.URL, "", zerolog.Nop())
	_, err := client.CheckExchange("binance", Credentials{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid api key")
}

func TestDeleteRecord(t *testing.T) {
	var gotMethod, gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := NewClient(server.URL, "", zerolog.Nop())
	require.NoError(t, client.DeleteRecord(42))
	assert.Equal(t, http.MethodDelete, gotMethod)
	assert.Equal(t, "/records/42", gotPath)
}
