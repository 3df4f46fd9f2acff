package api

import (
	"context"
	"io"
	"lp-tracker/internal/config"
	"lp-tracker/internal/domain"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

const historyBody = `{
  "data": {"lol": {"player": {"lpHistory": {
    "pageInfo": {"totalPages": 3},
    "items": [
      {"startedAt": 1700000200, "patch": "14.1", "result": "WON",
       "lp": {"before": {"value": 1240, "lp": 40}, "after": {"value": 1262, "lp": 62}, "lpDiff": 22}},
      {"startedAt": 1700000100, "patch": "14.1", "result": "LOST", "lp": {"before": null, "after": null, "lpDiff": null}}
    ],
    "thresholds": [
      {"tier": "GOLD", "division": "IV", "minValue": 1200, "maxValue": 1300},
      {"tier": "GOLD", "division": "III", "minValue": 1300, "maxValue": 1400}
    ]
  }}}}
}`

func testClientConfig(url string) *config.Config {
	return &config.Config{HistoryURL: url, CutoffURL: url, RequestsPerSecond: 100}
}

func serve(t *testing.T, h http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

func TestGetLPHistoryPage(t *testing.T) {
	var request []byte
	srv := serve(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, lpGainsOperation, r.Header.Get("x-moba-proxy-gql-ops-name"))
		request, _ = io.ReadAll(r.Body)
		_, _ = w.Write([]byte(historyBody))
	})

	client := NewMobalyticsClient(testClientConfig(srv.URL), zerolog.Nop())
	riotID := domain.RiotID{GameName: "Caps", TagLine: "EUW"}

	page, err := client.GetLPHistoryPage(context.Background(), riotID, domain.RegionEUW, 2)
	require.NoError(t, err)

	assert.Equal(t, int64(2), gjson.GetBytes(request, "variables.cLpPageIndex").Int())
	assert.Equal(t, int64(150), gjson.GetBytes(request, "variables.cLpPerPage").Int())
	assert.Equal(t, "Caps", gjson.GetBytes(request, "variables.gameName").String())
	assert.Equal(t, "EUW", gjson.GetBytes(request, "variables.region").String())
	assert.Equal(t, lpGainsQueryHash, gjson.GetBytes(request, "extensions.persistedQuery.sha256Hash").String())

	assert.Equal(t, 2, page.Index)
	assert.Equal(t, 3, page.TotalPages)
	require.Len(t, page.Items, 2)

	first := page.Items[0]
	assert.Equal(t, int64(1700000200), first.StartedAt)
	assert.Equal(t, domain.ResultWon, first.Result)
	require.NotNil(t, first.LP.After)
	assert.Equal(t, 1262, first.LP.After.Value)
	assert.Equal(t, 62, first.LP.After.LP)
	require.NotNil(t, first.LP.Diff)
	assert.Equal(t, 22, *first.LP.Diff)

	assert.True(t, page.Items[1].LP.Placement())

	require.Len(t, page.Thresholds, 2)
	assert.Equal(t, domain.DivisionIII, page.Thresholds[1].Division)
}

func TestGetLPHistoryPageFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		class  string
	}{
		{"graphql errors", http.StatusOK, `{"errors":[{"message":"player not found"}],"data":null}`, "service"},
		{"status", http.StatusInternalServerError, `upstream exploded`, "service"},
		{"not json", http.StatusOK, `<html>`, "payload"},
		{"missing history", http.StatusOK, `{"data":{"lol":{"player":null}}}`, "payload"},
		{"negative lp", http.StatusOK, `{"data":{"lol":{"player":{"lpHistory":{"pageInfo":{"totalPages":1},"items":[{"lp":{"after":{"value":10,"lp":-5}}}],"thresholds":[]}}}}}`, "payload"},
		{"bad threshold", http.StatusOK, `{"data":{"lol":{"player":{"lpHistory":{"pageInfo":{"totalPages":1},"items":[],"thresholds":[{"tier":"WOOD","division":"I","minValue":0,"maxValue":1}]}}}}}`, "payload"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := serve(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			client := NewMobalyticsClient(testClientConfig(srv.URL), zerolog.Nop())
			_, err := client.GetLPHistoryPage(context.Background(), domain.RiotID{GameName: "x"}, domain.RegionNA, 1)
			require.Error(t, err)
			assert.Equal(t, tt.class, Classify(err))
		})
	}
}

func TestGetLPHistoryPageServiceMessage(t *testing.T) {
	srv := serve(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"errors":[{"message":"player not found"}]}`))
	})

	client := NewMobalyticsClient(testClientConfig(srv.URL), zerolog.Nop())
	_, err := client.GetLPHistoryPage(context.Background(), domain.RiotID{GameName: "x"}, domain.RegionNA, 1)

	var serviceErr *ServiceError
	require.ErrorAs(t, err, &serviceErr)
	assert.Equal(t, http.StatusOK, serviceErr.StatusCode)
	assert.Equal(t, "player not found", serviceErr.Message)
}

func TestGetLPHistoryPageTimeout(t *testing.T) {
	srv := serve(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		_, _ = w.Write([]byte(historyBody))
	})

	client := NewMobalyticsClient(testClientConfig(srv.URL), zerolog.Nop())
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.GetLPHistoryPage(ctx, domain.RiotID{GameName: "x"}, domain.RegionNA, 1)

	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.True(t, transportErr.Timeout)
	assert.Equal(t, "timeout", Classify(err))
}

func TestGetLPHistoryPageConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := NewMobalyticsClient(testClientConfig(url), zerolog.Nop())
	_, err := client.GetLPHistoryPage(context.Background(), domain.RiotID{GameName: "x"}, domain.RegionNA, 1)
	assert.Equal(t, "transport", Classify(err))
}
