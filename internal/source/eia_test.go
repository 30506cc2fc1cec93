package source

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gridcast/gridcast/internal/timeseries"
)

func TestEIAClient_FetchRange(t *testing.T) {
	var gotQuery map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{}
		for key := range r.URL.Query() {
			gotQuery[key] = r.URL.Query().Get(key)
		}

		// Sales values arrive as strings; one unpublished month is null
		fmt.Fprint(w, `{
			"response": {
				"total": "3",
				"data": [
					{"period": "2024-01", "sales": "612.5"},
					{"period": "2024-02", "sales": "580.25"},
					{"period": "2024-03", "sales": null}
				]
			}
		}`)
	}))
	defer server.Close()

	client := NewEIAClient(server.URL, "test-key", "RES", 5*time.Second)

	obs, err := client.FetchRange(context.Background(),
		"NJ", timeseries.NewPeriod(2024, time.January), timeseries.NewPeriod(2024, time.March))
	if err != nil {
		t.Fatalf("FetchRange failed: %v", err)
	}

	// Null sales row is skipped
	if len(obs) != 2 {
		t.Fatalf("Expected 2 observations, got %d", len(obs))
	}
	if obs[0].Period != timeseries.NewPeriod(2024, time.January) || obs[0].Value != 612.5 {
		t.Errorf("Unexpected first observation: %+v", obs[0])
	}
	if obs[1].Value != 580.25 {
		t.Errorf("Unexpected second value: %v", obs[1].Value)
	}

	wantParams := map[string]string{
		"api_key":            "test-key",
		"frequency":          "monthly",
		"data[0]":            "sales",
		"facets[stateid][]":  "NJ",
		"facets[sectorid][]": "RES",
		"start":              "2024-01",
		"end":                "2024-03",
		"sort[0][column]":    "period",
		"sort[0][direction]": "asc",
	}
	for key, want := range wantParams {
		if gotQuery[key] != want {
			t.Errorf("Query param %s = %q, want %q", key, gotQuery[key], want)
		}
	}
}

func TestEIAClient_FetchRangeInvalidRange(t *testing.T) {
	client := NewEIAClient("http://localhost", "key", "RES", time.Second)

	_, err := client.FetchRange(context.Background(),
		"NJ", timeseries.NewPeriod(2024, time.March), timeseries.NewPeriod(2024, time.January))
	if err == nil {
		t.Fatal("Expected error for end before start")
	}
}

func TestEIAClient_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewEIAClient(server.URL, "key", "RES", time.Second)

	_, err := client.FetchRange(context.Background(),
		"NJ", timeseries.NewPeriod(2024, time.January), timeseries.NewPeriod(2024, time.January))

	upstream, ok := err.(*UpstreamError)
	if !ok {
		t.Fatalf("Expected *UpstreamError, got %T: %v", err, err)
	}
	if upstream.StatusCode != http.StatusTooManyRequests {
		t.Errorf("Expected status 429, got %d", upstream.StatusCode)
	}
	if !upstream.Temporary() {
		t.Error("Expected 429 to be temporary")
	}
}

func TestStaticSource_FetchRange(t *testing.T) {
	src := NewStaticSource(map[string][]timeseries.Observation{
		"NJ": {
			{Period: timeseries.NewPeriod(2024, time.January), Value: 600},
			{Period: timeseries.NewPeriod(2024, time.February), Value: 580},
			{Period: timeseries.NewPeriod(2024, time.March), Value: 550},
		},
	})

	obs, err := src.FetchRange(context.Background(),
		"NJ", timeseries.NewPeriod(2024, time.February), timeseries.NewPeriod(2024, time.March))
	if err != nil {
		t.Fatalf("FetchRange failed: %v", err)
	}
	if len(obs) != 2 {
		t.Fatalf("Expected 2 observations inside range, got %d", len(obs))
	}
	if obs[0].Period != timeseries.NewPeriod(2024, time.February) {
		t.Errorf("Unexpected first period: %s", obs[0].Period)
	}

	obs, err = src.FetchRange(context.Background(),
		"TX", timeseries.NewPeriod(2024, time.January), timeseries.NewPeriod(2024, time.March))
	if err != nil {
		t.Fatalf("FetchRange failed: %v", err)
	}
	if len(obs) != 0 {
		t.Errorf("Expected no observations for unknown region, got %d", len(obs))
	}
}
