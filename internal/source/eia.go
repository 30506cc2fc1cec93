package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/gridcast/gridcast/internal/timeseries"
	"github.com/gridcast/gridcast/internal/utils"
)

// pageLength is the maximum rows per EIA API request.
const pageLength = 5000

// EIAClient fetches monthly retail electricity sales from the EIA v2 API.
// The region maps to the stateid facet; the configured sector maps to the
// sectorid facet.
type EIAClient struct {
	baseURL    string
	apiKey     string
	sector     string
	httpClient *http.Client
}

// NewEIAClient creates an EIA API client.
func NewEIAClient(baseURL, apiKey, sector string, timeout time.Duration) *EIAClient {
	if timeout <= 0 {
		timeout = utils.DefaultRequestTimeout
	}
	return &EIAClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		sector:  sector,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// eiaResponse mirrors the envelope of the EIA v2 data endpoint. Sales
// values arrive as JSON strings.
type eiaResponse struct {
	Response struct {
		Total json.Number `json:"total"`
		Data  []struct {
			Period string      `json:"period"`
			Sales  interface{} `json:"sales"`
		} `json:"data"`
	} `json:"response"`
}

// FetchRange fetches observations for a region over an inclusive period
// range, following pagination until the range is exhausted.
func (c *EIAClient) FetchRange(ctx context.Context, region string, start, end timeseries.Period) ([]timeseries.Observation, error) {
	if end.Before(start) {
		return nil, fmt.Errorf("eia: invalid range %s..%s", start, end)
	}

	var obs []timeseries.Observation
	offset := 0
	for {
		page, err := c.fetchPage(ctx, region, start, end, offset)
		if err != nil {
			return nil, err
		}
		obs = append(obs, page...)

		if len(page) < pageLength {
			break
		}
		offset += pageLength
	}

	sort.Slice(obs, func(i, j int) bool { return obs[i].Period.Before(obs[j].Period) })

	return obs, nil
}

// fetchPage fetches one page of the range starting at offset.
func (c *EIAClient) fetchPage(ctx context.Context, region string, start, end timeseries.Period, offset int) ([]timeseries.Observation, error) {
	params := url.Values{}
	params.Set("api_key", c.apiKey)
	params.Set("frequency", "monthly")
	params.Set("data[0]", "sales")
	params.Set("facets[stateid][]", region)
	params.Set("facets[sectorid][]", c.sector)
	params.Set("start", start.String())
	params.Set("end", end.String())
	params.Set("sort[0][column]", "period")
	params.Set("sort[0][direction]", "asc")
	params.Set("offset", fmt.Sprintf("%d", offset))
	params.Set("length", fmt.Sprintf("%d", pageLength))

	reqURL := c.baseURL + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("eia: failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("eia: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var payload eiaResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("eia: failed to decode response: %w", err)
	}

	obs := make([]timeseries.Observation, 0, len(payload.Response.Data))
	for _, row := range payload.Response.Data {
		period, err := timeseries.ParsePeriod(row.Period)
		if err != nil {
			return nil, fmt.Errorf("eia: bad period in response: %w", err)
		}

		// Months the provider has not published yet arrive with a
		// null sales field; skip them rather than storing zeros.
		value, ok := utils.ToFloat64(row.Sales)
		if !ok {
			continue
		}

		obs = append(obs, timeseries.Observation{Period: period, Value: value})
	}

	return obs, nil
}
