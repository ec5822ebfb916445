package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"bookingdesk/pkg/model"
)

type DashboardClient struct {
	httpClient *HttpClient
}

func NewDashboardClient(baseURL string) *DashboardClient {
	return &DashboardClient{
		httpClient: NewHttpClient(baseURL),
	}
}

func (c *DashboardClient) Summary(ctx context.Context, storeID string) (*Response, error) {
	path := "/api/v1/dashboard/summary"
	if storeID != "" {
		q := url.Values{}
		q.Set("store_id", storeID)
		path += "?" + q.Encode()
	}
	return c.httpClient.GET(ctx, path)
}

func (c *DashboardClient) DecodeSummary(resp *Response) (*model.DashboardSummary, error) {
	var wrapper struct {
		Data model.DashboardSummary `json:"data"`
	}
	if err := json.Unmarshal(resp.Body, &wrapper); err != nil {
		return nil, fmt.Errorf("could not decode dashboard summary: %s: %w", resp, err)
	}
	return &wrapper.Data, nil
}
