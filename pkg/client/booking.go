package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"bookingdesk/pkg/model"
)

// BookingClient talks to the bookings service over HTTP.
type BookingClient struct {
	httpClient *HttpClient
}

func NewBookingClient(baseURL string) *BookingClient {
	return &BookingClient{
		httpClient: NewHttpClient(baseURL),
	}
}

func bookingPath(id string, suffix string) string {
	return "/api/v1/bookings/id/" + url.PathEscape(id) + suffix
}

func (c *BookingClient) GetByID(ctx context.Context, id string) (*Response, error) {
	return c.httpClient.GET(ctx, bookingPath(id, ""))
}

func (c *BookingClient) CheckIn(ctx context.Context, id string, req *model.CheckInRequest) (*Response, error) {
	return c.httpClient.POST(ctx, bookingPath(id, "/check-in"), req)
}

func (c *BookingClient) Cancel(ctx context.Context, id string, req *model.CancelRequest) (*Response, error) {
	return c.httpClient.POST(ctx, bookingPath(id, "/cancel"), req)
}

func (c *BookingClient) Complete(ctx context.Context, id string, req *model.CompleteRequest) (*Response, error) {
	return c.httpClient.POST(ctx, bookingPath(id, "/complete"), req)
}

func (c *BookingClient) UpdatePayment(ctx context.Context, id string, req *model.PaymentUpdate) (*Response, error) {
	return c.httpClient.PATCH(ctx, bookingPath(id, "/payment"), req)
}

func (c *BookingClient) DecodeBooking(resp *Response) (*model.Booking, error) {
	var wrapper struct {
		Data json.RawMessage `json:"data"`
	}

	if err := json.Unmarshal(resp.Body, &wrapper); err != nil {
		return nil, fmt.Errorf("could not decode booking wrapper: %s: %w", resp, err)
	}

	var booking model.Booking
	if err := json.Unmarshal(wrapper.Data, &booking); err != nil {
		return nil, fmt.Errorf("could not decode booking json: %s: %w", resp, err)
	}

	return &booking, nil
}
