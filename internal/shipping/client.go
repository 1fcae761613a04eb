// Package shipping quotes carrier prices through the external rate API.
package shipping

import (
	"context"
	"fmt"
	"math"
	"time"

	"storefront/internal/service"

	"github.com/go-resty/resty/v2"
)

const requestTimeout = 10 * time.Second

type Client struct {
	http      *resty.Client
	originZip string
}

func NewClient(baseURL, apiToken, originZip string) *Client {
	c := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(requestTimeout).
		SetAuthToken(apiToken).
		SetHeader("Content-Type", "application/json")
	return &Client{http: c, originZip: originZip}
}

type quoteRequest struct {
	From     zipPayload     `json:"from"`
	To       zipPayload     `json:"to"`
	Packages []packageEntry `json:"packages"`
}

type zipPayload struct {
	PostalCode string `json:"postal_code"`
}

type packageEntry struct {
	Quantity int `json:"quantity"`
}

type quoteOption struct {
	Name         string  `json:"name"`
	Price        float64 `json:"price"`
	DeliveryDays int     `json:"delivery_time"`
	Error        string  `json:"error,omitempty"`
}

func (c *Client) Quote(ctx context.Context, destinationZip string, items int) (*service.ShippingQuote, error) {
	if items <= 0 {
		items = 1
	}

	var options []quoteOption
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(quoteRequest{
			From:     zipPayload{PostalCode: c.originZip},
			To:       zipPayload{PostalCode: destinationZip},
			Packages: []packageEntry{{Quantity: items}},
		}).
		SetResult(&options).
		Post("/v2/shipment/calculate")
	if err != nil {
		return nil, fmt.Errorf("shipping quote: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("shipping quote: carrier api returned %s", resp.Status())
	}

	// cheapest valid option wins
	var best *service.ShippingQuote
	for _, opt := range options {
		if opt.Error != "" || opt.Price <= 0 {
			continue
		}
		feeCents := int64(math.Round(opt.Price * 100))
		if best == nil || feeCents < best.FeeCents {
			best = &service.ShippingQuote{FeeCents: feeCents, DeliveryDays: opt.DeliveryDays}
		}
	}
	if best == nil {
		return nil, fmt.Errorf("shipping quote: no carrier serves destination %s", destinationZip)
	}
	return best, nil
}
