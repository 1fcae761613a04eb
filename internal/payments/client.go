// Package payments holds the HTTP client for the third-party payment
// processor (PIX charges, card charges, payment lookup).
package payments

import (
	"context"
	"fmt"
	"time"

	"storefront/internal/service"

	"github.com/go-resty/resty/v2"
)

const requestTimeout = 10 * time.Second

const idempotencyHeader = "X-Idempotency-Key"

type Client struct {
	http *resty.Client
}

func NewClient(baseURL, accessToken string) *Client {
	c := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(requestTimeout).
		SetAuthToken(accessToken).
		SetHeader("Content-Type", "application/json")
	return &Client{http: c}
}

type payerIdentification struct {
	Type   string `json:"type"`
	Number string `json:"number"`
}

type payerPayload struct {
	Email          string              `json:"email"`
	FirstName      string              `json:"first_name,omitempty"`
	Identification payerIdentification `json:"identification"`
}

type createPaymentRequest struct {
	TransactionAmount float64      `json:"transaction_amount"`
	PaymentMethodID   string       `json:"payment_method_id,omitempty"`
	Token             string       `json:"token,omitempty"`
	Installments      int          `json:"installments,omitempty"`
	ExternalReference string       `json:"external_reference"`
	Description       string       `json:"description,omitempty"`
	Payer             payerPayload `json:"payer"`
}

type transactionData struct {
	QRCode       string `json:"qr_code"`
	QRCodeBase64 string `json:"qr_code_base64"`
}

type pointOfInteraction struct {
	TransactionData transactionData `json:"transaction_data"`
}

type paymentResponse struct {
	ID                 int64               `json:"id"`
	Status             string              `json:"status"`
	StatusDetail       string              `json:"status_detail"`
	ExternalReference  string              `json:"external_reference"`
	PointOfInteraction *pointOfInteraction `json:"point_of_interaction,omitempty"`
}

func centsToAmount(cents int64) float64 {
	return float64(cents) / 100
}

func (c *Client) CreatePixCharge(ctx context.Context, in service.CreatePixChargeInput) (*service.PixCharge, error) {
	var out paymentResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader(idempotencyHeader, in.IdempotencyKey).
		SetBody(createPaymentRequest{
			TransactionAmount: centsToAmount(in.AmountCents),
			PaymentMethodID:   "pix",
			ExternalReference: in.ExternalReference,
			Payer: payerPayload{
				Email:     in.Payer.Email,
				FirstName: in.Payer.Name,
				Identification: payerIdentification{
					Type:   "CPF",
					Number: in.Payer.TaxID,
				},
			},
		}).
		SetResult(&out).
		Post("/v1/payments")
	if err != nil {
		return nil, fmt.Errorf("create pix charge: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("create pix charge: gateway returned %s: %s", resp.Status(), resp.String())
	}
	if out.PointOfInteraction == nil {
		return nil, fmt.Errorf("create pix charge: response missing qr payload")
	}

	return &service.PixCharge{
		PaymentID:    fmt.Sprintf("%d", out.ID),
		QRCode:       out.PointOfInteraction.TransactionData.QRCode,
		QRCodeBase64: out.PointOfInteraction.TransactionData.QRCodeBase64,
	}, nil
}

func (c *Client) CreateCardCharge(ctx context.Context, in service.CreateCardChargeInput) (*service.CardChargeResult, error) {
	token := in.CardToken
	if token == "" {
		token = in.SavedCardID
	}

	var out paymentResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader(idempotencyHeader, in.IdempotencyKey).
		SetBody(createPaymentRequest{
			TransactionAmount: centsToAmount(in.AmountCents),
			Token:             token,
			Installments:      in.Installments,
			ExternalReference: in.ExternalReference,
			Payer: payerPayload{
				Email:     in.Payer.Email,
				FirstName: in.Payer.Name,
				Identification: payerIdentification{
					Type:   "CPF",
					Number: in.Payer.TaxID,
				},
			},
		}).
		SetResult(&out).
		Post("/v1/payments")
	if err != nil {
		return nil, fmt.Errorf("create card charge: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("create card charge: gateway returned %s: %s", resp.Status(), resp.String())
	}

	return &service.CardChargeResult{
		PaymentID:    fmt.Sprintf("%d", out.ID),
		Status:       out.Status,
		StatusDetail: out.StatusDetail,
	}, nil
}

func (c *Client) GetPayment(ctx context.Context, paymentID string) (*service.PaymentInfo, error) {
	var out paymentResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		Get("/v1/payments/" + paymentID)
	if err != nil {
		return nil, fmt.Errorf("get payment: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("get payment: gateway returned %s: %s", resp.Status(), resp.String())
	}

	return &service.PaymentInfo{
		PaymentID:         fmt.Sprintf("%d", out.ID),
		Status:            out.Status,
		ExternalReference: out.ExternalReference,
	}, nil
}
