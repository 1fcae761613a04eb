// Package checkout models the three-step checkout wizard as an explicit
// state machine, constructed fresh per session and passed to each step,
// with no global state. It is UI-agnostic: the caller renders whatever the
// machine says, the machine decides what is allowed.
package checkout

import (
	"context"
	"errors"
	"time"

	"storefront/internal/models"
	"storefront/internal/service"

	"github.com/google/uuid"
)

type Step int

const (
	StepAddress Step = iota + 1
	StepPayment
	StepConfirmation
)

type State string

const (
	StateCollecting      State = "COLLECTING"
	StateAwaitingPayment State = "AWAITING_PAYMENT"
	StateSettled         State = "SETTLED"
	StateExpired         State = "EXPIRED"
)

var (
	ErrStepNotVisited    = errors.New("cannot skip ahead to an unvisited step")
	ErrAtFirstStep       = errors.New("already at the first step")
	ErrAtLastStep        = errors.New("already at the confirmation step")
	ErrNotAwaiting       = errors.New("no pending order to pay")
	ErrWindowExpired     = errors.New("payment window expired")
	ErrNoBillingAddress  = errors.New("invalid billing address")
	ErrAlreadySettled    = errors.New("checkout already settled")
	ErrWrongMethodForPay = errors.New("operation does not match the chosen payment method")
)

// OrderPlacer runs the server-side order-placement transaction.
type OrderPlacer interface {
	PlaceOrder(ctx context.Context, in service.PlaceOrderInput) (*service.PlaceOrderResult, error)
}

// CardCharger executes a card charge for an already-created pending order.
type CardCharger interface {
	ChargeCard(ctx context.Context, orderID uuid.UUID, in service.CardChargeInput) (*service.CardChargeOutcome, error)
}

// Tokenizer exchanges raw card details for a gateway token. In the real
// storefront this is the gateway's client SDK; raw numbers never reach the
// order service.
type Tokenizer interface {
	Tokenize(ctx context.Context, card CardDetails) (string, error)
}

// StatusChecker is polled while waiting for PIX settlement.
type StatusChecker interface {
	ConfirmPayment(ctx context.Context, orderID uuid.UUID) (models.OrderStatus, error)
}

type CardDetails struct {
	Number     string
	HolderName string
	ExpMonth   int
	ExpYear    int
	CVV        string
}

type Machine struct {
	placer  OrderPlacer
	charger CardCharger
	checker StatusChecker
	now     func() time.Time

	step    Step
	visited map[Step]bool
	state   State

	// step 1
	Items    []service.PlaceOrderItem
	Delivery Address
	Payer    service.Payer
	// ShippingFeeCents == 0 means no quote selected yet.
	ShippingFeeCents int64

	// step 2
	Method                models.PaymentMethod
	BillingSameAsDelivery bool
	Billing               Address
	Card                  CardDetails
	SavedCardID           string
	Installments          int

	// step 3
	orderID        uuid.UUID
	orderCreatedAt time.Time
	pixQRCode      string
	pixQRCode64    string
	declineDetail  string
}

func NewMachine(placer OrderPlacer, charger CardCharger, checker StatusChecker) *Machine {
	return &Machine{
		placer:  placer,
		charger: charger,
		checker: checker,
		now:     time.Now,
		step:    StepAddress,
		visited: map[Step]bool{StepAddress: true},
		state:   StateCollecting,
	}
}

func (m *Machine) Step() Step            { return m.step }
func (m *Machine) State() State          { return m.state }
func (m *Machine) OrderID() uuid.UUID    { return m.orderID }
func (m *Machine) PixQRCode() string     { return m.pixQRCode }
func (m *Machine) DeclineDetail() string { return m.declineDetail }

// Deadline anchors the payment window on the order's creation timestamp as
// reported by the server, so client clock drift does not shrink the window.
func (m *Machine) Deadline() time.Time {
	return m.orderCreatedAt.Add(service.PaymentWindow)
}

func (m *Machine) validateAddressStep() error {
	if err := ValidateAddress(m.Delivery); err != nil {
		return err
	}
	if err := ValidateTaxID(m.Payer.TaxID); err != nil {
		return err
	}
	if m.ShippingFeeCents <= 0 {
		return ErrNoShippingSelected
	}
	return nil
}

func (m *Machine) billingAddress() (Address, error) {
	if m.BillingSameAsDelivery {
		return m.Delivery, nil
	}
	if err := ValidateAddress(m.Billing); err != nil {
		return Address{}, ErrNoBillingAddress
	}
	return m.Billing, nil
}

func (m *Machine) validatePaymentStep() error {
	switch m.Method {
	case models.PaymentMethodPix:
		_, err := m.billingAddress()
		return err
	case models.PaymentMethodCard:
		if _, err := m.billingAddress(); err != nil {
			return err
		}
		if m.SavedCardID != "" {
			return nil
		}
		if !Luhn(m.Card.Number) {
			return ErrInvalidCardNumber
		}
		if err := validateCardHolder(m.Card.HolderName); err != nil {
			return err
		}
		if err := validateExpiry(m.Card.ExpMonth, m.Card.ExpYear, m.now()); err != nil {
			return err
		}
		return validateCVV(m.Card.CVV)
	default:
		return service.ErrInvalidPaymentMethod
	}
}

// Next advances one step, gating on the current step's validation. Entering
// the confirmation step runs the order-placement transaction.
func (m *Machine) Next(ctx context.Context) error {
	switch m.step {
	case StepAddress:
		if err := m.validateAddressStep(); err != nil {
			return err
		}
		m.step = StepPayment
		m.visited[StepPayment] = true
		return nil

	case StepPayment:
		if err := m.validatePaymentStep(); err != nil {
			return err
		}
		res, err := m.placer.PlaceOrder(ctx, service.PlaceOrderInput{
			Items:          m.Items,
			PaymentMethod:  m.Method,
			DestinationZip: m.Delivery.Zip,
			Payer:          m.Payer,
		})
		if err != nil {
			// a committed order with a failed QR request still enters step 3;
			// anything else keeps the user on step 2
			if res == nil || !errors.Is(err, service.ErrPaymentGateway) {
				return err
			}
		}
		m.orderID = res.OrderID
		m.orderCreatedAt = res.CreatedAt
		m.pixQRCode = res.PixQRCode
		m.pixQRCode64 = res.PixQRCodeBase64
		m.state = StateAwaitingPayment
		m.step = StepConfirmation
		m.visited[StepConfirmation] = true
		return nil

	default:
		return ErrAtLastStep
	}
}

// Back moves to the previous step; only steps already visited are reachable.
func (m *Machine) Back() error {
	if m.step == StepAddress {
		return ErrAtFirstStep
	}
	prev := m.step - 1
	if !m.visited[prev] {
		return ErrStepNotVisited
	}
	m.step = prev
	return nil
}

// GoTo jumps to an arbitrary step, forward jumps only into visited steps.
func (m *Machine) GoTo(step Step) error {
	if step < StepAddress || step > StepConfirmation {
		return ErrStepNotVisited
	}
	if !m.visited[step] {
		return ErrStepNotVisited
	}
	m.step = step
	return nil
}

// ExecuteCardPayment tokenizes the card (unless a saved card was chosen) and
// charges the pending order. A decline keeps the machine on the confirmation
// step for retry, with the gateway's detail retained.
func (m *Machine) ExecuteCardPayment(ctx context.Context, tokenizer Tokenizer) error {
	if m.state == StateSettled {
		return ErrAlreadySettled
	}
	if m.state != StateAwaitingPayment || m.step != StepConfirmation {
		return ErrNotAwaiting
	}
	if m.Method != models.PaymentMethodCard {
		return ErrWrongMethodForPay
	}

	in := service.CardChargeInput{
		SavedCardID:  m.SavedCardID,
		Installments: m.Installments,
	}
	if m.SavedCardID == "" {
		token, err := tokenizer.Tokenize(ctx, m.Card)
		if err != nil {
			return err
		}
		in.CardToken = token
	}

	outcome, err := m.charger.ChargeCard(ctx, m.orderID, in)
	if err != nil {
		var declined *service.CardDeclinedError
		if errors.As(err, &declined) {
			m.declineDetail = declined.StatusDetail
			if m.declineDetail == "" {
				m.declineDetail = "contact your card issuer"
			}
			return err
		}
		return err
	}

	if outcome.Status == service.GatewayStatusApproved {
		m.state = StateSettled
	}
	return nil
}
