package payment

import (
	"context"
	"errors"
	"math"
	"strings"

	midtrans "github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"
)

// CheckoutRequest describes a single-item checkout.
type CheckoutRequest struct {
	OrderID       string
	Amount        float64
	ItemName      string
	Category      string
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
}

// Checkout is the gateway's answer to a checkout request.
type Checkout struct {
	Token       string
	RedirectURL string
}

// Gateway creates hosted checkout sessions.
type Gateway interface {
	CreateCheckout(ctx context.Context, req CheckoutRequest) (*Checkout, error)
}

type snapClient interface {
	CreateTransaction(req *snap.Request) (*snap.Response, *midtrans.Error)
}

// MidtransGateway issues Snap tokens.
type MidtransGateway struct {
	client snapClient
}

// NewMidtransGateway configures a Snap client for sandbox or production.
func NewMidtransGateway(serverKey string, production bool) *MidtransGateway {
	env := midtrans.Sandbox
	if production {
		env = midtrans.Production
	}
	var client snap.Client
	client.New(serverKey, env)
	return &MidtransGateway{client: &client}
}

// CreateCheckout requests a Snap token for the order.
func (g *MidtransGateway) CreateCheckout(_ context.Context, req CheckoutRequest) (*Checkout, error) {
	gross := int64(math.Round(req.Amount))
	if gross <= 0 {
		return nil, errors.New("payment amount must be positive")
	}
	if req.OrderID == "" {
		return nil, errors.New("order id is required")
	}

	first, last := splitName(req.CustomerName)
	category := req.Category
	if category == "" {
		category = "TUTORING"
	}
	snapReq := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  req.OrderID,
			GrossAmt: gross,
		},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: first,
			LName: last,
			Email: req.CustomerEmail,
			Phone: req.CustomerPhone,
		},
		Items: &[]midtrans.ItemDetails{
			{
				ID:       truncate(req.OrderID, 50),
				Price:    gross,
				Qty:      1,
				Name:     truncate(defaultString(req.ItemName, "Tutoring payment"), 50),
				Category: category,
			},
		},
	}

	resp, mErr := g.client.CreateTransaction(snapReq)
	if mErr != nil {
		return nil, mErr
	}
	if resp == nil || resp.Token == "" {
		return nil, errors.New("midtrans returned an empty token")
	}
	return &Checkout{Token: resp.Token, RedirectURL: resp.RedirectURL}, nil
}

func splitName(full string) (string, string) {
	parts := strings.Fields(full)
	if len(parts) == 0 {
		return "", ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	return s[:n]
}

func defaultString(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
