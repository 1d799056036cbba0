package services

import (
	"time"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"

	"github.com/yeremiapane/bakery-app/models"
)

// CheckoutSession -> hasil pembuatan sesi pembayaran di gateway
type CheckoutSession struct {
	Token       string `json:"token"`
	RedirectURL string `json:"redirect_url"`
}

// CheckoutGateway -> kontrak ke payment gateway eksternal. Core hanya
// memakai interface ini; pembuatan sesi checkout sepenuhnya urusan
// collaborator di baliknya.
type CheckoutGateway interface {
	CreateSession(order *models.Order) (*CheckoutSession, error)
}

// MidtransGateway -> implementasi CheckoutGateway di atas Midtrans Snap
type MidtransGateway struct {
	client snap.Client
}

func NewMidtransGateway(serverKey string, production bool) *MidtransGateway {
	env := midtrans.Sandbox
	if production {
		env = midtrans.Production
	}

	gw := &MidtransGateway{}
	gw.client.New(serverKey, env)
	return gw
}

func (g *MidtransGateway) CreateSession(order *models.Order) (*CheckoutSession, error) {
	req := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			// OrderID midtrans harus unik; pakai nomor order + timestamp
			OrderID:  order.OrderNumber + "-" + time.Now().Format("150405"),
			GrossAmt: int64(order.TotalAmount),
		},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: order.Client.Name,
			Phone: order.Client.Phone,
			Email: order.Client.Email,
		},
	}

	resp, snapErr := g.client.CreateTransaction(req)
	if snapErr != nil {
		return nil, snapErr
	}

	return &CheckoutSession{
		Token:       resp.Token,
		RedirectURL: resp.RedirectURL,
	}, nil
}
