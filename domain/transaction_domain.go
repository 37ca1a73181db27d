package domain

import "errors"

var (
	MessageFailedCheckout = "Missing data"
	ReceiptTitle          = "Durian App Receipt"
	ReceiptSubject        = "Your DurianApp Order Receipt"
	ReceiptFilename       = "receipt.pdf"
	CurrencySymbol        = "₱"

	ErrMissingCheckoutData = errors.New("Missing data")
	ErrReceiptRender       = errors.New("failed to render receipt")
	ErrReceiptSend         = errors.New("failed to send receipt")
)

type (
	CheckoutItem struct {
		Name     string  `json:"name" validate:"required"`
		Price    float64 `json:"price"`
		Quantity int     `json:"quantity"`
	}

	CheckoutRequest struct {
		Email string         `json:"email" validate:"required"`
		Items []CheckoutItem `json:"items" validate:"required,min=1,dive"`
		Total *float64       `json:"total" validate:"required"`
	}

	CheckoutResponse struct {
		Success       bool    `json:"success"`
		TransactionID string  `json:"transaction_id"`
		Amount        float64 `json:"amount"`
		Email         string  `json:"email"`
	}
)

func (i CheckoutItem) LineTotal() float64 {
	return i.Price * float64(i.Quantity)
}
