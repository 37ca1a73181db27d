package transaction

import (
	"Durian-Scanner/domain"
	"Durian-Scanner/internal/utils/mailing"
	"Durian-Scanner/internal/utils/receipt"
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var checkoutsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "durian_checkouts_total",
	Help: "Checkout attempts by outcome.",
}, []string{"outcome"})

type (
	TransactionService interface {
		Checkout(ctx context.Context, req domain.CheckoutRequest) (domain.CheckoutResponse, error)
	}

	transactionService struct {
		renderer receipt.Renderer
		mailer   mailing.Mailer
		newID    func() string
	}
)

func NewTransactionService(renderer receipt.Renderer, mailer mailing.Mailer) TransactionService {
	return &transactionService{
		renderer: renderer,
		mailer:   mailer,
		newID:    func() string { return uuid.New().String() },
	}
}

func (s *transactionService) Checkout(ctx context.Context, req domain.CheckoutRequest) (domain.CheckoutResponse, error) {
	if req.Email == "" || len(req.Items) == 0 || req.Total == nil {
		return domain.CheckoutResponse{}, domain.NewError(domain.KindMissingInput, domain.ErrMissingCheckoutData, domain.MessageFailedCheckout)
	}

	transactionID := s.newID()
	total := *req.Total

	pdf, err := s.renderer.Render(receipt.Build(req.Items, total, transactionID))
	if err != nil {
		checkoutsTotal.WithLabelValues("render_failed").Inc()
		log.Errorf("checkout %s: render receipt: %v", transactionID, err)
		return domain.CheckoutResponse{}, domain.NewError(domain.KindInternal, domain.ErrReceiptRender, domain.MessageServerError)
	}

	body := fmt.Sprintf("Thank you for your purchase! Your receipt (Transaction ID: %s) is attached.", transactionID)
	err = s.mailer.SendMail(req.Email, domain.ReceiptSubject, body, mailing.Attachment{
		Filename:    domain.ReceiptFilename,
		ContentType: "application/pdf",
		Data:        pdf,
	})
	if err != nil {
		checkoutsTotal.WithLabelValues("send_failed").Inc()
		log.Errorf("checkout %s: send receipt to %s: %v", transactionID, req.Email, err)
		return domain.CheckoutResponse{}, domain.NewError(domain.KindInternal, domain.ErrReceiptSend, domain.MessageServerError)
	}

	checkoutsTotal.WithLabelValues("sent").Inc()
	return domain.CheckoutResponse{
		Success:       true,
		TransactionID: transactionID,
		Amount:        total,
		Email:         req.Email,
	}, nil
}
