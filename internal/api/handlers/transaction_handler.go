package handlers

import (
	"Durian-Scanner/domain"
	"Durian-Scanner/internal/api/presenters"
	"Durian-Scanner/pkg/transaction"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type (
	TransactionHandler interface {
		Checkout(c *fiber.Ctx) error
	}

	transactionHandler struct {
		transactionService transaction.TransactionService
		validator          *validator.Validate
	}
)

func NewTransactionHandler(transactionService transaction.TransactionService, validator *validator.Validate) TransactionHandler {
	return &transactionHandler{
		transactionService: transactionService,
		validator:          validator,
	}
}

func (h *transactionHandler) Checkout(c *fiber.Ctx) error {
	req := new(domain.CheckoutRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.Failure(c,
			domain.NewError(domain.KindMissingInput, err, domain.MessageFailedBodyRequest), "")
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.Failure(c,
			domain.NewError(domain.KindMissingInput, domain.ErrMissingCheckoutData, domain.MessageFailedCheckout), "")
	}

	res, err := h.transactionService.Checkout(c.Context(), *req)
	if err != nil {
		if domain.KindOf(err) == domain.KindInternal {
			return presenters.JSON(c, fiber.StatusInternalServerError, domain.MessageResponse{
				Success: false,
				Message: domain.MessageServerError,
			})
		}
		return presenters.Failure(c, err, domain.MessageFailedCheckout)
	}

	return presenters.JSON(c, fiber.StatusOK, res)
}
