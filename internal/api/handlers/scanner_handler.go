package handlers

import (
	"Durian-Scanner/domain"
	"Durian-Scanner/internal/api/presenters"
	"Durian-Scanner/pkg/scan"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
)

const HeaderUserID = "X-User-Id"

type (
	ScannerHandler interface {
		Detect(c *fiber.Ctx) error
		ClassifyDisease(c *fiber.Ctx) error
		Health(c *fiber.Ctx) error
		Test(c *fiber.Ctx) error
		GetHistory(c *fiber.Ctx) error
		GetScan(c *fiber.Ctx) error
		DeleteScan(c *fiber.Ctx) error
	}

	scannerHandler struct {
		scanService scan.ScanService
	}
)

func NewScannerHandler(scanService scan.ScanService) ScannerHandler {
	return &scannerHandler{
		scanService: scanService,
	}
}

func (h *scannerHandler) Detect(c *fiber.Ctx) error {
	image, err := c.FormFile("image")
	if err != nil {
		// an image part sent with an empty filename is parsed as a plain field
		if form, formErr := c.MultipartForm(); formErr == nil && len(form.Value["image"]) > 0 {
			return presenters.Failure(c,
				domain.NewError(domain.KindInvalidName, domain.ErrNoFileSelected, domain.MessageUploadImage), "")
		}
		return presenters.Failure(c,
			domain.NewError(domain.KindMissingInput, domain.ErrNoImageProvided, domain.MessageUploadImage), "")
	}

	userID := c.FormValue("user_id")
	if userID == "" {
		userID = c.Get(HeaderUserID)
	}
	saveToHistory := strings.ToLower(c.FormValue("save_to_history", "true")) == "true"

	res, err := h.scanService.Detect(c.Context(), image, userID, saveToHistory)
	if err != nil {
		return presenters.Failure(c, err, domain.MessageFailedProcessRequest)
	}

	if !res.Success {
		return presenters.JSON(c, fiber.StatusInternalServerError, res)
	}
	return presenters.JSON(c, fiber.StatusOK, res)
}

func (h *scannerHandler) ClassifyDisease(c *fiber.Ctx) error {
	return presenters.Failure(c,
		domain.NewError(domain.KindNotImplemented, domain.ErrNotImplemented, domain.MessageDiseaseComing), "")
}

func (h *scannerHandler) Health(c *fiber.Ctx) error {
	return presenters.JSON(c, fiber.StatusOK, h.scanService.Health(c.Context()))
}

func (h *scannerHandler) Test(c *fiber.Ctx) error {
	return presenters.JSON(c, fiber.StatusOK, h.scanService.Test(c.Context()))
}

func (h *scannerHandler) GetHistory(c *fiber.Ctx) error {
	userID := c.Params("user_id")

	limit, err := strconv.Atoi(c.Query("limit", strconv.Itoa(domain.DefaultHistoryLimit)))
	if err != nil || limit < 1 {
		limit = domain.DefaultHistoryLimit
	}

	skip, err := strconv.Atoi(c.Query("skip", strconv.Itoa(domain.DefaultHistorySkip)))
	if err != nil || skip < 0 {
		skip = domain.DefaultHistorySkip
	}

	scans, err := h.scanService.GetScanHistory(c.Context(), userID, limit, skip)
	if err != nil {
		return presenters.Failure(c, err, domain.MessageFailedGetHistory)
	}

	return presenters.JSON(c, fiber.StatusOK, domain.ScanHistoryResponse{
		Success: true,
		Scans:   scans,
		Count:   len(scans),
		Limit:   limit,
		Skip:    skip,
	})
}

func (h *scannerHandler) GetScan(c *fiber.Ctx) error {
	res, err := h.scanService.GetScan(c.Context(), c.Params("scan_id"))
	if err != nil {
		return presenters.Failure(c, err, domain.MessageFailedProcessRequest)
	}

	return presenters.JSON(c, fiber.StatusOK, domain.SingleScanResponse{Success: true, Scan: res})
}

func (h *scannerHandler) DeleteScan(c *fiber.Ctx) error {
	err := h.scanService.DeleteScan(c.Context(), c.Params("scan_id"), c.Get(HeaderUserID))
	if err != nil {
		return presenters.Failure(c, err, domain.MessageFailedProcessRequest)
	}

	return presenters.JSON(c, fiber.StatusOK, domain.MessageResponse{Success: true, Message: domain.MessageScanDeleted})
}
