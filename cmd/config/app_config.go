package config

import (
	"Durian-Scanner/internal/api/handlers"
	"Durian-Scanner/internal/api/routes"
	"Durian-Scanner/internal/middleware"
	"Durian-Scanner/internal/utils"
	"Durian-Scanner/internal/utils/mailing"
	"Durian-Scanner/internal/utils/receipt"
	"Durian-Scanner/internal/utils/storage"
	"Durian-Scanner/pkg/analytics"
	"Durian-Scanner/pkg/detector"
	"Durian-Scanner/pkg/scan"
	"Durian-Scanner/pkg/transaction"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"gorm.io/gorm"
)

// bodyLimit sits above the upload cap so oversized images reach validation
// and get a descriptive error instead of a bare 413.
const bodyLimit = 64 * 1024 * 1024

func NewApp(db *gorm.DB) (*fiber.App, error) {
	utils.InitValidator()
	cfg := utils.GetAppConfig()
	app := fiber.New(fiber.Config{
		AppName:      "Durian Scanner API",
		BodyLimit:    bodyLimit,
		ErrorHandler: errorHandler,
		Immutable:    true,
	})
	middlewares := middleware.NewMiddleware()
	validator := utils.Validate

	// setting up logging and limiter
	err := os.MkdirAll(filepath.Dir(cfg.LogFile), os.ModePerm)
	if err != nil {
		log.Fatalf("error creating logs directory: %v", err)
	}
	file, err := os.OpenFile(
		cfg.LogFile,
		os.O_RDWR|os.O_CREATE|os.O_APPEND,
		0666,
	)
	if err != nil {
		log.Fatalf("error opening file: %v", err)
	}
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		TimeFormat: "2006-01-02 15:04:05",
		TimeZone:   "UTC",
		Output:     file,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        cfg.RateLimitMax,
		Expiration: 1 * time.Second,
	}))

	// utils
	s3 := storage.NewAwsS3()
	scanImages := storage.NewScanImageStore(s3)
	mailer := mailing.NewMailer(mailing.LoadMailConfig())
	renderer := receipt.NewRenderer(cfg.ReceiptFontPath)
	detectorClient := detector.NewDetectorClient(cfg.DetectorURL, cfg.DetectorModel, http.DefaultClient)
	colorClassifier := detector.NewColorClassifier()
	scanCache := scan.NewScanCache(cfg.CacheSize, time.Duration(cfg.CacheTTLInSec)*time.Second)

	// Repository
	scanRepository := scan.NewScanRepository(db)

	// Service
	scanService := scan.NewScanService(scanRepository, detectorClient, colorClassifier, scanImages, scanCache)
	analyticsService := analytics.NewAnalyticsService(scanRepository)
	transactionService := transaction.NewTransactionService(renderer, mailer)

	// Handler
	scannerHandler := handlers.NewScannerHandler(scanService)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService)
	transactionHandler := handlers.NewTransactionHandler(transactionService, validator)

	// routes
	routesConfig := routes.Config{
		App:                app,
		ScannerHandler:     scannerHandler,
		AnalyticsHandler:   analyticsHandler,
		TransactionHandler: transactionHandler,
		Middleware:         middlewares,
	}
	routesConfig.Setup()
	return app, nil
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if fe, ok := err.(*fiber.Error); ok {
		code = fe.Code
	}
	log.Errorf("%s %s: %v", c.Method(), c.Path(), err)
	return c.Status(code).JSON(fiber.Map{
		"success": false,
		"error":   err.Error(),
	})
}
