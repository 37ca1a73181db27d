package utils

import (
	"os"
	"strconv"

	"github.com/gofiber/fiber/v2/log"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

type Config struct {
	// Server configuration
	Port          string `yaml:"PORT"`
	RateLimitMax  int    `yaml:"RATE_LIMIT_MAX"`
	LogFile       string `yaml:"LOG_FILE"`
	CacheSize     int    `yaml:"CACHE_SIZE"`
	CacheTTLInSec int    `yaml:"CACHE_TTL_SECONDS"`

	// Database configuration
	DBUser     string `yaml:"DB_USER"`
	DBName     string `yaml:"DB_NAME"`
	DBPassword string `yaml:"DB_PASSWORD"`
	DBPort     string `yaml:"DB_PORT"`
	DBHost     string `yaml:"DB_HOST"`

	// Mailing configuration
	SMTPHost         string `yaml:"SMTP_HOST"`
	SMTPPort         string `yaml:"SMTP_PORT"`
	SMTPSenderName   string `yaml:"SMTP_SENDER_NAME"`
	SMTPAuthEmail    string `yaml:"SMTP_AUTH_EMAIL"`
	SMTPAuthPassword string `yaml:"SMTP_AUTH_PASSWORD"`

	// AWS S3 configuration
	AWSS3Bucket  string `yaml:"AWS_S3_BUCKET"`
	AWSS3Region  string `yaml:"AWS_S3_REGION"`
	AWSAccessKey string `yaml:"AWS_ACCESS_KEY"`
	AWSSecretKey string `yaml:"AWS_SECRET_KEY"`

	// Detection model service
	DetectorURL   string `yaml:"DETECTOR_URL"`
	DetectorModel string `yaml:"DETECTOR_MODEL"`

	// Receipt rendering
	ReceiptFontPath string `yaml:"RECEIPT_FONT_PATH"`
}

var config = defaultConfig()

func defaultConfig() Config {
	return Config{
		Port:          "5000",
		RateLimitMax:  10,
		LogFile:       "./logs/app.log",
		CacheSize:     256,
		CacheTTLInSec: 300,
		DetectorModel: "durian-yolov8.pt",
	}
}

// LoadConfig reads config.yaml, then lets the process environment (and an
// optional .env file) override individual keys.
func LoadConfig() {
	if err := godotenv.Load(); err != nil {
		log.Debugf("no .env file loaded: %v", err)
	}

	file, err := os.ReadFile("config.yaml")
	if err != nil {
		log.Warnf("Error reading YAML file: %s", err)
	} else if err := yaml.Unmarshal(file, &config); err != nil {
		log.Errorf("Error parsing YAML file: %s", err)
	}

	overrideFromEnv(&config)
}

func overrideFromEnv(c *Config) {
	stringKeys := map[string]*string{
		"PORT":               &c.Port,
		"LOG_FILE":           &c.LogFile,
		"DB_USER":            &c.DBUser,
		"DB_NAME":            &c.DBName,
		"DB_PASSWORD":        &c.DBPassword,
		"DB_PORT":            &c.DBPort,
		"DB_HOST":            &c.DBHost,
		"SMTP_HOST":          &c.SMTPHost,
		"SMTP_PORT":          &c.SMTPPort,
		"SMTP_SENDER_NAME":   &c.SMTPSenderName,
		"SMTP_AUTH_EMAIL":    &c.SMTPAuthEmail,
		"SMTP_AUTH_PASSWORD": &c.SMTPAuthPassword,
		"AWS_S3_BUCKET":      &c.AWSS3Bucket,
		"AWS_S3_REGION":      &c.AWSS3Region,
		"AWS_ACCESS_KEY":     &c.AWSAccessKey,
		"AWS_SECRET_KEY":     &c.AWSSecretKey,
		"DETECTOR_URL":       &c.DetectorURL,
		"DETECTOR_MODEL":     &c.DetectorModel,
		"RECEIPT_FONT_PATH":  &c.ReceiptFontPath,
	}
	for key, target := range stringKeys {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*target = v
		}
	}

	intKeys := map[string]*int{
		"RATE_LIMIT_MAX":    &c.RateLimitMax,
		"CACHE_SIZE":        &c.CacheSize,
		"CACHE_TTL_SECONDS": &c.CacheTTLInSec,
	}
	for key, target := range intKeys {
		v, ok := os.LookupEnv(key)
		if !ok || v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			log.Warnf("ignoring %s=%q: %v", key, v, err)
			continue
		}
		*target = n
	}
}

// GetAppConfig returns a copy of the loaded configuration.
func GetAppConfig() Config {
	return config
}

func GetConfig(key string) string {
	switch key {
	case "PORT":
		return config.Port
	case "LOG_FILE":
		return config.LogFile
	case "DB_USER":
		return config.DBUser
	case "DB_NAME":
		return config.DBName
	case "DB_PASSWORD":
		return config.DBPassword
	case "DB_PORT":
		return config.DBPort
	case "DB_HOST":
		return config.DBHost
	case "SMTP_HOST":
		return config.SMTPHost
	case "SMTP_PORT":
		return config.SMTPPort
	case "SMTP_SENDER_NAME":
		return config.SMTPSenderName
	case "SMTP_AUTH_EMAIL":
		return config.SMTPAuthEmail
	case "SMTP_AUTH_PASSWORD":
		return config.SMTPAuthPassword
	case "AWS_S3_BUCKET":
		return config.AWSS3Bucket
	case "AWS_S3_REGION":
		return config.AWSS3Region
	case "AWS_ACCESS_KEY":
		return config.AWSAccessKey
	case "AWS_SECRET_KEY":
		return config.AWSSecretKey
	case "DETECTOR_URL":
		return config.DetectorURL
	case "DETECTOR_MODEL":
		return config.DetectorModel
	case "RECEIPT_FONT_PATH":
		return config.ReceiptFontPath
	default:
		return ""
	}
}
