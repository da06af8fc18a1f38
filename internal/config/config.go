package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// DefaultMaxDecodePixels matches the decompression bomb limit of common image
// libraries (about 179 megapixels).
const DefaultMaxDecodePixels = 178956970

type Config struct {
	Port                int
	Debug               bool
	ModelPath           string
	ConfigPath          string  // Optional network description for gocv.ReadNet
	ConfidenceThreshold float64 // Minimum score for a detection
	NMSThreshold        float64 // IoU above which overlapping boxes are suppressed
	ModelInputSize      int     // Square input side of the network
	MaxImageSize        int     // Longer side bound of the canonical image
	MaxDecodePixels     int64   // Uploads declaring more pixels are rejected before decoding
	PDFDPI              float64
	MaxUploadBytes      int64
	DetectorWorkers     int // Number of model handles loaded side by side
	LogDirectory        string
	LiveFeed            bool
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when it exists; real environment variables win.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:                getEnvAsInt("PORT", 5000),
		Debug:               getEnvAsBool("DEBUG", false),
		ModelPath:           getEnv("MODEL_PATH", "best.onnx"),
		ConfigPath:          getEnv("MODEL_CONFIG_PATH", ""),
		ConfidenceThreshold: getEnvAsFloat("CONFIDENCE_THRESHOLD", 0.3),
		NMSThreshold:        getEnvAsFloat("NMS_THRESHOLD", 0.45),
		ModelInputSize:      getEnvAsInt("MODEL_INPUT_SIZE", 640),
		MaxImageSize:        getEnvAsInt("MAX_IMAGE_SIZE", 4096),
		MaxDecodePixels:     getEnvAsInt64("MAX_DECODE_PIXELS", DefaultMaxDecodePixels),
		PDFDPI:              getEnvAsFloat("PDF_DPI", 300),
		MaxUploadBytes:      getEnvAsInt64("MAX_UPLOAD_MB", 50) << 20,
		DetectorWorkers:     getEnvAsInt("DETECTOR_WORKERS", 1),
		LogDirectory:        getEnv("LOG_DIR", ""),
		LiveFeed:            getEnvAsBool("LIVE_FEED", true),
	}
}

// Validate reports the first setting that cannot be served.
func (c *Config) Validate() error {
	switch {
	case c.ModelPath == "":
		return fmt.Errorf("MODEL_PATH must not be empty")
	case c.ConfidenceThreshold < 0 || c.ConfidenceThreshold > 1:
		return fmt.Errorf("CONFIDENCE_THRESHOLD must be within [0,1], got %v", c.ConfidenceThreshold)
	case c.NMSThreshold < 0 || c.NMSThreshold > 1:
		return fmt.Errorf("NMS_THRESHOLD must be within [0,1], got %v", c.NMSThreshold)
	case c.ModelInputSize <= 0:
		return fmt.Errorf("MODEL_INPUT_SIZE must be positive, got %d", c.ModelInputSize)
	case c.MaxImageSize <= 0:
		return fmt.Errorf("MAX_IMAGE_SIZE must be positive, got %d", c.MaxImageSize)
	case c.MaxDecodePixels <= 0:
		return fmt.Errorf("MAX_DECODE_PIXELS must be positive, got %d", c.MaxDecodePixels)
	case c.PDFDPI <= 0:
		return fmt.Errorf("PDF_DPI must be positive, got %v", c.PDFDPI)
	case c.MaxUploadBytes <= 0:
		return fmt.Errorf("MAX_UPLOAD_MB must be positive")
	case c.DetectorWorkers <= 0:
		return fmt.Errorf("DETECTOR_WORKERS must be positive, got %d", c.DetectorWorkers)
	case c.Port <= 0 || c.Port > 65535:
		return fmt.Errorf("PORT out of range: %d", c.Port)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getEnvAsBool treats only a case-insensitive "true" as true.
func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.EqualFold(strings.TrimSpace(value), "true")
	}
	return defaultValue
}
