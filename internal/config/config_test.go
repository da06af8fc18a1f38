package config

import "testing"

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "DEBUG", "MODEL_PATH", "MODEL_CONFIG_PATH", "CONFIDENCE_THRESHOLD",
		"NMS_THRESHOLD", "MODEL_INPUT_SIZE", "MAX_IMAGE_SIZE", "MAX_DECODE_PIXELS", "PDF_DPI", "MAX_UPLOAD_MB",
		"DETECTOR_WORKERS", "LOG_DIR", "LIVE_FEED",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()

	if cfg.Port != 5000 {
		t.Errorf("expected port 5000, got %d", cfg.Port)
	}
	if cfg.ConfidenceThreshold != 0.3 {
		t.Errorf("expected threshold 0.3, got %v", cfg.ConfidenceThreshold)
	}
	if cfg.MaxImageSize != 4096 {
		t.Errorf("expected max image size 4096, got %d", cfg.MaxImageSize)
	}
	if cfg.PDFDPI != 300 {
		t.Errorf("expected 300 dpi, got %v", cfg.PDFDPI)
	}
	if cfg.MaxDecodePixels != 178956970 {
		t.Errorf("expected decode pixel limit 178956970, got %d", cfg.MaxDecodePixels)
	}
	if cfg.MaxUploadBytes != 50<<20 {
		t.Errorf("expected 50MB upload limit, got %d", cfg.MaxUploadBytes)
	}
	if cfg.Debug {
		t.Error("debug should default to false")
	}
	if !cfg.LiveFeed {
		t.Error("live feed should default to true")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("PORT", "8081")
	t.Setenv("DEBUG", "TRUE")
	t.Setenv("MODEL_PATH", "/models/docs.onnx")
	t.Setenv("CONFIDENCE_THRESHOLD", "0.55")
	t.Setenv("MAX_IMAGE_SIZE", "2048")
	t.Setenv("DETECTOR_WORKERS", "3")
	t.Setenv("LIVE_FEED", "false")

	cfg := Load()

	if cfg.Port != 8081 {
		t.Errorf("expected port 8081, got %d", cfg.Port)
	}
	if !cfg.Debug {
		t.Error("expected debug enabled for TRUE")
	}
	if cfg.ModelPath != "/models/docs.onnx" {
		t.Errorf("unexpected model path %s", cfg.ModelPath)
	}
	if cfg.ConfidenceThreshold != 0.55 {
		t.Errorf("expected threshold 0.55, got %v", cfg.ConfidenceThreshold)
	}
	if cfg.MaxImageSize != 2048 {
		t.Errorf("expected 2048, got %d", cfg.MaxImageSize)
	}
	if cfg.DetectorWorkers != 3 {
		t.Errorf("expected 3 workers, got %d", cfg.DetectorWorkers)
	}
	if cfg.LiveFeed {
		t.Error("expected live feed disabled")
	}
}

func TestLoad_InvalidNumbersFallBack(t *testing.T) {
	t.Setenv("PORT", "abc")
	t.Setenv("CONFIDENCE_THRESHOLD", "high")

	cfg := Load()
	if cfg.Port != 5000 {
		t.Errorf("expected fallback port 5000, got %d", cfg.Port)
	}
	if cfg.ConfidenceThreshold != 0.3 {
		t.Errorf("expected fallback threshold 0.3, got %v", cfg.ConfidenceThreshold)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Port: 5000, ModelPath: "best.onnx", ConfidenceThreshold: 0.3, NMSThreshold: 0.45,
			ModelInputSize: 640, MaxImageSize: 4096, PDFDPI: 300, MaxUploadBytes: 1 << 20,
			DetectorWorkers: 1, MaxDecodePixels: DefaultMaxDecodePixels,
		}
	}

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"threshold above one", func(c *Config) { c.ConfidenceThreshold = 1.5 }},
		{"negative threshold", func(c *Config) { c.ConfidenceThreshold = -0.1 }},
		{"zero max size", func(c *Config) { c.MaxImageSize = 0 }},
		{"zero decode pixel limit", func(c *Config) { c.MaxDecodePixels = 0 }},
		{"zero workers", func(c *Config) { c.DetectorWorkers = 0 }},
		{"empty model path", func(c *Config) { c.ModelPath = "" }},
		{"port out of range", func(c *Config) { c.Port = 70000 }},
	}

	if err := valid().Validate(); err != nil {
		t.Fatalf("baseline config should validate: %v", err)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
