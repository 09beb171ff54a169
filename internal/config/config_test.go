package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ServerPort != "4000" {
		t.Fatalf("expected default port 4000, got %q", cfg.ServerPort)
	}
	if cfg.AnalysisBatchSize != 10 {
		t.Fatalf("expected default batch size 10, got %d", cfg.AnalysisBatchSize)
	}
	if cfg.DefaultSettings.UsableBatteryCapacityKwh != 100 {
		t.Fatalf("expected default capacity 100, got %v", cfg.DefaultSettings.UsableBatteryCapacityKwh)
	}
	if cfg.DefaultSettings.TripMinBreakMinutes != 3 {
		t.Fatalf("expected default trip break 3, got %v", cfg.DefaultSettings.TripMinBreakMinutes)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("DEBUG", "true")
	t.Setenv("ANALYSIS_BATCH_SIZE", "5")
	t.Setenv("BATTERY_CAPACITY_KWH", "75.5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ServerPort != "8080" || !cfg.Debug {
		t.Fatalf("unexpected server config %+v", cfg)
	}
	if cfg.AnalysisBatchSize != 5 {
		t.Fatalf("expected batch size 5, got %d", cfg.AnalysisBatchSize)
	}
	if cfg.DefaultSettings.UsableBatteryCapacityKwh != 75.5 {
		t.Fatalf("expected capacity 75.5, got %v", cfg.DefaultSettings.UsableBatteryCapacityKwh)
	}
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("ANALYSIS_BATCH_SIZE", "lots")
	t.Setenv("DEBUG", "sure")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.AnalysisBatchSize != 10 || cfg.Debug {
		t.Fatalf("expected malformed values to fall back to defaults, got %+v", cfg)
	}
}
