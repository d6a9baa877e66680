package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.Port)
	}
	if cfg.ClinicTimezone != "America/New_York" {
		t.Errorf("expected default clinic timezone America/New_York, got %s", cfg.ClinicTimezone)
	}
	if cfg.GridOpen != "09:00" || cfg.GridClose != "17:00" {
		t.Errorf("expected default grid window 09:00-17:00, got %s-%s", cfg.GridOpen, cfg.GridClose)
	}
	if cfg.MinLeadTime != 60*time.Minute {
		t.Errorf("expected default min lead time 60m, got %s", cfg.MinLeadTime)
	}
	if cfg.RollForwardDays != 14 {
		t.Errorf("expected default roll forward of 14 days, got %d", cfg.RollForwardDays)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("CLINIC_TIMEZONE", "America/Chicago")
	t.Setenv("MIN_LEAD_TIME", "30m")
	t.Setenv("ROLL_FORWARD_DAYS", "7")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")

	cfg := Load()

	if cfg.Port != "9999" {
		t.Errorf("expected port 9999, got %s", cfg.Port)
	}
	if cfg.ClinicTimezone != "America/Chicago" {
		t.Errorf("expected clinic timezone America/Chicago, got %s", cfg.ClinicTimezone)
	}
	if cfg.MinLeadTime != 30*time.Minute {
		t.Errorf("expected min lead time 30m, got %s", cfg.MinLeadTime)
	}
	if cfg.RollForwardDays != 7 {
		t.Errorf("expected roll forward of 7 days, got %d", cfg.RollForwardDays)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://b.example.com" {
		t.Errorf("unexpected CORS origins: %v", cfg.CORSAllowedOrigins)
	}
}

func TestLoadInvalidValuesFallBack(t *testing.T) {
	t.Setenv("ROLL_FORWARD_DAYS", "not-a-number")
	t.Setenv("MIN_LEAD_TIME", "soon")

	cfg := Load()

	if cfg.RollForwardDays != 14 {
		t.Errorf("expected fallback roll forward of 14 days, got %d", cfg.RollForwardDays)
	}
	if cfg.MinLeadTime != 60*time.Minute {
		t.Errorf("expected fallback min lead time 60m, got %s", cfg.MinLeadTime)
	}
}
