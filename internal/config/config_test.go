package config

import (
	"testing"
	"time"
)

func TestLoad_EmbeddedDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Ledger.KeyPrefix != "img:" {
		t.Errorf("expected ledger key prefix 'img:', got '%s'", cfg.Ledger.KeyPrefix)
	}
	if cfg.Ledger.ReservedTTL != 24*time.Hour {
		t.Errorf("expected reserved TTL 24h, got %s", cfg.Ledger.ReservedTTL)
	}
	if cfg.Ledger.ConfirmedTTL != 24*time.Hour {
		t.Errorf("expected confirmed TTL 24h, got %s", cfg.Ledger.ConfirmedTTL)
	}
	if cfg.Storage.PutExpiry != time.Hour {
		t.Errorf("expected put expiry 1h, got %s", cfg.Storage.PutExpiry)
	}
	if cfg.Queues.SelfieQueue != "selfie_queue" {
		t.Errorf("expected selfie queue name 'selfie_queue', got '%s'", cfg.Queues.SelfieQueue)
	}
	if cfg.Queues.EventPhotoQueue != "event_photo_queue" {
		t.Errorf("expected event photo queue name 'event_photo_queue', got '%s'", cfg.Queues.EventPhotoQueue)
	}
	if cfg.Reconciler.Interval <= 0 {
		t.Error("expected positive reconciler interval")
	}
	if cfg.Reconciler.StaleAfter <= 0 {
		t.Error("expected positive reconciler stale threshold")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("LEDGER_RESERVED_TTL", "600")
	t.Setenv("LEDGER_CONFIRMED_TTL", "0") // confirmed entries never expire
	t.Setenv("SELFIE_QUEUE", "selfie_queue_test")

	cfg := Load()

	if cfg.Ledger.ReservedTTL != 10*time.Minute {
		t.Errorf("expected reserved TTL 10m, got %s", cfg.Ledger.ReservedTTL)
	}
	if cfg.Ledger.ConfirmedTTL != 0 {
		t.Errorf("expected confirmed TTL 0 (no expiry), got %s", cfg.Ledger.ConfirmedTTL)
	}
	if cfg.Queues.SelfieQueue != "selfie_queue_test" {
		t.Errorf("expected overridden selfie queue name, got '%s'", cfg.Queues.SelfieQueue)
	}
}

func TestEnvSeconds_InvalidFallsBack(t *testing.T) {
	t.Setenv("LEDGER_RESERVED_TTL", "not-a-number")

	cfg := Load()

	if cfg.Ledger.ReservedTTL != 24*time.Hour {
		t.Errorf("expected fallback to default 24h, got %s", cfg.Ledger.ReservedTTL)
	}
}
