package tuning

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tuning.yaml")
	raw := []byte("currency:\n  use_symbol: false\n  name_plural: \"emeralds\"\nrate_limits:\n  list_max: 2\n")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	tun, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if tun.Currency.UseSymbol {
		t.Fatalf("use_symbol should be overridden to false")
	}
	if tun.Currency.NamePlural != "emeralds" {
		t.Fatalf("name_plural = %q", tun.Currency.NamePlural)
	}
	if tun.RateLimits.ListMax != 2 {
		t.Fatalf("list_max = %d", tun.RateLimits.ListMax)
	}
	// Untouched keys keep their defaults.
	if tun.Policy.SellTag != "FOR SALE" {
		t.Fatalf("sell_tag = %q", tun.Policy.SellTag)
	}
	if tun.TickRateHz != 5 {
		t.Fatalf("tick_rate_hz = %d", tun.TickRateHz)
	}
}

func TestLoadMissingFileKeepsDefaults(t *testing.T) {
	tun, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil {
		t.Fatalf("expected an error for a missing file")
	}
	if !os.IsNotExist(err) {
		t.Fatalf("want not-exist error, got %v", err)
	}
	if tun.Policy.SignHeader != "[RealEstate]" {
		t.Fatalf("defaults should still be returned, got %+v", tun)
	}
}
