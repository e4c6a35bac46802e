package config

import "testing"

func TestDefaultValidates(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default() should validate, got %v", err)
	}
}

func TestValidateRejectsEmptyAddress(t *testing.T) {
	cfg := Default()
	cfg.Listen.Address = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for empty listen address")
	}
}

func TestValidateRejectsTimeoutNotGreaterThanInterval(t *testing.T) {
	cfg := Default()
	cfg.Watchdog.Interval = "90s"
	cfg.Watchdog.Timeout = "90s"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when timeout equals interval")
	}
}

func TestValidateRejectsMetricsEnabledWithoutAddress(t *testing.T) {
	cfg := Default()
	cfg.Metrics.Enabled = true
	cfg.Metrics.Address = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for metrics enabled without address")
	}
}

func TestMergeFilePrecedence(t *testing.T) {
	cfg := Default()
	fc := FileConfig{
		Listen:   ListenConfig{Address: ":7000"},
		Watchdog: WatchdogConfig{Interval: "30s"},
	}
	merged := mergeFile(cfg, fc)
	if merged.Listen.Address != ":7000" {
		t.Errorf("Listen.Address = %q, want :7000", merged.Listen.Address)
	}
	if merged.Watchdog.Interval != "30s" {
		t.Errorf("Watchdog.Interval = %q, want 30s", merged.Watchdog.Interval)
	}
	if merged.Watchdog.Timeout != "180s" {
		t.Errorf("Watchdog.Timeout should retain default, got %q", merged.Watchdog.Timeout)
	}
}

func TestApplyFlagsOverridesFile(t *testing.T) {
	cfg := Default()
	cfg.Listen.Address = ":7000"
	f := &Flags{Addr: ":9000", MetricsAddr: ":9200"}
	result := ApplyFlags(cfg, f)
	if result.Listen.Address != ":9000" {
		t.Errorf("Listen.Address = %q, want :9000", result.Listen.Address)
	}
	if !result.Metrics.Enabled || result.Metrics.Address != ":9200" {
		t.Errorf("Metrics = %+v, want enabled at :9200", result.Metrics)
	}
}
