package main

import (
	"testing"
)

func TestBuildCORSConfigProduction(t *testing.T) {
	cfg, err := buildCORSConfig("production", "https://a.example.com, https://b.example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.AllowAllOrigins {
		t.Error("production must not allow all origins")
	}
	if len(cfg.AllowOrigins) != 2 || cfg.AllowOrigins[0] != "https://a.example.com" {
		t.Errorf("origins = %v", cfg.AllowOrigins)
	}
}

func TestBuildCORSConfigProductionWithoutAllowlist(t *testing.T) {
	for _, allowlist := range []string{"", "  ", " , "} {
		if _, err := buildCORSConfig("production", allowlist); err == nil {
			t.Errorf("allowlist %q: expected a configuration error", allowlist)
		}
	}
}

func TestBuildCORSConfigDevelopment(t *testing.T) {
	cfg, err := buildCORSConfig("", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.AllowAllOrigins {
		t.Error("non-production should allow all origins")
	}
}

func TestSplitAndTrim(t *testing.T) {
	got := splitAndTrim(" a , ,b,")
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("got %v", got)
	}
}
