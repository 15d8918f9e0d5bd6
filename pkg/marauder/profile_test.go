package marauder

import (
	"errors"
	"testing"
	"time"

	"github.com/spf13/afero"
)

func TestDefaultProfile_Valid(t *testing.T) {
	p := DefaultProfile()
	if err := p.Validate(); err != nil {
		t.Fatalf("default profile invalid: %v", err)
	}
	if p.RestartBudget != 10 || p.SettleDelay != 5*time.Second || p.LoadTimeout != 30*time.Second {
		t.Fatalf("unexpected default timings: %+v", p)
	}
	p.Extensions[0] = "tiff"
	if DefaultExtensions[0] != "jpg" {
		t.Fatal("DefaultProfile must not share the extension slice")
	}
}

func TestProfile_TargetFor(t *testing.T) {
	p := DefaultProfile()
	if got := p.TargetFor(7766809); got != "//span[@id_download='7766809']" {
		t.Fatalf("unexpected target selector %q", got)
	}
}

func TestLoadProfile_PartialKeepsDefaults(t *testing.T) {
	fs := afero.NewMemMapFs()
	data := `
url: https://example.test/list
settle_delay: 8s
extensions: [png, jpg]
`
	if err := afero.WriteFile(fs, "/etc/marauder.yaml", []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	p, err := LoadProfile(fs, "/etc/marauder.yaml")
	if err != nil {
		t.Fatalf("LoadProfile: %v", err)
	}
	if p.URL != "https://example.test/list" {
		t.Errorf("url not loaded: %q", p.URL)
	}
	if p.SettleDelay != 8*time.Second {
		t.Errorf("settle_delay not loaded: %v", p.SettleDelay)
	}
	if len(p.Extensions) != 2 || p.Extensions[0] != "png" {
		t.Errorf("extensions not loaded: %v", p.Extensions)
	}
	if p.LoadTimeout != DEF_LOAD_TIMEOUT || p.RestartBudget != DEF_RESTART_BUDGET {
		t.Errorf("defaults lost: %+v", p)
	}
	if p.ProxySelector != DEF_PROXY_SELECTOR {
		t.Errorf("proxy selector default lost: %q", p.ProxySelector)
	}
}

func TestLoadProfile_EmptyFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	_ = afero.WriteFile(fs, "/p.yaml", nil, 0644)
	p, err := LoadProfile(fs, "/p.yaml")
	if err != nil {
		t.Fatalf("empty profile should load defaults, got %v", err)
	}
	if p.URL != DEF_URL {
		t.Errorf("expected default url, got %q", p.URL)
	}
}

func TestLoadProfile_Errors(t *testing.T) {
	fs := afero.NewMemMapFs()
	_ = afero.WriteFile(fs, "/unknown.yaml", []byte("uri: typo\n"), 0644)
	_ = afero.WriteFile(fs, "/badtarget.yaml", []byte("target_selector: //span\n"), 0644)
	_ = afero.WriteFile(fs, "/badduration.yaml", []byte("load_timeout: soon\n"), 0644)

	for _, path := range []string{"/unknown.yaml", "/badtarget.yaml", "/badduration.yaml"} {
		if _, err := LoadProfile(fs, path); !errors.Is(err, ErrInvalidProfile) {
			t.Errorf("%s: expected ErrInvalidProfile, got %v", path, err)
		}
	}
	if _, err := LoadProfile(fs, "/missing.yaml"); err == nil {
		t.Error("expected error for missing profile")
	}
}

func TestProfile_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Profile)
	}{
		{"empty url", func(p *Profile) { p.URL = "" }},
		{"empty proxy", func(p *Profile) { p.ProxySelector = "" }},
		{"target without placeholder", func(p *Profile) { p.TargetSelector = "//span" }},
		{"empty attribute", func(p *Profile) { p.Attribute = "" }},
		{"no extensions", func(p *Profile) { p.Extensions = nil }},
		{"dotted extension", func(p *Profile) { p.Extensions = []string{".jpg"} }},
		{"zero load timeout", func(p *Profile) { p.LoadTimeout = 0 }},
		{"negative settle", func(p *Profile) { p.SettleDelay = -time.Second }},
		{"negative budget", func(p *Profile) { p.RestartBudget = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultProfile()
			tt.mutate(&p)
			if err := p.Validate(); !errors.Is(err, ErrInvalidProfile) {
				t.Fatalf("expected ErrInvalidProfile, got %v", err)
			}
		})
	}
}
