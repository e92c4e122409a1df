package engine_test

import (
	"reflect"
	"testing"

	"github.com/raysh454/phishguard/internal/engine"
)

func TestTrustedDomains(t *testing.T) {
	t.Parallel()
	td := engine.NewTrustedDomains([]string{" Google.com ", "paypal.com.", "", "github.com"})

	if td.Len() != 3 {
		t.Errorf("Len() = %d, want 3", td.Len())
	}
	for _, d := range []string{"google.com", "GOOGLE.COM", "paypal.com"} {
		if !td.Contains(d) {
			t.Errorf("Contains(%q) = false", d)
		}
	}
	for _, d := range []string{"", "mail.google.com", "google.co.uk"} {
		if td.Contains(d) {
			t.Errorf("Contains(%q) = true", d)
		}
	}
	if got, want := td.Domains(), []string{"github.com", "google.com", "paypal.com"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Domains() = %v", got)
	}
	if (engine.TrustedDomains{}).Contains("google.com") {
		t.Error("zero value should contain nothing")
	}
}

func TestConfigDefaults(t *testing.T) {
	t.Parallel()
	cfg := engine.DefaultConfig()
	if cfg.TrustedThreshold != 0.9 || cfg.DefaultThreshold != 0.5 || !cfg.DecisionNegativeIsPhishing {
		t.Errorf("DefaultConfig() = %+v", cfg)
	}
}
