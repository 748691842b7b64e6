package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("API_PORT", "")
	t.Setenv("NATS_SUBJECT", "")
	t.Setenv("SIMULATE_COLLABORATORS", "")
	t.Setenv("COLLABORATOR_TIMEOUT_SECONDS", "")

	cfg := Load()
	if cfg.APIPort != "8080" {
		t.Fatalf("expected default api port 8080, got %q", cfg.APIPort)
	}
	if cfg.NATSSubject != "forecast.updates" {
		t.Fatalf("expected default subject forecast.updates, got %q", cfg.NATSSubject)
	}
	if cfg.SimulateCollaborators {
		t.Fatalf("simulation should be off by default")
	}
	if cfg.CollaboratorTimeoutSeconds != 15 {
		t.Fatalf("expected default collaborator timeout 15, got %d", cfg.CollaboratorTimeoutSeconds)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	t.Setenv("SIMULATE_COLLABORATORS", "true")
	t.Setenv("API_RATE_LIMIT_RPS", "25")
	t.Setenv("API_RATE_LIMIT_BURST", "50")
	t.Setenv("API_MAX_CONCURRENT", "128")

	cfg := Load()
	if !cfg.SimulateCollaborators {
		t.Fatalf("expected simulation enabled")
	}
	if cfg.APIRateLimitRPS != 25 || cfg.APIRateLimitBurst != 50 {
		t.Fatalf("rate limit overrides not applied: %+v", cfg)
	}
	if cfg.APIMaxConcurrent != 128 {
		t.Fatalf("expected max concurrent 128, got %d", cfg.APIMaxConcurrent)
	}
}

func TestLoadFallsBackOnMalformedInt(t *testing.T) {
	t.Setenv("API_RATE_LIMIT_RPS", "not-a-number")
	cfg := Load()
	if cfg.APIRateLimitRPS != 0 {
		t.Fatalf("expected fallback 0, got %d", cfg.APIRateLimitRPS)
	}
}

func TestLoadPolicyEmptyPathUsesDefaults(t *testing.T) {
	policy, err := LoadPolicy("")
	if err != nil {
		t.Fatalf("LoadPolicy() error = %v", err)
	}
	if policy.AutoApproveConfidence != 0.90 || policy.FraudBlockCutoff != 70 || policy.RiskCheckMinAmount != 100 {
		t.Fatalf("unexpected default policy %+v", policy)
	}
}

func TestLoadPolicyReadsYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	content := "auto_approve_confidence: 0.95\nfraud_block_cutoff: 60\nrisk_check_min_amount: 250\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write policy file: %v", err)
	}

	policy, err := LoadPolicy(path)
	if err != nil {
		t.Fatalf("LoadPolicy() error = %v", err)
	}
	if policy.AutoApproveConfidence != 0.95 || policy.FraudBlockCutoff != 60 || policy.RiskCheckMinAmount != 250 {
		t.Fatalf("unexpected policy %+v", policy)
	}
}

func TestLoadPolicyNormalizesOutOfRange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	content := "auto_approve_confidence: 1.5\nfraud_block_cutoff: 180\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write policy file: %v", err)
	}

	policy, err := LoadPolicy(path)
	if err != nil {
		t.Fatalf("LoadPolicy() error = %v", err)
	}
	if policy.AutoApproveConfidence != 0.90 || policy.FraudBlockCutoff != 70 {
		t.Fatalf("expected normalized defaults, got %+v", policy)
	}
}

func TestLoadPolicyMissingFile(t *testing.T) {
	if _, err := LoadPolicy("/nonexistent/policy.yaml"); err == nil {
		t.Fatalf("expected error for missing policy file")
	}
}
