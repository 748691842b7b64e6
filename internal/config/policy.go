package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/finagent/expense-pipeline/internal/core/domain"
)

type policyFile struct {
	AutoApproveConfidence float64 `yaml:"auto_approve_confidence"`
	FraudBlockCutoff      int     `yaml:"fraud_block_cutoff"`
	RiskCheckMinAmount    float64 `yaml:"risk_check_min_amount"`
}

// LoadPolicy reads decision thresholds from a YAML file. An empty path
// returns the built-in defaults; out-of-range values are normalized
// back to defaults field by field.
func LoadPolicy(path string) (domain.DecisionPolicy, error) {
	if path == "" {
		return domain.DefaultDecisionPolicy(), nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return domain.DecisionPolicy{}, fmt.Errorf("read policy file: %w", err)
	}

	var pf policyFile
	if err := yaml.Unmarshal(raw, &pf); err != nil {
		return domain.DecisionPolicy{}, fmt.Errorf("parse policy file: %w", err)
	}

	policy := domain.DecisionPolicy{
		AutoApproveConfidence: pf.AutoApproveConfidence,
		FraudBlockCutoff:      pf.FraudBlockCutoff,
		RiskCheckMinAmount:    pf.RiskCheckMinAmount,
	}
	return policy.Normalize(), nil
}
