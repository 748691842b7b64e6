package domain

import "testing"

func TestSeverityForScoreBands(t *testing.T) {
	cases := []struct {
		score int
		want  RiskSeverity
	}{
		{0, SeverityLow},
		{40, SeverityLow},
		{41, SeverityMedium},
		{70, SeverityMedium},
		{71, SeverityHigh},
		{90, SeverityHigh},
		{91, SeverityCritical},
		{100, SeverityCritical},
	}
	for _, tc := range cases {
		if got := SeverityForScore(tc.score); got != tc.want {
			t.Fatalf("SeverityForScore(%d) = %s, want %s", tc.score, got, tc.want)
		}
	}
}

func TestDecisionPolicyNormalizeFillsDefaults(t *testing.T) {
	p := DecisionPolicy{}.Normalize()
	if p.AutoApproveConfidence != DefaultAutoApproveConfidence {
		t.Fatalf("confidence default = %v", p.AutoApproveConfidence)
	}
	if p.FraudBlockCutoff != DefaultFraudBlockCutoff {
		t.Fatalf("cutoff default = %d", p.FraudBlockCutoff)
	}
	if p.RiskCheckMinAmount != DefaultRiskCheckMinAmount {
		t.Fatalf("min amount default = %v", p.RiskCheckMinAmount)
	}
}

func TestDecisionPolicyNormalizeKeepsOverrides(t *testing.T) {
	p := DecisionPolicy{
		AutoApproveConfidence: 0.95,
		FraudBlockCutoff:      80,
		RiskCheckMinAmount:    250,
	}.Normalize()
	if p.AutoApproveConfidence != 0.95 || p.FraudBlockCutoff != 80 || p.RiskCheckMinAmount != 250 {
		t.Fatalf("overrides not preserved: %+v", p)
	}
}

func TestDecisionPolicyNormalizeRejectsOutOfRange(t *testing.T) {
	p := DecisionPolicy{AutoApproveConfidence: 1.5, FraudBlockCutoff: 140, RiskCheckMinAmount: -1}.Normalize()
	if p.AutoApproveConfidence != DefaultAutoApproveConfidence {
		t.Fatalf("confidence = %v", p.AutoApproveConfidence)
	}
	if p.FraudBlockCutoff != DefaultFraudBlockCutoff {
		t.Fatalf("cutoff = %d", p.FraudBlockCutoff)
	}
	if p.RiskCheckMinAmount != DefaultRiskCheckMinAmount {
		t.Fatalf("min amount = %v", p.RiskCheckMinAmount)
	}
}
