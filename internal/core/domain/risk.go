package domain

type RiskSeverity string

const (
	SeverityLow      RiskSeverity = "low"
	SeverityMedium   RiskSeverity = "medium"
	SeverityHigh     RiskSeverity = "high"
	SeverityCritical RiskSeverity = "critical"
)

// Severity banding boundaries. The bands are telemetry; automated
// blocking compares the raw score against DecisionPolicy.FraudBlockCutoff
// so a mislabeled band can never change a routing decision.
const (
	severityMediumFloor   = 40
	severityHighFloor     = 70
	severityCriticalFloor = 90
)

func SeverityForScore(score int) RiskSeverity {
	switch {
	case score > severityCriticalFloor:
		return SeverityCritical
	case score > severityHighFloor:
		return SeverityHigh
	case score > severityMediumFloor:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// Decision thresholds. These three constants are the consequential
// tunables of the pipeline and are kept independent of each other.
const (
	DefaultAutoApproveConfidence = 0.90
	DefaultFraudBlockCutoff      = 70
	DefaultRiskCheckMinAmount    = 100.0
)

// DecisionPolicy carries the gate thresholds. Zero values are replaced
// with the defaults so a partially specified policy stays safe.
type DecisionPolicy struct {
	AutoApproveConfidence float64
	FraudBlockCutoff      int
	RiskCheckMinAmount    float64
}

func DefaultDecisionPolicy() DecisionPolicy {
	return DecisionPolicy{
		AutoApproveConfidence: DefaultAutoApproveConfidence,
		FraudBlockCutoff:      DefaultFraudBlockCutoff,
		RiskCheckMinAmount:    DefaultRiskCheckMinAmount,
	}
}

func (p DecisionPolicy) Normalize() DecisionPolicy {
	out := p
	def := DefaultDecisionPolicy()
	if out.AutoApproveConfidence <= 0 || out.AutoApproveConfidence > 1 {
		out.AutoApproveConfidence = def.AutoApproveConfidence
	}
	if out.FraudBlockCutoff <= 0 || out.FraudBlockCutoff > 100 {
		out.FraudBlockCutoff = def.FraudBlockCutoff
	}
	if out.RiskCheckMinAmount < 0 {
		out.RiskCheckMinAmount = def.RiskCheckMinAmount
	}
	return out
}
