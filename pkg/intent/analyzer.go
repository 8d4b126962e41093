package intent

import "strings"

// Analysis refines a scan with request context.
type Analysis struct {
	Confidence     int
	SuggestedTools []Tool
	Reasoning      string
}

// Thresholds for the two-tier design: the low-pass gate decides
// whether context-aware analysis runs at all, the tool threshold
// decides commitment to the tool path, and the stream threshold turns
// streaming off only when tool execution is near-certain.
const (
	DetectionThreshold = 20
	ToolThreshold      = 60
	StreamThreshold    = 70
)

// Context adjustments applied on top of the scanner's confidence.
const (
	boostPaymentIntegration = 15
	boostStrongScheduling   = 20
	boostScheduling         = 10
	boostContact            = 15
	boostEnterprise         = 5
	penaltyFreePlan         = 30
	penaltyNoToolSupport    = 40
)

// Signals that, combined with an available payment integration,
// suggest a payment link.
var paymentTriggerSignals = map[string]bool{
	"link de pago": true,
	"stripe":       true,
	"generar pago": true,
	SignalAmount:   true,
}

var contactTriggerSignals = map[string]bool{
	SignalContactPattern: true,
	"mi nombre":          true,
	"me llamo":           true,
	"soy":                true,
	"trabajo en":         true,
	"empresa":            true,
	"mi email":           true,
	"mi correo":          true,
	"mi teléfono":        true,
	"contactarme":        true,
}

// Analyze applies the context-dependent rules to a positive scan. Each
// rule is independent and additive; the final confidence is clamped to
// [0, 100]. Reasons accumulate into a human-readable trail.
func Analyze(message string, tc ToolContext, scan ScanResult) Analysis {
	confidence := scan.Confidence
	var tools []Tool
	var reasons []string

	if tc.HasPaymentIntegration && anySignal(scan.Signals, paymentTriggerSignals) {
		tools = append(tools, ToolCreatePaymentLink)
		confidence += boostPaymentIntegration
		reasons = append(reasons, "payment integration available + payment intent detected")
	}

	if hasReminderSignal(scan.Signals) {
		tools = append(tools, ToolScheduleReminder)
		if hasStrongReminderSignal(scan.Signals) {
			confidence += boostStrongScheduling
			reasons = append(reasons, "high confidence scheduling intent detected")
		} else {
			confidence += boostScheduling
			reasons = append(reasons, "scheduling intent detected")
		}
	}

	if anySignal(scan.Signals, contactTriggerSignals) {
		tools = append(tools, ToolSaveContactInfo)
		confidence += boostContact
		reasons = append(reasons, "contact information shared")
	}

	switch tc.Plan {
	case PlanFree:
		confidence -= penaltyFreePlan
		if confidence < 0 {
			confidence = 0
		}
		reasons = append(reasons, "FREE plan - tools limited")
	case PlanEnterprise:
		confidence += boostEnterprise
		reasons = append(reasons, "ENTERPRISE plan - full tool access")
	}

	if !tc.ModelSupportsTools && len(tools) > 0 {
		confidence -= penaltyNoToolSupport
		if confidence < 0 {
			confidence = 0
		}
		reasons = append(reasons, "model does not support tools")
	}

	return Analysis{
		Confidence:     clampConfidence(confidence),
		SuggestedTools: tools,
		Reasoning:      strings.Join(reasons, "; "),
	}
}

func anySignal(signals []string, set map[string]bool) bool {
	for _, s := range signals {
		if set[s] {
			return true
		}
	}
	return false
}

func hasReminderSignal(signals []string) bool {
	for _, s := range signals {
		if IsReminderKeyword(s) {
			return true
		}
	}
	return false
}

func hasStrongReminderSignal(signals []string) bool {
	for _, s := range signals {
		if IsStrongReminderKeyword(s) {
			return true
		}
	}
	return false
}
