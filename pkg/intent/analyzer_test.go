package intent

import "testing"

func proContext() ToolContext {
	return ToolContext{
		ChatbotID:          "bot-1",
		UserID:             "user-1",
		Plan:               PlanPro,
		ModelSupportsTools: true,
	}
}

func TestAnalyze_PaymentSuggestion(t *testing.T) {
	message := "necesito un link de pago de $500"
	scan := Scan(message)

	tc := proContext()
	tc.HasPaymentIntegration = true

	analysis := Analyze(message, tc, scan)
	if !containsTool(analysis.SuggestedTools, ToolCreatePaymentLink) {
		t.Fatalf("tools = %v, want %s", analysis.SuggestedTools, ToolCreatePaymentLink)
	}
	if analysis.Confidence != 100 {
		// 40 payment + 60 amount clamps to 100 in the scan, +15 stays clamped.
		t.Errorf("confidence = %d, want 100", analysis.Confidence)
	}
}

func TestAnalyze_PaymentRequiresIntegration(t *testing.T) {
	message := "necesito un link de pago de $500"
	scan := Scan(message)

	analysis := Analyze(message, proContext(), scan)
	if containsTool(analysis.SuggestedTools, ToolCreatePaymentLink) {
		t.Errorf("suggested %s without a payment integration", ToolCreatePaymentLink)
	}
}

func TestAnalyze_SchedulingBoosts(t *testing.T) {
	tests := []struct {
		name           string
		message        string
		wantConfidence int
	}{
		{
			name:           "base scheduling keyword",
			message:        "quiero agendar una cita para mañana",
			wantConfidence: reminderBaseConfidence + boostScheduling,
		},
		{
			name:           "strong scheduling keyword",
			message:        "recuérdame enviar la propuesta",
			wantConfidence: reminderStrongConfidence + boostStrongScheduling,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scan := Scan(tt.message)
			analysis := Analyze(tt.message, proContext(), scan)

			if !containsTool(analysis.SuggestedTools, ToolScheduleReminder) {
				t.Fatalf("tools = %v, want %s", analysis.SuggestedTools, ToolScheduleReminder)
			}
			if analysis.Confidence != tt.wantConfidence {
				t.Errorf("confidence = %d, want %d", analysis.Confidence, tt.wantConfidence)
			}
		})
	}
}

func TestAnalyze_PlanGating(t *testing.T) {
	// Identical message and context except the plan: FREE must never
	// score above ENTERPRISE.
	messages := []string{
		"quiero agendar una cita para mañana",
		"mi nombre es Ana y trabajo en Acme",
		"recuérdame cobrar $200",
	}

	for _, message := range messages {
		scan := Scan(message)

		free := proContext()
		free.Plan = PlanFree
		enterprise := proContext()
		enterprise.Plan = PlanEnterprise

		freeResult := Analyze(message, free, scan)
		enterpriseResult := Analyze(message, enterprise, scan)

		if freeResult.Confidence > enterpriseResult.Confidence {
			t.Errorf("message %q: FREE confidence %d > ENTERPRISE confidence %d",
				message, freeResult.Confidence, enterpriseResult.Confidence)
		}
	}
}

func TestAnalyze_ModelWithoutToolSupport(t *testing.T) {
	message := "recuérdame enviar la propuesta"
	scan := Scan(message)

	capable := proContext()
	incapable := proContext()
	incapable.ModelSupportsTools = false

	capableResult := Analyze(message, capable, scan)
	incapableResult := Analyze(message, incapable, scan)

	want := capableResult.Confidence - penaltyNoToolSupport
	if want < 0 {
		want = 0
	}
	if incapableResult.Confidence != want {
		t.Errorf("confidence without tool support = %d, want %d",
			incapableResult.Confidence, want)
	}
}

func TestAnalyze_ConfidenceNeverNegative(t *testing.T) {
	// Weak scan + FREE plan + no tool support must floor at zero.
	message := "contactarme"
	scan := Scan(message)

	tc := ToolContext{ChatbotID: "bot-1", Plan: PlanFree, ModelSupportsTools: false}
	analysis := Analyze(message, tc, scan)

	if analysis.Confidence < 0 || analysis.Confidence > 100 {
		t.Errorf("confidence = %d, want within [0,100]", analysis.Confidence)
	}
}

func containsTool(tools []Tool, want Tool) bool {
	for _, tool := range tools {
		if tool == want {
			return true
		}
	}
	return false
}
