// Package intent decides, per inbound message, whether the agent needs
// specialized tools before answering and whether the reply should be
// streamed. Detection is heuristic: a fast keyword/pattern scan feeds a
// context-aware analysis stage, and results are cached briefly so
// repeated openings skip the pipeline.
package intent

// Plan is a subscription tier. Tool availability widens with the tier.
type Plan string

const (
	PlanFree       Plan = "FREE"
	PlanStarter    Plan = "STARTER"
	PlanPro        Plan = "PRO"
	PlanEnterprise Plan = "ENTERPRISE"
)

// Tool identifies a side-effecting capability the agent may invoke.
type Tool string

const (
	ToolCreatePaymentLink Tool = "create_payment_link"
	ToolScheduleReminder  Tool = "schedule_reminder"
	ToolSaveContactInfo   Tool = "save_contact_info"
)

// ToolContext is the per-request input to the engine. It is owned by
// the caller and read-only here.
type ToolContext struct {
	ChatbotID             string
	UserID                string
	Plan                  Plan
	HasPaymentIntegration bool
	ModelSupportsTools    bool
}

// Decision is the immutable result of one classification.
type Decision struct {
	NeedsTools      bool   `json:"needs_tools"`
	Confidence      int    `json:"confidence"`
	SuggestedTools  []Tool `json:"suggested_tools,omitempty"`
	ShouldStream    bool   `json:"should_stream"`
	Reasoning       string `json:"reasoning"`
	DetectionTimeMs int64  `json:"detection_time_ms"`
}

// clone returns a value copy whose tool slice is not shared, so cached
// decisions never escape as shared mutable state.
func (d Decision) clone() Decision {
	if d.SuggestedTools != nil {
		tools := make([]Tool, len(d.SuggestedTools))
		copy(tools, d.SuggestedTools)
		d.SuggestedTools = tools
	}
	return d
}

func clampConfidence(c int) int {
	if c < 0 {
		return 0
	}
	if c > 100 {
		return 100
	}
	return c
}
