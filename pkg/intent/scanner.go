package intent

import (
	"regexp"
	"strings"
)

// ScanResult is the output of the quick keyword/pattern scan.
type ScanResult struct {
	Detected   bool
	Signals    []string
	Confidence int
}

// Signal family weights. Contributions are additive across families
// and clamped to 100; unrelated combinations can therefore cross the
// tool threshold together. That tradeoff is intentional, see Scan.
const (
	weightPayment        = 40
	weightAmount         = 60
	weightCommercial     = 30
	weightContactPattern = 50
	weightContactKeyword = 35
)

// SignalAmount and SignalContactPattern are synthetic signal names
// emitted for regexp families, where the matched text itself is not a
// useful signal label.
const (
	SignalAmount         = "amount_detected"
	SignalContactPattern = "contact_pattern_detected"
)

var paymentKeywords = []string{
	"link de pago", "payment link", "generar pago", "crear cobro",
	"stripe", "factura", "invoice", "checkout",
}

var amountPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\$\d+`),
	regexp.MustCompile(`(?i)\d+\s*(pesos|dolares|usd|mxn)`),
	regexp.MustCompile(`\d+\s*\$$`),
}

var commercialKeywords = []string{
	"quiero contratar", "necesito pagar", "como puedo pagar",
	"proceder con el pago", "generar link", "crear link",
}

var contactPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)mi nombre es\s+[\w\s]+`),
	regexp.MustCompile(`(?i)soy\s+[\w\s]+\s+(de|en)\s+[\w\s]+`),
	regexp.MustCompile(`(?i)mi email es\s+[\w.-]+@[\w.-]+`),
	regexp.MustCompile(`(?i)mi correo es\s+[\w.-]+@[\w.-]+`),
	regexp.MustCompile(`(?i)trabajo en\s+[\w\s]+`),
	regexp.MustCompile(`(?i)empresa\s+[\w\s]+`),
	regexp.MustCompile(`(?i)mi tel[eé]fono es\s+[\d\s\-\+\(\)]+`),
}

var contactKeywords = []string{
	"mi nombre", "me llamo", "soy", "trabajo en", "empresa",
	"mi email", "mi correo", "mi teléfono", "contactarme",
}

// Scan scores a raw message against the static lexicons and patterns.
// It is pure and must stay sub-millisecond: it runs on every message
// unconditionally, before any context is consulted. No I/O here.
//
// Weights sum additively across independent families. No
// diminishing-returns normalization is applied, so a stray dollar sign
// plus a contact phrase can jointly clear the tool threshold; that is
// a known precision/recall tradeoff kept for compatibility with the
// scoring this detector was tuned against.
func Scan(message string) ScanResult {
	lower := strings.ToLower(message)

	var signals []string
	confidence := 0

	if reminder := DetectReminderIntent(message); reminder.Detected {
		signals = append(signals, reminder.Keywords...)
		confidence += reminder.Confidence
	}

	for _, kw := range paymentKeywords {
		if strings.Contains(lower, kw) {
			signals = append(signals, kw)
			confidence += weightPayment
		}
	}

	for _, p := range amountPatterns {
		if p.MatchString(message) {
			signals = append(signals, SignalAmount)
			confidence += weightAmount
			break
		}
	}

	for _, kw := range commercialKeywords {
		if strings.Contains(lower, kw) {
			signals = append(signals, kw)
			confidence += weightCommercial
		}
	}

	for _, p := range contactPatterns {
		if p.MatchString(message) {
			signals = append(signals, SignalContactPattern)
			confidence += weightContactPattern
			break
		}
	}

	// First match only, so a chatty introduction does not inflate the
	// score with every contact word it happens to contain.
	for _, kw := range contactKeywords {
		if strings.Contains(lower, kw) {
			signals = append(signals, kw)
			confidence += weightContactKeyword
			break
		}
	}

	return ScanResult{
		Detected:   len(signals) > 0,
		Signals:    signals,
		Confidence: clampConfidence(confidence),
	}
}
