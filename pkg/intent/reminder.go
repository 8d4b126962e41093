package intent

import "strings"

// ReminderIntent is the output of the scheduling sub-detector.
type ReminderIntent struct {
	Detected   bool
	Confidence int
	Keywords   []string
}

// Base scheduling vocabulary. A match means the user is probably
// talking about dates or meetings.
var reminderKeywords = []string{
	"agendar", "agendar cita", "calendario", "schedule", "recordatorio",
	"cita para", "reunión", "programar", "programé", "recordar",
}

// Imperative phrasings that ask the bot itself to remind. These are
// much stronger evidence than the base vocabulary.
var reminderStrongKeywords = []string{
	"agenda", "envíame recordatorio", "envíame un recordatorio",
	"mándame recordatorio", "ponme recordatorio", "recordame",
	"recuérdame", "avísame", "notifícame",
}

const (
	reminderStrongConfidence = 65
	reminderBaseConfidence   = 50
)

// DetectReminderIntent runs the keyword-driven scheduling detector.
// It contributes a single confidence value regardless of how many
// scheduling words matched; the matched keywords are all reported so
// the analyzer can distinguish strong from base phrasing.
//
// Matching here requires word boundaries, unlike the broader scan
// lexicons: "agenda" must not fire inside "agendar" or the strong
// vocabulary would swallow the base one.
func DetectReminderIntent(message string) ReminderIntent {
	lower := strings.ToLower(message)

	var matched []string
	strong := false

	for _, kw := range reminderStrongKeywords {
		if containsKeyword(lower, kw) {
			matched = append(matched, kw)
			strong = true
		}
	}
	for _, kw := range reminderKeywords {
		if containsKeyword(lower, kw) {
			matched = append(matched, kw)
		}
	}

	if len(matched) == 0 {
		return ReminderIntent{}
	}

	confidence := reminderBaseConfidence
	if strong {
		confidence = reminderStrongConfidence
	}

	return ReminderIntent{
		Detected:   true,
		Confidence: confidence,
		Keywords:   matched,
	}
}

// IsStrongReminderKeyword reports whether a signal came from the
// imperative scheduling vocabulary.
func IsStrongReminderKeyword(signal string) bool {
	for _, kw := range reminderStrongKeywords {
		if signal == kw {
			return true
		}
	}
	return false
}

// IsReminderKeyword reports whether a signal came from either
// scheduling vocabulary.
func IsReminderKeyword(signal string) bool {
	if IsStrongReminderKeyword(signal) {
		return true
	}
	for _, kw := range reminderKeywords {
		if signal == kw {
			return true
		}
	}
	return false
}

// containsKeyword checks for the keyword at word boundaries. Every
// occurrence is tried: an embedded hit ("agenda" inside "reagenda")
// must not mask a later standalone one.
func containsKeyword(lower, keyword string) bool {
	for start := 0; start < len(lower); {
		idx := strings.Index(lower[start:], keyword)
		if idx == -1 {
			return false
		}
		idx += start
		end := idx + len(keyword)
		boundedLeft := idx == 0 || !isWordChar(lower[idx-1])
		boundedRight := end == len(lower) || !isWordChar(lower[end])
		if boundedLeft && boundedRight {
			return true
		}
		start = idx + 1
	}
	return false
}

func isWordChar(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '_'
}
