package reminder

import (
	"strings"
	"unicode"

	"salonflow/internal/models"
)

// Keyword tables are deliberately language-agnostic: Russian and English
// patterns are matched together regardless of the session language, matching
// how customers actually reply (numeric shortcuts, either language, or a mix).
var (
	confirmWords    = []string{"1", "да", "подтверждаю", "подтвердить", "приду", "буду", "ок", "конечно", "yes", "confirm", "ok", "sure", "coming"}
	cancelWords     = []string{"2", "нет", "отмена", "отменить", "отменяю", "no", "cancel"}
	rescheduleWords = []string{"3", "перенести", "перенос", "перенесите", "reschedule", "move"}

	confirmPhrases    = []string{"я приду", "i will come", "i'll come", "see you"}
	cancelPhrases     = []string{"не приду", "не смогу", "can't make it", "cannot make it", "not coming"}
	reschedulePhrases = []string{"другое время", "другой день", "another time", "another day", "change the time"}
)

// ParseResponse classifies a free-text reply to a reminder. Reschedule and
// cancel patterns are checked before confirm ones, so a reply like
// "не смогу, давайте перенесем" lands on reschedule rather than cancel, and
// "нет, отмена" is not swallowed by a stray confirm keyword.
func ParseResponse(text string) models.ResponseAction {
	normalized := strings.ToLower(strings.TrimSpace(text))
	if normalized == "" {
		return models.ActionUnknown
	}

	tokens := tokenize(normalized)

	if matches(normalized, tokens, rescheduleWords, reschedulePhrases) {
		return models.ActionReschedule
	}
	if matches(normalized, tokens, cancelWords, cancelPhrases) {
		return models.ActionCancel
	}
	if matches(normalized, tokens, confirmWords, confirmPhrases) {
		return models.ActionConfirm
	}
	return models.ActionUnknown
}

// matches checks single-word keywords against whole tokens (so "no" does not
// fire inside "now") and multi-word phrases as substrings.
func matches(normalized string, tokens map[string]bool, words, phrases []string) bool {
	for _, w := range words {
		if tokens[w] {
			return true
		}
	}
	for _, p := range phrases {
		if strings.Contains(normalized, p) {
			return true
		}
	}
	return false
}

func tokenize(s string) map[string]bool {
	tokens := make(map[string]bool)
	for _, tok := range strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	}) {
		tokens[tok] = true
	}
	return tokens
}
