package ranking

import (
	"fmt"
	"strings"

	"salonflow/internal/models"
)

// phraseTable holds the localized pieces a proximity hint is built from.
// Minute and hour forms are indexed by pluralForm.
type phraseTable struct {
	exact   string
	earlier string
	later   string
	minutes [3]string
	hours   [3]string
}

var phrases = map[models.Language]phraseTable{
	models.LangRU: {
		exact:   "точно в запрошенное время",
		earlier: "раньше",
		later:   "позже",
		minutes: [3]string{"минута", "минуты", "минут"},
		hours:   [3]string{"час", "часа", "часов"},
	},
	models.LangEN: {
		exact:   "exactly at the requested time",
		earlier: "earlier",
		later:   "later",
		minutes: [3]string{"minute", "minutes", "minutes"},
		hours:   [3]string{"hour", "hours", "hours"},
	},
	models.LangES: {
		exact:   "justo a la hora solicitada",
		earlier: "antes",
		later:   "después",
		minutes: [3]string{"minuto", "minutos", "minutos"},
		hours:   [3]string{"hora", "horas", "horas"},
	},
	models.LangDE: {
		exact:   "genau zur gewünschten Zeit",
		earlier: "früher",
		later:   "später",
		minutes: [3]string{"Minute", "Minuten", "Minuten"},
		hours:   [3]string{"Stunde", "Stunden", "Stunden"},
	},
	models.LangFR: {
		exact:   "exactement à l'heure demandée",
		earlier: "plus tôt",
		later:   "plus tard",
		minutes: [3]string{"minute", "minutes", "minutes"},
		hours:   [3]string{"heure", "heures", "heures"},
	},
}

func tableFor(lang models.Language) phraseTable {
	if t, ok := phrases[lang]; ok {
		return t
	}
	return phrases[models.DefaultLanguage]
}

// pluralForm picks the grammatical form index for n. Russian distinguishes
// 1 / 2-4 / 5+ (with the 11-14 exception); the other locales only split
// singular from plural.
func pluralForm(lang models.Language, n int) int {
	if lang == models.LangRU {
		n = n % 100
		if n >= 11 && n <= 14 {
			return 2
		}
		switch n % 10 {
		case 1:
			return 0
		case 2, 3, 4:
			return 1
		default:
			return 2
		}
	}
	if n == 1 {
		return 0
	}
	return 1
}

// proximityPhrase renders the localized hint for a signed minute delta
// (negative = slot is before the requested time). Delta zero yields the
// exact-match phrase.
func proximityPhrase(deltaMinutes int, lang models.Language) string {
	t := tableFor(lang)
	if deltaMinutes == 0 {
		return t.exact
	}

	abs := deltaMinutes
	direction := t.later
	if abs < 0 {
		abs = -abs
		direction = t.earlier
	}

	var parts []string
	if abs >= 60 {
		h := abs / 60
		parts = append(parts, fmt.Sprintf("%d %s", h, t.hours[pluralForm(lang, h)]))
		abs = abs % 60
	}
	if abs > 0 {
		parts = append(parts, fmt.Sprintf("%d %s", abs, t.minutes[pluralForm(lang, abs)]))
	}

	return strings.Join(parts, " ") + " " + direction
}
