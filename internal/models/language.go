package models

// Language is a supported conversation locale.
type Language string

const (
	LangRU Language = "ru"
	LangEN Language = "en"
	LangES Language = "es"
	LangDE Language = "de"
	LangFR Language = "fr"
)

// DefaultLanguage is the fallback locale for unrecognized language codes.
const DefaultLanguage = LangRU

// SupportedLanguages lists every locale with its own phrase table.
var SupportedLanguages = []Language{LangRU, LangEN, LangES, LangDE, LangFR}

func (l Language) Valid() bool {
	switch l {
	case LangRU, LangEN, LangES, LangDE, LangFR:
		return true
	default:
		return false
	}
}

// LanguageOrDefault maps an arbitrary code to a supported locale.
func LanguageOrDefault(code string) Language {
	l := Language(code)
	if l.Valid() {
		return l
	}
	return DefaultLanguage
}
