package utils

import (
	"fmt"

	"github.com/julianstephens/tracker/internal/constants"
)

// Strings is the fixed set of user-facing strings for one locale.
type Strings struct {
	EveryDay     string
	Pinned       string
	DayOne       string
	DayFew       string
	DayMany      string
	Filters      map[constants.StatusFilter]string
	BestPeriod   string
	IdealDays    string
	Completed    string
	AverageValue string
	NothingToday string
	NothingFound string
}

var localeStrings = map[constants.Locale]Strings{
	constants.LocaleEnglish: {
		EveryDay: "Every day",
		Pinned:   "Pinned",
		DayOne:   "day",
		DayFew:   "days",
		DayMany:  "days",
		Filters: map[constants.StatusFilter]string{
			constants.FilterAll:        "All trackers",
			constants.FilterToday:      "Trackers for today",
			constants.FilterCompleted:  "Completed",
			constants.FilterIncomplete: "Incomplete",
		},
		BestPeriod:   "Best period",
		IdealDays:    "Ideal days",
		Completed:    "Trackers completed",
		AverageValue: "Average value",
		NothingToday: "What shall we track?",
		NothingFound: "Nothing found",
	},
	constants.LocaleRussian: {
		EveryDay: "Каждый день",
		Pinned:   "Закрепленные",
		DayOne:   "день",
		DayFew:   "дня",
		DayMany:  "дней",
		Filters: map[constants.StatusFilter]string{
			constants.FilterAll:        "Все трекеры",
			constants.FilterToday:      "Трекеры на сегодня",
			constants.FilterCompleted:  "Завершенные",
			constants.FilterIncomplete: "Не завершенные",
		},
		BestPeriod:   "Лучший период",
		IdealDays:    "Идеальные дни",
		Completed:    "Трекеров завершено",
		AverageValue: "Среднее значение",
		NothingToday: "Что будем отслеживать?",
		NothingFound: "Ничего не найдено",
	},
}

// StringsFor returns the string table for locale, falling back to English.
func StringsFor(locale constants.Locale) Strings {
	if s, ok := localeStrings[locale]; ok {
		return s
	}
	return localeStrings[constants.LocaleEnglish]
}

// IsSupportedLocale reports whether a string table exists for locale.
func IsSupportedLocale(locale constants.Locale) bool {
	_, ok := localeStrings[locale]
	return ok
}

// FormatDays renders a completed-day count with the plural form of the locale,
// e.g. "1 day", "3 days", "22 дня", "11 дней".
func FormatDays(count int, locale constants.Locale) string {
	s := StringsFor(locale)
	word := s.DayMany

	if locale == constants.LocaleRussian {
		rem10 := count % 10
		rem100 := count % 100
		switch {
		case rem10 == 1 && rem100 != 11:
			word = s.DayOne
		case rem10 >= 2 && rem10 <= 4 && (rem100 < 10 || rem100 >= 20):
			word = s.DayFew
		}
	} else if count == 1 {
		word = s.DayOne
	}

	return fmt.Sprintf("%d %s", count, word)
}
