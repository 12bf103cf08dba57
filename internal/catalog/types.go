// Package catalog holds the published FAQ and form catalogs and the
// profile records parsed from the content feed.
package catalog

// Locale identifies one supported content language.
type Locale string

const (
	LocaleES Locale = "es"
	LocaleUK Locale = "uk"
)

// Locales lists the supported locales in a stable order.
var Locales = []Locale{LocaleES, LocaleUK}

// ParseLocale maps a feed value to a supported locale, or "" when unknown.
func ParseLocale(s string) Locale {
	switch Locale(s) {
	case LocaleES, LocaleUK:
		return Locale(s)
	default:
		return ""
	}
}

// FAQEntry is one answerable topic. Keywords are matched case-insensitively
// as substrings of free user text.
type FAQEntry struct {
	Key      string
	Title    string
	Keywords []string
	Response string
}

// Form describes a fillable document. A form with no fields is
// informational only and has no in-chat fill flow.
type Form struct {
	Key    string
	Name   string
	Fields []string
	Icon   string
	URL    string
}

// Informational reports whether the form has no in-chat fill flow.
func (f Form) Informational() bool { return len(f.Fields) == 0 }

// Profile is one employee record keyed by corporate login.
type Profile struct {
	Login        string
	FullName     string
	Position     string
	Team         string
	Email        string
	Phone        string
	Manager      string
	VacationLeft int
	SalaryUSD    int
	ExtraJSON    string
}
