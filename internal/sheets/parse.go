package sheets

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/staffdesk/hrbot/internal/catalog"
)

var (
	listSplit      = regexp.MustCompile(`[;|\n,]`)
	trailingWS     = regexp.MustCompile(`[ \t]+\n`)
	leadingIndent  = regexp.MustCompile(`(?m)^[ \t]+`)
	blankLineRuns  = regexp.MustCompile(`\n{3,}`)
	escapedNewline = strings.NewReplacer("\r\n", "\n", "\r", "\n", `\n`, "\n", `\t`, "\t")
)

// CleanText normalizes free text from a sheet cell: literal \n and \t
// become control characters, trailing whitespace before newlines and
// leading indentation are stripped, and runs of three or more blank lines
// collapse to one blank line.
func CleanText(s string) string {
	if s == "" {
		return ""
	}
	s = escapedNewline.Replace(s)
	s = trailingWS.ReplaceAllString(s, "\n")
	s = leadingIndent.ReplaceAllString(s, "")
	s = blankLineRuns.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// SplitList splits a keyword or field column on semicolon, pipe, comma, or
// newline, discarding empty segments.
func SplitList(s string) []string {
	s = CleanText(s)
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range listSplit.Split(s, -1) {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ingestRow classifies one sheet row by its type column and folds it into
// the builder or the profile batch.
func ingestRow(b *catalog.Builder, profiles map[string]catalog.Profile, profileOrder *[]string, row map[string]string) {
	typ := strings.ToLower(strings.TrimSpace(row["type"]))
	loc := catalog.ParseLocale(strings.ToLower(strings.TrimSpace(row["lang"])))
	key := strings.TrimSpace(row["key"])
	if key == "" {
		key = strings.TrimSpace(row["login"])
	}
	if key == "" {
		return
	}

	title := CleanText(row["title"])
	text := CleanText(row["text"])

	switch typ {
	case "faq":
		if loc == "" {
			return
		}
		keywords := SplitList(row["keywords"])
		if len(keywords) == 0 {
			keywords = []string{key}
		}
		entry := catalog.FAQEntry{
			Key:      key,
			Title:    firstNonEmpty(title, key),
			Keywords: keywords,
			Response: firstNonEmpty(text, title, key),
		}
		b.AddFAQ(loc, entry)

	case "form":
		if loc == "" {
			return
		}
		icon := strings.TrimSpace(row["icon"])
		if icon == "" {
			icon = "📝"
		}
		form := catalog.Form{
			Key:    key,
			Name:   firstNonEmpty(title, key),
			Fields: SplitList(row["fields"]),
			Icon:   icon,
			URL:    strings.TrimSpace(row["url"]),
		}
		b.AddForm(loc, form)

	case "profile":
		team := row["department"]
		if strings.TrimSpace(team) == "" {
			team = row["team"]
		}
		if _, seen := profiles[key]; !seen {
			*profileOrder = append(*profileOrder, key)
		}
		profiles[key] = catalog.Profile{
			Login:        key,
			FullName:     CleanText(row["full_name"]),
			Position:     CleanText(row["position"]),
			Team:         CleanText(team),
			Email:        strings.TrimSpace(row["email"]),
			Phone:        strings.TrimSpace(row["phone"]),
			Manager:      CleanText(row["manager"]),
			VacationLeft: parseIntField(row["vacation_left"]),
			SalaryUSD:    parseIntField(row["salary_usd"]),
		}
	}
}

func parseIntField(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// installDefaultFAQ and installDefaultForms seed one built-in entry per
// locale so the catalog is never entirely empty after a degenerate feed.
func installDefaultFAQ(b *catalog.Builder) {
	b.AddFAQ(catalog.LocaleES, catalog.FAQEntry{
		Key:      "vacaciones",
		Title:    "Vacaciones",
		Keywords: []string{"vacaciones"},
		Response: "📅 **Vacaciones**: 24 días.",
	})
	b.AddFAQ(catalog.LocaleUK, catalog.FAQEntry{
		Key:      "відпустка",
		Title:    "Відпустка",
		Keywords: []string{"відпустка"},
		Response: "📅 **Відпустка**: 24 дні.",
	})
}

func installDefaultForms(b *catalog.Builder) {
	b.AddForm(catalog.LocaleES, catalog.Form{
		Key:    "vacation",
		Name:   "Solicitud de vacaciones",
		Fields: []string{"Nombre", "Posición", "Inicio", "Fin", "Días"},
		Icon:   "📅",
	})
	b.AddForm(catalog.LocaleUK, catalog.Form{
		Key:    "vacation",
		Name:   "Заява на відпустку",
		Fields: []string{"ПІБ", "Посада", "Початок", "Завершення", "Кількість днів"},
		Icon:   "📅",
	})
}
