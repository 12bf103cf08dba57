package sheets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staffdesk/hrbot/internal/catalog"
)

func TestCleanText(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"literal escapes", `line1\nline2\tend`, "line1\nline2\tend"},
		{"trailing whitespace", "a  \nb", "a\nb"},
		{"leading indent", "  a\n\t b", "a\nb"},
		{"blank line runs", "a\n\n\n\n\nb", "a\n\nb"},
		{"windows newlines", "a\r\nb\rc", "a\nb\nc"},
		{"surrounding space trimmed", "  hola  ", "hola"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CleanText(tc.in))
		})
	}
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c", "d"}, SplitList("a;b|c,d"))
	assert.Equal(t, []string{"a", "b"}, SplitList("a\nb"))
	assert.Equal(t, []string{"a", "b"}, SplitList(" a ; ; b ; "))
	assert.Nil(t, SplitList(""))
	assert.Nil(t, SplitList(" ; , | "))
}

func ingestOne(t *testing.T, rows ...map[string]string) (*catalog.Snapshot, map[string]catalog.Profile, []string) {
	t.Helper()
	b := catalog.NewBuilder()
	profiles := map[string]catalog.Profile{}
	var order []string
	for _, row := range rows {
		ingestRow(b, profiles, &order, row)
	}
	return b.Snapshot(), profiles, order
}

func TestIngestFAQRow(t *testing.T) {
	snap, _, _ := ingestOne(t, map[string]string{
		"type": "faq", "lang": "es", "key": "vacaciones",
		"title": "Vacaciones", "keywords": "vacaciones; dias libres", "text": "24 dias",
	})
	e, ok := snap.FAQByKey(catalog.LocaleES, "vacaciones")
	require.True(t, ok)
	assert.Equal(t, []string{"vacaciones", "dias libres"}, e.Keywords)
	assert.Equal(t, "24 dias", e.Response)
}

func TestIngestFAQDefaults(t *testing.T) {
	snap, _, _ := ingestOne(t, map[string]string{
		"type": "FAQ", "lang": "ES", "key": "pay",
	})
	e, ok := snap.FAQByKey(catalog.LocaleES, "pay")
	require.True(t, ok)
	assert.Equal(t, "pay", e.Title, "title falls back to key")
	assert.Equal(t, []string{"pay"}, e.Keywords, "keywords fall back to key")
	assert.Equal(t, "pay", e.Response)
}

func TestIngestFormRow(t *testing.T) {
	snap, _, _ := ingestOne(t, map[string]string{
		"type": "form", "lang": "uk", "key": "sick",
		"title": "Лікарняний", "fields": "ПІБ; Дата", "url": " https://forms.example/sick ",
	})
	f, ok := snap.FormByKey(catalog.LocaleUK, "sick")
	require.True(t, ok)
	assert.Equal(t, []string{"ПІБ", "Дата"}, f.Fields)
	assert.Equal(t, "https://forms.example/sick", f.URL)
	assert.Equal(t, "📝", f.Icon, "missing icon gets the default")
}

func TestIngestProfileRow(t *testing.T) {
	_, profiles, order := ingestOne(t,
		map[string]string{
			"type": "profile", "login": "jdoe", "full_name": "John Doe",
			"department": "Platform", "phone": " +380931234567 ",
			"vacation_left": "12", "salary_usd": "oops",
		},
		map[string]string{
			"type": "profile", "login": "asmith", "team": "Payroll",
		},
		map[string]string{
			"type": "profile", "login": "jdoe", "full_name": "John A. Doe",
		},
	)
	require.Equal(t, []string{"jdoe", "asmith"}, order, "order keeps first appearance on re-ingest")
	p := profiles["jdoe"]
	assert.Equal(t, "John A. Doe", p.FullName, "later row replaces the record")
	assert.Equal(t, "Payroll", profiles["asmith"].Team, "team column backs up department")

	first := profiles["asmith"]
	assert.Zero(t, first.VacationLeft)
}

func TestIngestProfileFieldParsing(t *testing.T) {
	_, profiles, _ := ingestOne(t, map[string]string{
		"type": "profile", "login": "jdoe",
		"department": "Platform", "phone": " +380931234567 ",
		"vacation_left": " 12 ", "salary_usd": "not-a-number",
	})
	p := profiles["jdoe"]
	assert.Equal(t, "+380931234567", p.Phone)
	assert.Equal(t, 12, p.VacationLeft)
	assert.Zero(t, p.SalaryUSD, "unparseable integers become zero")
	assert.Equal(t, "Platform", p.Team)
}

func TestIngestSkipsUnusableRows(t *testing.T) {
	snap, profiles, _ := ingestOne(t,
		map[string]string{"type": "faq", "lang": "es"},                // no key
		map[string]string{"type": "faq", "key": "x"},                  // no lang
		map[string]string{"type": "form", "lang": "en", "key": "x"},   // unsupported lang
		map[string]string{"type": "banner", "lang": "es", "key": "x"}, // unknown type
	)
	faqES, faqUK, formsES, formsUK := snap.Counts()
	assert.Zero(t, faqES+faqUK+formsES+formsUK)
	assert.Empty(t, profiles)
}

func TestDefaultsInstalledIndependently(t *testing.T) {
	b := catalog.NewBuilder()
	installDefaultFAQ(b)
	snap := b.Snapshot()
	_, ok := snap.FAQByKey(catalog.LocaleES, "vacaciones")
	assert.True(t, ok)
	_, ok = snap.FAQByKey(catalog.LocaleUK, "відпустка")
	assert.True(t, ok)
	_, _, formsES, formsUK := snap.Counts()
	assert.Zero(t, formsES+formsUK)

	b = catalog.NewBuilder()
	installDefaultForms(b)
	snap = b.Snapshot()
	f, ok := snap.FormByKey(catalog.LocaleUK, "vacation")
	require.True(t, ok)
	assert.Len(t, f.Fields, 5)
}
