package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindFAQFeedOrderWins(t *testing.T) {
	b := NewBuilder()
	b.AddFAQ(LocaleES, FAQEntry{Key: "generic", Title: "Generic", Keywords: []string{"vacaciones"}, Response: "generic answer"})
	b.AddFAQ(LocaleES, FAQEntry{Key: "specific", Title: "Specific", Keywords: []string{"vacaciones no disfrutadas"}, Response: "specific answer"})
	snap := b.Snapshot()

	// Both entries' keywords occur in the text; the earlier feed row wins
	// even though the later keyword is more specific.
	e, ok := snap.FindFAQ(LocaleES, "Tengo VACACIONES no disfrutadas, ¿qué hago?")
	require.True(t, ok)
	assert.Equal(t, "generic", e.Key)
}

func TestFindFAQCaseInsensitive(t *testing.T) {
	b := NewBuilder()
	b.AddFAQ(LocaleUK, FAQEntry{Key: "vac", Keywords: []string{"Відпустка"}, Response: "..."})
	snap := b.Snapshot()

	_, ok := snap.FindFAQ(LocaleUK, "коли відпустка?")
	assert.True(t, ok)
	_, ok = snap.FindFAQ(LocaleUK, "зарплата")
	assert.False(t, ok)
}

func TestAddFAQReplaceKeepsPosition(t *testing.T) {
	b := NewBuilder()
	b.AddFAQ(LocaleES, FAQEntry{Key: "a", Keywords: []string{"alpha"}, Response: "one"})
	b.AddFAQ(LocaleES, FAQEntry{Key: "b", Keywords: []string{"alpha"}, Response: "two"})
	b.AddFAQ(LocaleES, FAQEntry{Key: "a", Keywords: []string{"alpha"}, Response: "replaced"})
	snap := b.Snapshot()

	e, ok := snap.FindFAQ(LocaleES, "alpha")
	require.True(t, ok)
	assert.Equal(t, "a", e.Key, "replacement must not move the entry to the back")
	assert.Equal(t, "replaced", e.Response)
}

func TestByKeyLookups(t *testing.T) {
	b := NewBuilder()
	b.AddFAQ(LocaleES, FAQEntry{Key: "pay", Response: "payday"})
	b.AddForm(LocaleES, Form{Key: "vac", Name: "Vacation", Fields: []string{"dates"}})
	snap := b.Snapshot()

	e, ok := snap.FAQByKey(LocaleES, "pay")
	require.True(t, ok)
	assert.Equal(t, "payday", e.Response)
	_, ok = snap.FAQByKey(LocaleUK, "pay")
	assert.False(t, ok)

	f, ok := snap.FormByKey(LocaleES, "vac")
	require.True(t, ok)
	assert.False(t, f.Informational())
	_, ok = snap.FormByKey(LocaleES, "nope")
	assert.False(t, ok)
}

func TestListsAreSortedCopies(t *testing.T) {
	b := NewBuilder()
	b.AddFAQ(LocaleES, FAQEntry{Key: "z", Title: "Zeta"})
	b.AddFAQ(LocaleES, FAQEntry{Key: "a", Title: "alpha"})
	b.AddForm(LocaleES, Form{Key: "2", Name: "Beta"})
	b.AddForm(LocaleES, Form{Key: "1", Name: "alpha"})
	snap := b.Snapshot()

	faq := snap.FAQList(LocaleES)
	require.Len(t, faq, 2)
	assert.Equal(t, "alpha", faq[0].Title)

	forms := snap.FormList(LocaleES)
	require.Len(t, forms, 2)
	assert.Equal(t, "alpha", forms[0].Name)

	// Sorting the returned slice must not reorder the published feed order.
	assert.Equal(t, "z", snap.faq[LocaleES][0].Key)
}

func TestEmptyChecksPerKind(t *testing.T) {
	b := NewBuilder()
	assert.True(t, b.FAQEmpty())
	assert.True(t, b.FormsEmpty())

	b.AddForm(LocaleUK, Form{Key: "x", Name: "X"})
	assert.True(t, b.FAQEmpty(), "forms must not count as FAQ content")
	assert.False(t, b.FormsEmpty())
}

func TestCatalogReplaceIsAtomic(t *testing.T) {
	c := New()
	_, ok := c.Current().FAQByKey(LocaleES, "pay")
	assert.False(t, ok)

	b := NewBuilder()
	b.AddFAQ(LocaleES, FAQEntry{Key: "pay", Response: "payday"})
	c.Replace(b.Snapshot())

	_, ok = c.Current().FAQByKey(LocaleES, "pay")
	assert.True(t, ok)

	// A nil replacement keeps the current generation.
	c.Replace(nil)
	_, ok = c.Current().FAQByKey(LocaleES, "pay")
	assert.True(t, ok)
}

func TestParseLocale(t *testing.T) {
	assert.Equal(t, LocaleES, ParseLocale("es"))
	assert.Equal(t, LocaleUK, ParseLocale("uk"))
	assert.Equal(t, Locale(""), ParseLocale("en"))
	assert.Equal(t, Locale(""), ParseLocale(""))
}
