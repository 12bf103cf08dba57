package catalog

import (
	"sort"
	"strings"
	"sync/atomic"
)

// Snapshot is one atomically published catalog generation. FAQ entries and
// forms are kept in feed ingestion order; the index maps are for key
// lookups only.
type Snapshot struct {
	faq      map[Locale][]FAQEntry
	faqIdx   map[Locale]map[string]int
	forms    map[Locale][]Form
	formsIdx map[Locale]map[string]int
}

// Builder accumulates one catalog generation before publication.
type Builder struct {
	snap *Snapshot
}

func NewBuilder() *Builder {
	s := &Snapshot{
		faq:      map[Locale][]FAQEntry{},
		faqIdx:   map[Locale]map[string]int{},
		forms:    map[Locale][]Form{},
		formsIdx: map[Locale]map[string]int{},
	}
	for _, loc := range Locales {
		s.faqIdx[loc] = map[string]int{}
		s.formsIdx[loc] = map[string]int{}
	}
	return &Builder{snap: s}
}

// AddFAQ appends or replaces an entry, keeping first-seen feed order for
// replaced keys.
func (b *Builder) AddFAQ(loc Locale, e FAQEntry) {
	if i, ok := b.snap.faqIdx[loc][e.Key]; ok {
		b.snap.faq[loc][i] = e
		return
	}
	b.snap.faqIdx[loc][e.Key] = len(b.snap.faq[loc])
	b.snap.faq[loc] = append(b.snap.faq[loc], e)
}

// AddForm appends or replaces a form definition.
func (b *Builder) AddForm(loc Locale, f Form) {
	if i, ok := b.snap.formsIdx[loc][f.Key]; ok {
		b.snap.forms[loc][i] = f
		return
	}
	b.snap.formsIdx[loc][f.Key] = len(b.snap.forms[loc])
	b.snap.forms[loc] = append(b.snap.forms[loc], f)
}

// FAQEmpty reports whether no locale received any FAQ entry.
func (b *Builder) FAQEmpty() bool {
	for _, loc := range Locales {
		if len(b.snap.faq[loc]) > 0 {
			return false
		}
	}
	return true
}

// FormsEmpty reports whether no locale received any form.
func (b *Builder) FormsEmpty() bool {
	for _, loc := range Locales {
		if len(b.snap.forms[loc]) > 0 {
			return false
		}
	}
	return true
}

// Snapshot finalizes the builder. The builder must not be used afterwards.
func (b *Builder) Snapshot() *Snapshot { return b.snap }

// Catalog is the process-wide catalog holder. Readers dereference the
// current snapshot once per lookup; the synchronizer replaces it wholesale
// so no reader ever observes entries from two generations.
type Catalog struct {
	current atomic.Pointer[Snapshot]
}

func New() *Catalog {
	c := &Catalog{}
	c.current.Store(NewBuilder().Snapshot())
	return c
}

// Replace publishes a new generation.
func (c *Catalog) Replace(s *Snapshot) {
	if s == nil {
		return
	}
	c.current.Store(s)
}

// Current returns the published snapshot.
func (c *Catalog) Current() *Snapshot { return c.current.Load() }

// FindFAQ returns the response of the first entry, in feed order, whose
// keyword occurs case-insensitively in the text. Feed order deciding ties
// is intentional and load-bearing: entries are not ranked by specificity.
func (s *Snapshot) FindFAQ(loc Locale, text string) (FAQEntry, bool) {
	msg := strings.ToLower(text)
	for _, e := range s.faq[loc] {
		for _, kw := range e.Keywords {
			if kw != "" && strings.Contains(msg, strings.ToLower(kw)) {
				return e, true
			}
		}
	}
	return FAQEntry{}, false
}

// FAQByKey returns the entry stored under key.
func (s *Snapshot) FAQByKey(loc Locale, key string) (FAQEntry, bool) {
	if i, ok := s.faqIdx[loc][key]; ok {
		return s.faq[loc][i], true
	}
	return FAQEntry{}, false
}

// FormByKey returns the form stored under key.
func (s *Snapshot) FormByKey(loc Locale, key string) (Form, bool) {
	if i, ok := s.formsIdx[loc][key]; ok {
		return s.forms[loc][i], true
	}
	return Form{}, false
}

// FAQList returns entries sorted by title for menu rendering.
func (s *Snapshot) FAQList(loc Locale) []FAQEntry {
	out := make([]FAQEntry, len(s.faq[loc]))
	copy(out, s.faq[loc])
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].Title) < strings.ToLower(out[j].Title)
	})
	return out
}

// FormList returns forms sorted by display name for menu rendering.
func (s *Snapshot) FormList(loc Locale) []Form {
	out := make([]Form, len(s.forms[loc]))
	copy(out, s.forms[loc])
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out
}

// Counts returns per-locale FAQ and form totals for logging.
func (s *Snapshot) Counts() (faqES, faqUK, formsES, formsUK int) {
	return len(s.faq[LocaleES]), len(s.faq[LocaleUK]), len(s.forms[LocaleES]), len(s.forms[LocaleUK])
}
