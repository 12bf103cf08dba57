package sheets

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportURLs(t *testing.T) {
	urls := exportURLs("https://docs.google.com/spreadsheets/d/DOC123/edit?gid=42#gid=42", "")
	require.Len(t, urls, 2)
	assert.Equal(t, "https://docs.google.com/spreadsheets/d/DOC123/export?format=csv&gid=42", urls[0])
	assert.Contains(t, urls[1], "/gviz/tq?tqx=out:csv&gid=42")
}

func TestExportURLsOverrideGID(t *testing.T) {
	urls := exportURLs("https://docs.google.com/spreadsheets/d/DOC123/edit?gid=42", "99")
	assert.Contains(t, urls[0], "gid=99")
}

func TestExportURLsDefaultsGIDZero(t *testing.T) {
	urls := exportURLs("https://docs.google.com/spreadsheets/d/DOC123/edit", "")
	assert.Contains(t, urls[0], "gid=0")
}

func TestExportURLsUnparseable(t *testing.T) {
	urls := exportURLs("://not-a-url", "")
	assert.Equal(t, []string{"://not-a-url"}, urls)
}

func TestDecodeRows(t *testing.T) {
	rows, err := decodeRows("\ufefftype,lang,key\nfaq,es,pay\nform,uk,sick,extra\nfaq,es\n")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "faq", rows[0]["type"], "BOM on the first header must be stripped")
	assert.Equal(t, "sick", rows[1]["key"], "extra columns are ignored")
	assert.Equal(t, "", rows[2]["key"], "short records pad missing columns")
}

func TestDecodeRowsEmpty(t *testing.T) {
	rows, err := decodeRows("")
	require.NoError(t, err)
	assert.Nil(t, rows)
}

func TestRowsAgainstServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Mozilla/5.0", r.Header.Get("User-Agent"))
		assert.Equal(t, "no-cache", r.Header.Get("Cache-Control"))
		w.Write([]byte("type,key,lang\nfaq,pay,es\n"))
	}))
	defer srv.Close()

	f := NewFetcher(nil)
	rows, err := f.Rows(context.Background(), srv.URL, "")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "pay", rows[0]["key"])
}

func TestRowsEmptyURL(t *testing.T) {
	f := NewFetcher(nil)
	_, err := f.Rows(context.Background(), "  ", "")
	assert.Error(t, err)
}
