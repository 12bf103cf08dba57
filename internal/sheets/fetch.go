// Package sheets fetches the externally maintained spreadsheet and builds
// catalog generations and profile batches from it.
package sheets

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const fetchTimeout = 25 * time.Second

// Fetcher downloads one spreadsheet tab as header-mapped rows.
type Fetcher struct {
	client *http.Client
	logger *slog.Logger
}

func NewFetcher(log *slog.Logger) *Fetcher {
	if log == nil {
		log = slog.Default()
	}
	return &Fetcher{
		client: &http.Client{Timeout: fetchTimeout},
		logger: log.With(slog.String("service", "sheets")),
	}
}

// exportURLs derives the document id from a sharing/edit URL and returns
// the direct CSV export endpoint and the gviz query endpoint, tried in
// order. When the URL cannot be parsed it is used verbatim.
func exportURLs(editURL, overrideGID string) []string {
	u, err := url.Parse(editURL)
	if err != nil || u.Path == "" {
		return []string{editURL}
	}
	parts := make([]string, 0, 4)
	for _, p := range strings.Split(u.Path, "/") {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return []string{editURL}
	}
	docID := parts[len(parts)-1]
	if len(parts) >= 3 {
		docID = parts[2]
	}
	gid := overrideGID
	if gid == "" {
		gid = u.Query().Get("gid")
	}
	if gid == "" {
		gid = "0"
	}
	return []string{
		fmt.Sprintf("https://docs.google.com/spreadsheets/d/%s/export?format=csv&gid=%s", docID, gid),
		fmt.Sprintf("https://docs.google.com/spreadsheets/d/%s/gviz/tq?tqx=out:csv&gid=%s", docID, gid),
	}
}

// Rows fetches one tab and decodes it as header-driven CSV. Both export
// endpoints are tried; the first non-empty body wins.
func (f *Fetcher) Rows(ctx context.Context, editURL, gid string) ([]map[string]string, error) {
	if strings.TrimSpace(editURL) == "" {
		return nil, fmt.Errorf("sheet edit URL is empty")
	}
	var lastErr error
	for _, u := range exportURLs(editURL, gid) {
		f.logger.Info("try CSV URL", slog.String("url", u))
		body, err := f.get(ctx, u)
		if err != nil {
			lastErr = err
			f.logger.Error("fetch failed", slog.String("url", u), slog.Any("error", err))
			continue
		}
		if strings.TrimSpace(body) == "" {
			lastErr = fmt.Errorf("empty body from %s", u)
			continue
		}
		return decodeRows(body)
	}
	return nil, fmt.Errorf("CSV not loaded: %w", lastErr)
}

func (f *Fetcher) get(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")
	req.Header.Set("Accept", "text/csv,*/*;q=0.1")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// decodeRows maps each CSV record onto the header row, DictReader-style.
func decodeRows(body string) ([]map[string]string, error) {
	r := csv.NewReader(strings.NewReader(body))
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("csv header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}
	var rows []map[string]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv row: %w", err)
		}
		row := make(map[string]string, len(header))
		for i, name := range header {
			if i < len(rec) {
				row[name] = rec[i]
			} else {
				row[name] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}
