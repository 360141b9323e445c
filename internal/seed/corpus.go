package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/MrWong99/hexforge/internal/categorize"
)

// DefaultCorpusURL is the public-domain text archive queried for books.
const DefaultCorpusURL = "https://archive.org"

// DefaultDateBound is the latest publication year accepted for books.
const DefaultDateBound = 1939

// maxDownload caps the size of one downloaded text.
const maxDownload = 8 << 20

// ErrNoText is returned by Fetch when an item has no usable text derivative.
var ErrNoText = errors.New("seed: no text derivative")

// Item is a search hit in the corpus.
type Item struct {
	Identifier string
	Title      string
	Date       string
}

// Corpus is the remote text collection collaborator.
type Corpus interface {
	Search(ctx context.Context, query string, rows int) ([]Item, error)
	Fetch(ctx context.Context, identifier string) (string, error)
}

// ArchiveClient implements [Corpus] against an archive.org compatible API:
// advancedsearch.php, metadata/{id} and download/{id}/{file}.
type ArchiveClient struct {
	base string
	http *http.Client
}

var _ Corpus = (*ArchiveClient)(nil)

// NewArchiveClient returns a client for base (DefaultCorpusURL if empty).
func NewArchiveClient(base string, timeout time.Duration) *ArchiveClient {
	if base == "" {
		base = DefaultCorpusURL
	}
	return &ArchiveClient{base: strings.TrimRight(base, "/"), http: &http.Client{Timeout: timeout}}
}

// Search runs an advanced search sorted by identifier.
func (c *ArchiveClient) Search(ctx context.Context, query string, rows int) ([]Item, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Add("fl[]", "identifier")
	q.Add("fl[]", "title")
	q.Add("fl[]", "date")
	q.Set("sort[]", "identifier asc")
	q.Set("rows", strconv.Itoa(rows))
	q.Set("output", "json")

	body, err := c.get(ctx, c.base+"/advancedsearch.php?"+q.Encode())
	if err != nil {
		return nil, fmt.Errorf("seed: search: %w", err)
	}
	docs := gjson.GetBytes(body, "response.docs")
	if !docs.IsArray() {
		return nil, fmt.Errorf("seed: search: unexpected response shape")
	}
	var items []Item
	for _, d := range docs.Array() {
		id := d.Get("identifier").String()
		if id == "" {
			continue
		}
		items = append(items, Item{
			Identifier: id,
			Title:      firstString(d.Get("title")),
			Date:       firstString(d.Get("date")),
		})
	}
	return items, nil
}

// Fetch downloads the preferred text derivative of identifier.
func (c *ArchiveClient) Fetch(ctx context.Context, identifier string) (string, error) {
	meta, err := c.get(ctx, c.base+"/metadata/"+url.PathEscape(identifier))
	if err != nil {
		return "", fmt.Errorf("seed: metadata %q: %w", identifier, err)
	}
	var names []string
	for _, n := range gjson.GetBytes(meta, "files.#.name").Array() {
		names = append(names, n.String())
	}
	name, ok := PickDerivative(names)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrNoText, identifier)
	}
	body, err := c.get(ctx, c.base+"/download/"+url.PathEscape(identifier)+"/"+url.PathEscape(name))
	if err != nil {
		return "", fmt.Errorf("seed: download %q: %w", name, err)
	}
	if strings.HasSuffix(name, ".hocr.html") {
		return categorize.VisibleText(string(body)), nil
	}
	return string(body), nil
}

func (c *ArchiveClient) get(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "hexforge-seed/1")
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %s", resp.Status)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxDownload))
}

func firstString(r gjson.Result) string {
	if r.IsArray() {
		if a := r.Array(); len(a) > 0 {
			return a[0].String()
		}
		return ""
	}
	return r.String()
}

// PickDerivative chooses the text file to download: a _djvu.txt first, then
// any other .txt except _scandata.txt, then a .hocr.html.
func PickDerivative(names []string) (string, bool) {
	for _, n := range names {
		if strings.HasSuffix(n, "_djvu.txt") {
			return n, true
		}
	}
	for _, n := range names {
		if strings.HasSuffix(n, ".txt") && !strings.HasSuffix(n, "_scandata.txt") {
			return n, true
		}
	}
	for _, n := range names {
		if strings.HasSuffix(n, ".hocr.html") {
			return n, true
		}
	}
	return "", false
}

// QueryVariants returns the search queries tried for expr, most specific
// first.
func QueryVariants(expr string, dateBound int) []string {
	date := fmt.Sprintf("date:[* TO %d-12-31]", dateBound)
	return []string{
		fmt.Sprintf("(%s) AND collection:(gutenberg) AND mediatype:(texts) AND %s", expr, date),
		fmt.Sprintf("(%s) AND collection:(americana OR europeanlibraries) AND mediatype:(texts) AND %s", expr, date),
		fmt.Sprintf("(%s) AND mediatype:(texts) AND %s", expr, date),
		fmt.Sprintf("(%s) AND mediatype:(texts) AND licenseurl:(*publicdomain*)", expr),
		fmt.Sprintf("(%s) AND mediatype:(texts)", expr),
	}
}

// denyKeywords excludes reference works and periodicals whose text is not
// narrative.
var denyKeywords = []string{
	"catalog", "catalogue", "index", "bibliography", "dictionary", "directory",
	"magazine", "journal", "bulletin", "proceedings", "report", "census",
	"gazetteer", "almanac", "manual", "handbook",
}

// Denied reports whether an item is excluded by the keyword denylist.
func Denied(it Item) bool {
	s := strings.ToLower(it.Title + " " + it.Identifier)
	for _, k := range denyKeywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
