package feed

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/clbanning/mxj/v2"
	"golang.org/x/time/rate"
)

func init() {
	// Merge XML attributes into their element without the hyphen marker so
	// attribute and child values probe identically.
	mxj.PrependAttrWithHyphen(false)
}

// xmlCollectionPaths are the conventional locations of the item collection
// inside a parsed XML document, probed in order.
var xmlCollectionPaths = [][]string{
	{"rss", "channel", "item"},
	{"feed", "entry"},
	{"products", "product"},
	{"shop", "item"},
}

// Fetcher retrieves a remote feed and parses it into an opaque payload.
type Fetcher struct {
	client  *http.Client
	limiter *rate.Limiter
}

// NewFetcher wires an HTTP client and an outbound rate limiter; both have
// sensible defaults when nil.
func NewFetcher(client *http.Client, limiter *rate.Limiter) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Limit(2), 1)
	}
	return &Fetcher{client: client, limiter: limiter}
}

// Fetch performs an HTTP GET against feedURL and returns the parsed payload:
// decoded JSON as-is, or for XML the located item collection. It never
// returns a nil payload without an error.
func (f *Fetcher) Fetch(ctx context.Context, feedURL string) (any, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, &FormatError{URL: feedURL, Reason: "build request", Err: err}
	}
	req.Header.Set("User-Agent", "feedsync/1.0")
	req.Header.Set("Accept", "application/json, application/xml, text/xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &FormatError{URL: feedURL, Reason: "request feed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{URL: feedURL, StatusCode: resp.StatusCode, Status: resp.Status}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FormatError{URL: feedURL, Reason: "read body", Err: err}
	}

	contentType := strings.ToLower(resp.Header.Get("Content-Type"))
	switch {
	case strings.Contains(contentType, "json"):
		return decodeJSON(feedURL, body)
	case strings.Contains(contentType, "xml"):
		return decodeXML(feedURL, body)
	default:
		// Content type missing or unhelpful: try JSON first, then XML.
		if payload, err := decodeJSON(feedURL, body); err == nil {
			return payload, nil
		}
		payload, err := decodeXML(feedURL, body)
		if err != nil {
			return nil, &FormatError{URL: feedURL, Reason: "body is neither JSON nor XML"}
		}
		return payload, nil
	}
}

func decodeJSON(feedURL string, body []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var payload any
	if err := dec.Decode(&payload); err != nil {
		return nil, &FormatError{URL: feedURL, Reason: "parse JSON", Err: err}
	}
	if payload == nil {
		return nil, &FormatError{URL: feedURL, Reason: "JSON document is null"}
	}
	return payload, nil
}

func decodeXML(feedURL string, body []byte) (any, error) {
	parsed, err := mxj.NewMapXml(body)
	if err != nil {
		return nil, &FormatError{URL: feedURL, Reason: "parse XML", Err: err}
	}
	return locateXMLItems(map[string]any(parsed)), nil
}

// locateXMLItems finds the item collection in a parsed XML document. It
// probes the conventional feed paths, then the first array at the root, then
// the first array one level deeper, and finally wraps the whole document as
// a single-element collection so a degraded feed still yields items.
func locateXMLItems(doc map[string]any) []any {
	for _, path := range xmlCollectionPaths {
		if items, ok := digPath(doc, path); ok {
			return items
		}
	}

	if items, ok := firstArray(doc); ok {
		return items
	}

	for _, key := range sortedKeys(doc) {
		if nested, ok := doc[key].(map[string]any); ok {
			if items, ok := firstArray(nested); ok {
				return items
			}
		}
	}

	return []any{doc}
}

// digPath walks nested maps along path; the terminal value may be an array
// or a single element (a feed with one entry parses as a lone map).
func digPath(doc map[string]any, path []string) ([]any, bool) {
	current := any(doc)
	for _, key := range path {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = m[key]
		if !ok {
			return nil, false
		}
	}

	switch v := current.(type) {
	case []any:
		return v, true
	case map[string]any:
		return []any{v}, true
	default:
		return nil, false
	}
}

func firstArray(m map[string]any) ([]any, bool) {
	for _, key := range sortedKeys(m) {
		if arr, ok := m[key].([]any); ok {
			return arr, true
		}
	}
	return nil, false
}

// sortedKeys keeps collection probing deterministic across runs.
func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
