package feed

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Item is one raw record from a parsed feed. Shapes vary per source, so
// every field is read through an ordered first-match-wins extractor instead
// of ad hoc probing; the fallback order below is the policy, not an accident.
type Item map[string]any

// VariantIdentityStrategy decides how an item's external variant id is
// derived when the feed carries no explicit one.
type VariantIdentityStrategy int

const (
	// FallbackToProductID reuses the product's external id for its variant.
	// Single-variant feeds rarely carry a distinct variant id, so this is
	// the default; it deliberately collapses product and variant identity.
	FallbackToProductID VariantIdentityStrategy = iota
	// ExplicitOnly accepts only an id actually present on the item.
	ExplicitOnly
)

var (
	productIDKeys   = []string{"id", "product_id", "sku"}
	variantIDKeys   = []string{"variant_id", "sku"}
	titleKeys       = []string{"title", "name"}
	descriptionKeys = []string{"body_html", "description"}
)

// ExternalProductID derives the reconciliation key for the item. The second
// return is false when no candidate field is present, which marks the item
// as skippable.
func (it Item) ExternalProductID() (string, bool) {
	return it.firstString(productIDKeys)
}

// ExternalVariantID derives the variant-level reconciliation key: an
// explicit variant_id or sku, else the first nested variant's id, else —
// under FallbackToProductID — the product's own external id.
func (it Item) ExternalVariantID(strategy VariantIdentityStrategy) (string, bool) {
	if id, ok := it.firstString(variantIDKeys); ok {
		return id, true
	}

	if variants := it.Variants(); len(variants) > 0 {
		if id, ok := variants[0].firstString([]string{"id", "variant_id", "sku"}); ok {
			return id, true
		}
	}

	if strategy == FallbackToProductID {
		return it.ExternalProductID()
	}
	return "", false
}

// Title returns the display title, falling back from title to name.
func (it Item) Title() string {
	s, _ := it.firstString(titleKeys)
	return s
}

// Handle returns the item's slug, derived from the title when absent.
func (it Item) Handle() string {
	if s, ok := it.firstString([]string{"handle"}); ok {
		return s
	}
	return Slugify(it.Title())
}

// Status returns the item's status, defaulting to active.
func (it Item) Status() string {
	if s, ok := it.firstString([]string{"status"}); ok {
		return s
	}
	return "active"
}

// DescriptionHTML returns the long description, preferring body_html.
func (it Item) DescriptionHTML() string {
	s, _ := it.firstString(descriptionKeys)
	return s
}

// Vendor returns the vendor name.
func (it Item) Vendor() string {
	s, _ := it.firstString([]string{"vendor"})
	return s
}

// ProductType returns the product type.
func (it Item) ProductType() string {
	s, _ := it.firstString([]string{"product_type"})
	return s
}

// SKU returns the stock keeping unit.
func (it Item) SKU() string {
	s, _ := it.firstString([]string{"sku"})
	return s
}

// Price returns the item price, tolerating string and numeric encodings.
func (it Item) Price() float64 {
	f, _ := it.floatField("price")
	return f
}

// CompareAtPrice returns the strike-through price when present.
func (it Item) CompareAtPrice() *float64 {
	if f, ok := it.floatField("compare_at_price"); ok {
		return &f
	}
	return nil
}

// Variants returns the nested variants array, if any.
func (it Item) Variants() []Item {
	raw, ok := it["variants"]
	if !ok {
		return nil
	}
	switch v := raw.(type) {
	case []any:
		return toItems(v)
	case map[string]any:
		// XML feeds encode a single <variants> child as a lone map.
		return []Item{Item(v)}
	default:
		return nil
	}
}

// firstString returns the first non-empty scalar among keys, stringified.
func (it Item) firstString(keys []string) (string, bool) {
	for _, key := range keys {
		if s, ok := stringify(it[key]); ok {
			return s, true
		}
	}
	return "", false
}

func (it Item) floatField(key string) (float64, bool) {
	switch v := it[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func stringify(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		trimmed := strings.TrimSpace(s)
		return trimmed, trimmed != ""
	case json.Number:
		return s.String(), true
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64), true
	case int:
		return strconv.Itoa(s), true
	case int64:
		return strconv.FormatInt(s, 10), true
	default:
		return "", false
	}
}

// Slugify lowercases s and collapses runs of non-alphanumerics into single
// hyphens, producing a URL-safe handle.
func Slugify(s string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
