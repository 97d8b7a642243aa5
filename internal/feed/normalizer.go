package feed

// collectionKeys are the conventional wrapper keys an object payload may
// hold its item array under, scanned in order.
var collectionKeys = []string{"products", "items", "entries", "data", "records", "results"}

// Normalize flattens a fetched payload into a slice of items. Arrays pass
// through, objects are scanned for a conventional collection key, and an
// object with no such key becomes a single-item slice — input is never
// discarded. An empty result is a valid "nothing to process" outcome.
func Normalize(payload any) []Item {
	switch v := payload.(type) {
	case nil:
		return []Item{}
	case []any:
		return toItems(v)
	case []Item:
		return v
	case map[string]any:
		for _, key := range collectionKeys {
			if arr, ok := v[key].([]any); ok {
				return toItems(arr)
			}
		}
		return []Item{Item(v)}
	default:
		return []Item{{"value": v}}
	}
}

func toItems(values []any) []Item {
	items := make([]Item, 0, len(values))
	for _, v := range values {
		if m, ok := v.(map[string]any); ok {
			items = append(items, Item(m))
			continue
		}
		// Scalar entries (e.g. an XML list of bare values) are kept, not dropped.
		items = append(items, Item{"value": v})
	}
	return items
}
