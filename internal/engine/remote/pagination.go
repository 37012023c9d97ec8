package remote

import "go.trai.ch/stash/internal/core/domain"

// Well-known response keys, checked in priority order.
var (
	itemKeys    = []string{"items", "data", "results"}
	countKeys   = []string{"total", "totalCount", "total_count", "count"}
	hasMoreKeys = []string{"hasMore", "has_more", "hasNextPage", "has_next_page"}
)

// Page is the pagination metadata extracted from a response.
type Page struct {
	Items      []domain.Value
	TotalCount int64
	TotalKnown bool
	HasNext    bool
}

// ExtractPage pulls the array payload, total count and continuation flag out
// of a normalized response. When the server provides no explicit continuation
// flag, HasNext is inferred from whether the returned page is full.
func ExtractPage(value domain.Value, pageSize int) Page {
	page := Page{Items: extractItems(value)}

	if total, ok := extractCount(value); ok {
		page.TotalCount = total
		page.TotalKnown = true
	}

	if hasNext, ok := extractHasMore(value); ok {
		page.HasNext = hasNext
	} else {
		page.HasNext = pageSize > 0 && len(page.Items) >= pageSize
	}
	return page
}

func extractItems(value domain.Value) []domain.Value {
	for _, key := range itemKeys {
		field, ok := value.Field(key)
		if !ok {
			continue
		}
		if arr, ok := field.AsArray(); ok {
			return arr
		}
	}
	return nil
}

func extractCount(value domain.Value) (int64, bool) {
	for _, key := range countKeys {
		if field, ok := value.Field(key); ok {
			if n, ok := asCount(field); ok {
				return n, true
			}
		}
	}

	// Fall back to a nested meta.total.
	if meta, ok := value.Field("meta"); ok {
		if field, ok := meta.Field("total"); ok {
			return asCount(field)
		}
	}
	return 0, false
}

func extractHasMore(value domain.Value) (bool, bool) {
	for _, key := range hasMoreKeys {
		if field, ok := value.Field(key); ok {
			if b, ok := field.AsBool(); ok {
				return b, true
			}
		}
	}

	if meta, ok := value.Field("meta"); ok {
		if field, ok := meta.Field("has_more"); ok {
			if b, ok := field.AsBool(); ok {
				return b, true
			}
		}
	}
	return false, false
}

// asCount accepts either numeric variant; servers are not consistent about
// integer encoding.
func asCount(v domain.Value) (int64, bool) {
	switch v.Kind() {
	case domain.KindInt:
		n, _ := v.AsInt()
		return n, true
	case domain.KindDouble:
		d, _ := v.AsDouble()
		return int64(d), true
	case domain.KindNull, domain.KindBool, domain.KindString, domain.KindArray, domain.KindObject:
		return 0, false
	default:
		return 0, false
	}
}
