package output

import (
	"context"
	"strings"

	"github.com/salmonumbrella/reshape-cli/internal/table"
)

// ApplyAgentOptions applies --result-sort-by/--result-desc/--result-limit to
// a table. It returns t itself when no option is set, a sorted and trimmed
// copy otherwise. Sorting on an unknown column leaves the order unchanged.
func ApplyAgentOptions(ctx context.Context, t *table.Table) *table.Table {
	if t == nil {
		return t
	}

	limit := LimitFromContext(ctx)
	sortBy, desc := SortFromContext(ctx)
	if limit == 0 && sortBy == "" {
		return t
	}

	out := t.Clone()
	if sortBy != "" {
		if header, ok := findHeader(out, sortBy); ok {
			out.SortBy(header, desc)
		}
	}
	return out.Head(limit)
}

// findHeader resolves name against the headers, ignoring case, underscores
// and dashes when there is no exact match.
func findHeader(t *table.Table, name string) (string, bool) {
	if t.HasHeader(name) {
		return name, true
	}
	norm := normalizeName(name)
	for _, h := range t.Headers() {
		if normalizeName(h) == norm {
			return h, true
		}
	}
	return "", false
}

func normalizeName(s string) string {
	return strings.ToLower(strings.ReplaceAll(strings.ReplaceAll(s, "_", ""), "-", ""))
}
