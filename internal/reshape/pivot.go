// Package reshape converts tables between long (one fact per row) and wide
// (one subject per row) layouts. Both operations return a new table and leave
// their input untouched.
package reshape

import (
	"github.com/salmonumbrella/reshape-cli/internal/table"
)

type group struct {
	id     any
	record *table.Record
}

// Pivot groups rows by the value under groupKey and spreads each group into a
// single row whose columns are the values under columnKey and whose cells are
// the values under valueKey.
//
// When two rows of a group share a column value the later row wins. The
// output starts with groupKey, followed by the pivoted columns in the order
// they were first seen; rows follow the order each group was first seen.
// Sort or filter the input first when a different column order is needed.
func Pivot(t *table.Table, groupKey, columnKey, valueKey string) *table.Table {
	groups := table.NewOrderedMap[table.Key, *group]()
	for _, row := range t.Rows() {
		id := row[groupKey]
		k := table.KeyOf(id)
		g, ok := groups.Get(k)
		if !ok {
			g = &group{id: id, record: table.NewRecord()}
			groups.Set(k, g)
		}
		g.record.Set(table.Text(row[columnKey]), row[valueKey])
	}

	records := make([]*table.Record, 0, groups.Len())
	groups.Each(func(_ table.Key, g *group) {
		rec := table.NewRecord()
		rec.Set(groupKey, g.id)
		g.record.Each(func(col string, v any) {
			if col == groupKey {
				return
			}
			rec.Set(col, v)
		})
		records = append(records, rec)
	})

	if len(records) == 0 {
		out, _ := table.New([]string{groupKey})
		return out
	}
	return table.FromRecords(records)
}
