// Package dataset owns the loaded, type-normalized sales data and exposes
// the grouping and aggregation primitives the rest of the engine is built on.
//
// A Store is immutable after Load. All primitives walk rows in file order,
// so bucket order (and therefore tie-breaking in NLargest and ValueCounts)
// is deterministic: first-seen key wins.
package dataset

import (
	"sort"
	"time"
)

// Amount is a numeric cell that may be missing. Cells that fail numeric
// coercion at load time are kept with Valid=false and excluded from
// arithmetic aggregations; the row itself is retained.
type Amount struct {
	Value float64
	Valid bool
}

// Row is one sales-order line item. An order number is not unique per row:
// one order may span multiple line items.
type Row struct {
	OrderNumber     int
	OrderDate       time.Time
	CustomerName    string
	Country         string
	ProductLine     string
	Status          string
	QuantityOrdered Amount
	PriceEach       Amount
	Sales           Amount
}

// Group is one aggregation bucket.
type Group struct {
	Key   string  `json:"key"`
	Value float64 `json:"value"`
}

// Store holds the loaded dataset. It is safe for concurrent reads.
type Store struct {
	rows    []Row
	columns []string
	skipped int
}

// New constructs a Store from already-typed rows, for callers that do not
// load from a CSV file.
func New(columns []string, rows []Row) *Store {
	return &Store{rows: rows, columns: columns}
}

// Rows returns the underlying rows. Callers must not mutate them.
func (s *Store) Rows() []Row { return s.rows }

// Len returns the number of retained rows.
func (s *Store) Len() int { return len(s.rows) }

// Columns returns the header names from the source file, in file order.
func (s *Store) Columns() []string { return s.columns }

// Skipped returns the number of source rows dropped for unparseable dates.
func (s *Store) Skipped() int { return s.skipped }

// GroupSum sums amount(row) per key(row). Missing amounts are skipped.
// Buckets appear in first-seen row order.
func (s *Store) GroupSum(key func(Row) string, amount func(Row) Amount) []Group {
	sums := make(map[string]float64)
	var order []string
	for _, r := range s.rows {
		a := amount(r)
		if !a.Valid {
			continue
		}
		k := key(r)
		if _, seen := sums[k]; !seen {
			order = append(order, k)
		}
		sums[k] += a.Value
	}
	groups := make([]Group, 0, len(order))
	for _, k := range order {
		groups = append(groups, Group{Key: k, Value: sums[k]})
	}
	return groups
}

// GroupCount counts rows per key(row), in first-seen order.
func (s *Store) GroupCount(key func(Row) string) []Group {
	counts := make(map[string]int)
	var order []string
	for _, r := range s.rows {
		k := key(r)
		if _, seen := counts[k]; !seen {
			order = append(order, k)
		}
		counts[k]++
	}
	groups := make([]Group, 0, len(order))
	for _, k := range order {
		groups = append(groups, Group{Key: k, Value: float64(counts[k])})
	}
	return groups
}

// GroupCountDistinct counts distinct values of value(row) per key(row),
// in first-seen order.
func (s *Store) GroupCountDistinct(key, value func(Row) string) []Group {
	distinct := make(map[string]map[string]struct{})
	var order []string
	for _, r := range s.rows {
		k := key(r)
		set := distinct[k]
		if set == nil {
			set = make(map[string]struct{})
			distinct[k] = set
			order = append(order, k)
		}
		set[value(r)] = struct{}{}
	}
	groups := make([]Group, 0, len(order))
	for _, k := range order {
		groups = append(groups, Group{Key: k, Value: float64(len(distinct[k]))})
	}
	return groups
}

// ValueCounts counts rows per key(row) and returns buckets sorted by count
// descending. Ties keep first-seen order.
func (s *Store) ValueCounts(key func(Row) string) []Group {
	groups := s.GroupCount(key)
	sortDescending(groups)
	return groups
}

// NLargest returns the top n buckets by value descending. Ties keep the
// input (first-seen) order. The result has length <= n.
func NLargest(groups []Group, n int) []Group {
	out := make([]Group, len(groups))
	copy(out, groups)
	sortDescending(out)
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// FilterYear returns a view containing only rows whose order date falls in
// the given year. The view shares row storage with the parent store.
func (s *Store) FilterYear(year int) *Store {
	var rows []Row
	for _, r := range s.rows {
		if r.OrderDate.Year() == year {
			rows = append(rows, r)
		}
	}
	return &Store{rows: rows, columns: s.columns}
}

// Years returns the distinct order-date years present, ascending.
func (s *Store) Years() []int {
	seen := make(map[int]struct{})
	var years []int
	for _, r := range s.rows {
		y := r.OrderDate.Year()
		if _, ok := seen[y]; !ok {
			seen[y] = struct{}{}
			years = append(years, y)
		}
	}
	sort.Ints(years)
	return years
}

// MaxYear returns the most recent order-date year, or 0 for an empty store.
func (s *Store) MaxYear() int {
	years := s.Years()
	if len(years) == 0 {
		return 0
	}
	return years[len(years)-1]
}

// MinDate and MaxDate return the order-date range of the store.
func (s *Store) MinDate() time.Time {
	var min time.Time
	for _, r := range s.rows {
		if min.IsZero() || r.OrderDate.Before(min) {
			min = r.OrderDate
		}
	}
	return min
}

func (s *Store) MaxDate() time.Time {
	var max time.Time
	for _, r := range s.rows {
		if r.OrderDate.After(max) {
			max = r.OrderDate
		}
	}
	return max
}

// sortDescending orders groups by value descending, keeping the existing
// order for equal values.
func sortDescending(groups []Group) {
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Value > groups[j].Value
	})
}
