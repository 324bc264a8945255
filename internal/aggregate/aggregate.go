// Package aggregate provides the fixed catalogue of deterministic statistics
// computed over the sales dataset. Every function is pure over the store and
// returns a tagged Result consumed uniformly by the output formatter.
package aggregate

import (
	"fmt"
	"strconv"

	"github.com/salescope-dev/salescope/internal/dataset"
)

// Kind discriminates the shape of a Result.
type Kind int

const (
	// KindMapping is an ordered set of key/value buckets.
	KindMapping Kind = iota
	// KindScalar is a single numeric value.
	KindScalar
	// KindText is a plain display string.
	KindText
	// KindError is a failure message surfaced as the response text.
	KindError
)

// Result is the tagged union returned by aggregation functions and the
// fallback responder. Exactly one field beyond Kind is meaningful.
type Result struct {
	Kind    Kind
	Entries []dataset.Group
	Scalar  float64
	Text    string
}

// Mapping wraps ordered buckets as a Result.
func Mapping(groups []dataset.Group) Result {
	return Result{Kind: KindMapping, Entries: groups}
}

// Scalar wraps a numeric value as a Result.
func Scalar(v float64) Result {
	return Result{Kind: KindScalar, Scalar: v}
}

// Text wraps a display string as a Result.
func Text(s string) Result {
	return Result{Kind: KindText, Text: s}
}

// ErrorText wraps a failure as a Result that still renders as a response.
func ErrorText(err error) Result {
	return Result{Kind: KindError, Text: fmt.Sprintf("Error processing query: %v", err)}
}

// DefaultTopCustomers is the number of customers returned by
// TopCustomersBySales when no explicit limit is given.
const DefaultTopCustomers = 5

// TotalOrdersByYear counts distinct order numbers per order-date year.
func TotalOrdersByYear(s *dataset.Store) (Result, error) {
	groups := s.GroupCountDistinct(
		func(r dataset.Row) string { return strconv.Itoa(r.OrderDate.Year()) },
		func(r dataset.Row) string { return strconv.Itoa(r.OrderNumber) },
	)
	return Mapping(groups), nil
}

// CustomerWithMostOrders returns the single customer with the highest
// line-item count, mapped to that count. Line items, not distinct orders.
func CustomerWithMostOrders(s *dataset.Store) (Result, error) {
	counts := s.ValueCounts(func(r dataset.Row) string { return r.CustomerName })
	if len(counts) == 0 {
		return Result{}, fmt.Errorf("no customer data in dataset")
	}
	return Mapping(counts[:1]), nil
}

// TopCustomersBySales sums sales per customer and keeps the top n.
func TopCustomersBySales(s *dataset.Store, n int) (Result, error) {
	if n <= 0 {
		n = DefaultTopCustomers
	}
	sums := s.GroupSum(
		func(r dataset.Row) string { return r.CustomerName },
		func(r dataset.Row) dataset.Amount { return r.Sales },
	)
	return Mapping(dataset.NLargest(sums, n)), nil
}

// ProductLineSales sums sales per product line.
func ProductLineSales(s *dataset.Store) (Result, error) {
	return Mapping(s.GroupSum(
		func(r dataset.Row) string { return r.ProductLine },
		func(r dataset.Row) dataset.Amount { return r.Sales },
	)), nil
}

// SalesByCountry sums sales per country.
func SalesByCountry(s *dataset.Store) (Result, error) {
	return Mapping(s.GroupSum(
		func(r dataset.Row) string { return r.Country },
		func(r dataset.Row) dataset.Amount { return r.Sales },
	)), nil
}

// OrderStatusDistribution counts line items per status, descending.
func OrderStatusDistribution(s *dataset.Store) (Result, error) {
	return Mapping(s.ValueCounts(func(r dataset.Row) string { return r.Status })), nil
}

// OrdersByMonth counts line items per calendar month within one year.
// A zero year means "the most recent year in the dataset".
func OrdersByMonth(s *dataset.Store, year int) (Result, error) {
	if year == 0 {
		year = s.MaxYear()
	}
	view := s.FilterYear(year)
	if view.Len() == 0 {
		return Result{}, fmt.Errorf("no orders recorded in %d", year)
	}
	return Mapping(view.GroupCount(func(r dataset.Row) string {
		return strconv.Itoa(int(r.OrderDate.Month()))
	})), nil
}

// CustomersByCountry counts distinct customers per country.
func CustomersByCountry(s *dataset.Store) (Result, error) {
	return Mapping(s.GroupCountDistinct(
		func(r dataset.Row) string { return r.Country },
		func(r dataset.Row) string { return r.CustomerName },
	)), nil
}
