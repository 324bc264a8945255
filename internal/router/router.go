// Package router maps a free-text query to at most one aggregation function
// by ordered trigger-phrase matching.
//
// The dispatch table is an explicit ordered slice, not a map: matching stops
// at the first rule whose trigger set contains a substring of the normalized
// query, so declaration order is the documented tie-break when a query could
// textually match more than one rule.
package router

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/salescope-dev/salescope/internal/aggregate"
	"github.com/salescope-dev/salescope/internal/dataset"
)

// yearPattern matches a 4-digit year token (19xx or 20xx).
var yearPattern = regexp.MustCompile(`\b(19|20)\d{2}\b`)

// handler computes one statistic for a normalized query.
type handler func(s *dataset.Store, query string) (aggregate.Result, error)

type rule struct {
	intent   string
	triggers []string
	handle   handler
}

// Router dispatches queries against a fixed, ordered rule list.
type Router struct {
	rules []rule
}

// New builds the router with its rules in dispatch order.
func New() *Router {
	return &Router{rules: []rule{
		{
			intent:   "orders_by_month",
			triggers: []string{"orders by month", "monthly orders", "orders per month"},
			handle: func(s *dataset.Store, q string) (aggregate.Result, error) {
				return aggregate.OrdersByMonth(s, ExtractYear(q))
			},
		},
		{
			intent:   "total_orders_by_year",
			triggers: []string{"total orders", "number of orders", "orders by year", "orders per year"},
			handle: func(s *dataset.Store, q string) (aggregate.Result, error) {
				return aggregate.TotalOrdersByYear(s)
			},
		},
		{
			intent:   "customer_with_most_orders",
			triggers: []string{"most orders"},
			handle: func(s *dataset.Store, q string) (aggregate.Result, error) {
				return aggregate.CustomerWithMostOrders(s)
			},
		},
		{
			intent:   "top_customers_by_sales",
			triggers: []string{"top customers", "customers by sales", "best customers"},
			handle: func(s *dataset.Store, q string) (aggregate.Result, error) {
				return aggregate.TopCustomersBySales(s, aggregate.DefaultTopCustomers)
			},
		},
		{
			intent:   "product_line_sales",
			triggers: []string{"product line", "product lines"},
			handle: func(s *dataset.Store, q string) (aggregate.Result, error) {
				return aggregate.ProductLineSales(s)
			},
		},
		{
			intent:   "sales_by_country",
			triggers: []string{"sales by country", "country sales", "sales per country"},
			handle: func(s *dataset.Store, q string) (aggregate.Result, error) {
				return aggregate.SalesByCountry(s)
			},
		},
		{
			intent:   "order_status_distribution",
			triggers: []string{"status"},
			handle: func(s *dataset.Store, q string) (aggregate.Result, error) {
				return aggregate.OrderStatusDistribution(s)
			},
		},
		{
			intent:   "customers_by_country",
			triggers: []string{"customers by country", "customers per country", "customers in each country"},
			handle: func(s *dataset.Store, q string) (aggregate.Result, error) {
				return aggregate.CustomersByCountry(s)
			},
		},
	}}
}

// Normalize lower-cases and trims a query for matching and logging.
func Normalize(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}

// Route matches the query against the rule list in declaration order.
// It returns the computed result and true on a match; a matched handler
// that fails yields an error-kind result, never a fall-through. When no
// rule matches it returns a zero Result and false so the caller can defer
// to the fallback responder.
func (rt *Router) Route(s *dataset.Store, query string) (aggregate.Result, bool) {
	q := Normalize(query)
	for _, rule := range rt.rules {
		for _, trigger := range rule.triggers {
			if strings.Contains(q, trigger) {
				res, err := rule.handle(s, q)
				if err != nil {
					return aggregate.ErrorText(err), true
				}
				return res, true
			}
		}
	}
	return aggregate.Result{}, false
}

// Intents returns the intent names in dispatch order.
func (rt *Router) Intents() []string {
	names := make([]string, len(rt.rules))
	for i, r := range rt.rules {
		names[i] = r.intent
	}
	return names
}

// ExtractYear pulls the first 4-digit year token out of a query.
// Returns 0 when no year token is present.
func ExtractYear(query string) int {
	m := yearPattern.FindString(query)
	if m == "" {
		return 0
	}
	year, err := strconv.Atoi(m)
	if err != nil {
		return 0
	}
	return year
}
