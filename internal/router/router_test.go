package router

import (
	"strings"
	"testing"
	"time"

	"github.com/salescope-dev/salescope/internal/aggregate"
	"github.com/salescope-dev/salescope/internal/dataset"
)

func testStore() *dataset.Store {
	amount := func(v float64) dataset.Amount { return dataset.Amount{Value: v, Valid: true} }
	date := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}
	return dataset.New(
		[]string{"ORDERNUMBER", "ORDERDATE", "CUSTOMERNAME", "COUNTRY", "PRODUCTLINE", "STATUS", "SALES"},
		[]dataset.Row{
			{OrderNumber: 10100, OrderDate: date(2003, 2, 24), CustomerName: "Land of Toys", Country: "USA", ProductLine: "Classic Cars", Status: "Shipped", Sales: amount(3000)},
			{OrderNumber: 10101, OrderDate: date(2003, 5, 7), CustomerName: "Mini Gifts", Country: "France", ProductLine: "Planes", Status: "Shipped", Sales: amount(2500)},
			{OrderNumber: 10102, OrderDate: date(2004, 11, 2), CustomerName: "Mini Gifts", Country: "France", ProductLine: "Planes", Status: "Cancelled", Sales: amount(700)},
		},
	)
}

func TestRouteIntents(t *testing.T) {
	tests := []struct {
		query  string
		intent string
	}{
		{"Show me orders by month", "orders_by_month"},
		{"monthly orders please", "orders_by_month"},
		{"What are the total orders per year?", "total_orders_by_year"},
		{"number of orders placed", "total_orders_by_year"},
		{"Which customer placed the most orders?", "customer_with_most_orders"},
		{"top customers by revenue", "top_customers_by_sales"},
		{"best customers", "top_customers_by_sales"},
		{"sales per product line", "product_line_sales"},
		{"sales by country", "sales_by_country"},
		{"order status breakdown", "order_status_distribution"},
		{"customers by country", "customers_by_country"},
	}

	rt := New()
	s := testStore()
	for _, tt := range tests {
		res, ok := rt.Route(s, tt.query)
		if !ok {
			t.Errorf("Route(%q) did not match, want intent %s", tt.query, tt.intent)
			continue
		}
		if res.Kind != aggregate.KindMapping {
			t.Errorf("Route(%q) returned kind %d, want mapping", tt.query, res.Kind)
		}
	}
}

func TestRoutePrecedence(t *testing.T) {
	rt := New()
	s := testStore()

	// "orders by month" outranks "total orders" even when both phrases appear.
	res, ok := rt.Route(s, "total orders by month in 2003")
	if !ok {
		t.Fatal("expected a match")
	}
	keys := make([]string, len(res.Entries))
	for i, g := range res.Entries {
		keys[i] = g.Key
	}
	joined := strings.Join(keys, ",")
	if joined != "2,5" {
		t.Errorf("expected month buckets 2,5 for 2003, got %s", joined)
	}

	// "product line" is declared before "sales by country".
	res, ok = rt.Route(s, "product line sales by country")
	if !ok {
		t.Fatal("expected a match")
	}
	found := false
	for _, g := range res.Entries {
		if g.Key == "Classic Cars" {
			found = true
		}
	}
	if !found {
		t.Error("expected product-line buckets, got country buckets")
	}
}

func TestRouteNoMatch(t *testing.T) {
	rt := New()
	_, ok := rt.Route(testStore(), "what is the meaning of life?")
	if ok {
		t.Error("expected no rule to match")
	}
}

func TestRouteMatchedHandlerFailure(t *testing.T) {
	rt := New()
	res, ok := rt.Route(testStore(), "orders by month in 1999")
	if !ok {
		t.Fatal("a matched rule must not fall through on handler failure")
	}
	if res.Kind != aggregate.KindError {
		t.Fatalf("expected error-kind result, got %d", res.Kind)
	}
	if !strings.Contains(res.Text, "1999") {
		t.Errorf("error text should name the missing year, got %q", res.Text)
	}
}

func TestRouteCaseInsensitive(t *testing.T) {
	rt := New()
	_, ok := rt.Route(testStore(), "  TOTAL ORDERS  ")
	if !ok {
		t.Error("matching should be case-insensitive and trim whitespace")
	}
}

func TestNormalize(t *testing.T) {
	if got := Normalize("  Total Orders\n"); got != "total orders" {
		t.Errorf("Normalize = %q", got)
	}
}

func TestExtractYear(t *testing.T) {
	tests := []struct {
		query string
		want  int
	}{
		{"orders by month in 2003", 2003},
		{"orders by month for 1998", 1998},
		{"orders by month", 0},
		{"order 10100 by month", 0},
		{"orders in 2003 and 2004", 2003},
	}
	for _, tt := range tests {
		if got := ExtractYear(tt.query); got != tt.want {
			t.Errorf("ExtractYear(%q) = %d, want %d", tt.query, got, tt.want)
		}
	}
}

func TestIntentsOrder(t *testing.T) {
	got := New().Intents()
	want := []string{
		"orders_by_month",
		"total_orders_by_year",
		"customer_with_most_orders",
		"top_customers_by_sales",
		"product_line_sales",
		"sales_by_country",
		"order_status_distribution",
		"customers_by_country",
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d intents, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("intent %d = %s, want %s", i, got[i], want[i])
		}
	}
}
