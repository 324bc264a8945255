package aggregate

import (
	"testing"
	"time"

	"github.com/salescope-dev/salescope/internal/dataset"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func amount(v float64) dataset.Amount {
	return dataset.Amount{Value: v, Valid: true}
}

// testStore mirrors the shape of the real sales data: order 10100 spans two
// line items, customers repeat across orders and years.
func testStore() *dataset.Store {
	return dataset.New(
		[]string{"ORDERNUMBER", "ORDERDATE", "CUSTOMERNAME", "COUNTRY", "PRODUCTLINE", "STATUS", "QUANTITYORDERED", "PRICEEACH", "SALES"},
		[]dataset.Row{
			{OrderNumber: 10100, OrderDate: date(2003, 2, 24), CustomerName: "Land of Toys", Country: "USA", ProductLine: "Classic Cars", Status: "Shipped", Sales: amount(3000)},
			{OrderNumber: 10100, OrderDate: date(2003, 2, 24), CustomerName: "Land of Toys", Country: "USA", ProductLine: "Vintage Cars", Status: "Shipped", Sales: amount(1000)},
			{OrderNumber: 10101, OrderDate: date(2003, 5, 7), CustomerName: "Mini Gifts", Country: "France", ProductLine: "Classic Cars", Status: "Shipped", Sales: amount(2500)},
			{OrderNumber: 10102, OrderDate: date(2003, 5, 20), CustomerName: "Mini Gifts", Country: "France", ProductLine: "Planes", Status: "Resolved", Sales: amount(700)},
			{OrderNumber: 10103, OrderDate: date(2004, 1, 15), CustomerName: "Mini Gifts", Country: "France", ProductLine: "Planes", Status: "Cancelled", Sales: amount(500)},
			{OrderNumber: 10104, OrderDate: date(2004, 11, 2), CustomerName: "Euro Shopping", Country: "Spain", ProductLine: "Classic Cars", Status: "Shipped", Sales: amount(4000)},
			{OrderNumber: 10105, OrderDate: date(2004, 11, 12), CustomerName: "Euro Shopping", Country: "Spain", ProductLine: "Ships", Status: "Shipped", Sales: amount(1500)},
		},
	)
}

func entryMap(res Result) map[string]float64 {
	m := make(map[string]float64, len(res.Entries))
	for _, g := range res.Entries {
		m[g.Key] = g.Value
	}
	return m
}

func TestTotalOrdersByYear(t *testing.T) {
	res, err := TotalOrdersByYear(testStore())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Kind != KindMapping {
		t.Fatalf("expected mapping result, got kind %d", res.Kind)
	}

	counts := entryMap(res)
	// Order 10100 spans two line items but counts once.
	if counts["2003"] != 3 {
		t.Errorf("expected 3 distinct orders in 2003, got %v", counts["2003"])
	}
	if counts["2004"] != 3 {
		t.Errorf("expected 3 distinct orders in 2004, got %v", counts["2004"])
	}
}

func TestCustomerWithMostOrders(t *testing.T) {
	res, err := CustomerWithMostOrders(testStore())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Line-item count, not distinct orders: Mini Gifts has 3 rows.
	if len(res.Entries) != 1 {
		t.Fatalf("expected a single entry, got %d", len(res.Entries))
	}
	if res.Entries[0].Key != "Mini Gifts" || res.Entries[0].Value != 3 {
		t.Errorf("expected Mini Gifts:3, got %v", res.Entries[0])
	}
}

func TestCustomerWithMostOrdersEmptyStore(t *testing.T) {
	_, err := CustomerWithMostOrders(dataset.New(nil, nil))
	if err == nil {
		t.Fatal("expected error for empty store")
	}
}

func TestTopCustomersBySales(t *testing.T) {
	res, err := TopCustomersBySales(testStore(), 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(res.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(res.Entries))
	}
	// Euro Shopping 5500, Land of Toys 4000, Mini Gifts 3700.
	if res.Entries[0].Key != "Euro Shopping" || res.Entries[0].Value != 5500 {
		t.Errorf("expected Euro Shopping:5500 first, got %v", res.Entries[0])
	}
	if res.Entries[1].Key != "Land of Toys" || res.Entries[1].Value != 4000 {
		t.Errorf("expected Land of Toys:4000 second, got %v", res.Entries[1])
	}
}

func TestTopCustomersBySalesDefaultsToFive(t *testing.T) {
	res, err := TopCustomersBySales(testStore(), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Only three customers exist; the default limit of five keeps them all.
	if len(res.Entries) != 3 {
		t.Errorf("expected 3 entries, got %d", len(res.Entries))
	}
}

func TestProductLineSales(t *testing.T) {
	res, err := ProductLineSales(testStore())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sums := entryMap(res)
	if sums["Classic Cars"] != 9500 {
		t.Errorf("expected Classic Cars:9500, got %v", sums["Classic Cars"])
	}
	if sums["Planes"] != 1200 {
		t.Errorf("expected Planes:1200, got %v", sums["Planes"])
	}
}

func TestSalesByCountry(t *testing.T) {
	res, err := SalesByCountry(testStore())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sums := entryMap(res)
	if sums["USA"] != 4000 || sums["France"] != 3700 || sums["Spain"] != 5500 {
		t.Errorf("unexpected sums: %v", sums)
	}
}

func TestOrderStatusDistribution(t *testing.T) {
	res, err := OrderStatusDistribution(testStore())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.Entries[0].Key != "Shipped" || res.Entries[0].Value != 5 {
		t.Errorf("expected Shipped:5 first, got %v", res.Entries[0])
	}
}

func TestOrdersByMonth(t *testing.T) {
	res, err := OrdersByMonth(testStore(), 2003)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	counts := entryMap(res)
	if counts["2"] != 2 {
		t.Errorf("expected 2 line items in February 2003, got %v", counts["2"])
	}
	if counts["5"] != 2 {
		t.Errorf("expected 2 line items in May 2003, got %v", counts["5"])
	}
	if _, ok := counts["11"]; ok {
		t.Error("November belongs to 2004 and should be absent")
	}
}

func TestOrdersByMonthDefaultsToMaxYear(t *testing.T) {
	res, err := OrdersByMonth(testStore(), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	counts := entryMap(res)
	// 2004 is the most recent year: January and two November rows.
	if counts["1"] != 1 || counts["11"] != 2 {
		t.Errorf("unexpected month counts for 2004: %v", counts)
	}
}

func TestOrdersByMonthUnknownYear(t *testing.T) {
	_, err := OrdersByMonth(testStore(), 1999)
	if err == nil {
		t.Fatal("expected error for a year with no orders")
	}
}

func TestCustomersByCountry(t *testing.T) {
	res, err := CustomersByCountry(testStore())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	counts := entryMap(res)
	if counts["USA"] != 1 || counts["France"] != 1 || counts["Spain"] != 1 {
		t.Errorf("unexpected distinct customer counts: %v", counts)
	}
}

func TestErrorTextResult(t *testing.T) {
	res := ErrorText(errTest)
	if res.Kind != KindError {
		t.Errorf("expected error kind, got %d", res.Kind)
	}
	if res.Text != "Error processing query: boom" {
		t.Errorf("unexpected error text: %q", res.Text)
	}
}

var errTest = errBoom{}

type errBoom struct{}

func (errBoom) Error() string { return "boom" }
