package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// Required columns in the source CSV. Extra columns are ignored.
const (
	colOrderNumber     = "ORDERNUMBER"
	colOrderDate       = "ORDERDATE"
	colCustomerName    = "CUSTOMERNAME"
	colCountry         = "COUNTRY"
	colProductLine     = "PRODUCTLINE"
	colStatus          = "STATUS"
	colQuantityOrdered = "QUANTITYORDERED"
	colPriceEach       = "PRICEEACH"
	colSales           = "SALES"
)

var requiredColumns = []string{
	colOrderNumber, colOrderDate, colCustomerName, colCountry,
	colProductLine, colStatus, colQuantityOrdered, colPriceEach, colSales,
}

// ErrNoRows indicates the source file contained a header but no data rows.
var ErrNoRows = errors.New("dataset contains no rows")

// dateLayouts covers the formats seen in sales exports, most-specific first.
var dateLayouts = []string{
	"1/2/2006 15:04",
	"1/2/2006 15:04:05",
	"1/2/2006",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Load reads and type-normalizes the sales CSV at path. Rows whose order
// date fails to parse are dropped (and counted in Skipped); rows with
// unparseable quantity, price, or sales keep the row with that field
// marked missing. The file is decoded as Windows-1252, which covers both
// plain ASCII and the legacy exports this dataset ships in.
func Load(path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(transform.NewReader(f, charmap.Windows1252.NewDecoder()))
	r.ReuseRecord = true
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read dataset header: %w", err)
	}

	idx := make(map[string]int, len(header))
	columns := make([]string, len(header))
	for i, name := range header {
		clean := strings.ToUpper(strings.TrimSpace(name))
		columns[i] = clean
		idx[clean] = i
	}
	for _, name := range requiredColumns {
		if _, ok := idx[name]; !ok {
			return nil, fmt.Errorf("dataset missing required column %s", name)
		}
	}

	store := &Store{columns: columns}
	line := 1
	for {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read dataset row %d: %w", line+1, err)
		}
		line++

		date, ok := parseDate(field(rec, idx[colOrderDate]))
		if !ok {
			store.skipped++
			continue
		}

		orderNumber, _ := strconv.Atoi(field(rec, idx[colOrderNumber]))
		store.rows = append(store.rows, Row{
			OrderNumber:     orderNumber,
			OrderDate:       date,
			CustomerName:    field(rec, idx[colCustomerName]),
			Country:         field(rec, idx[colCountry]),
			ProductLine:     field(rec, idx[colProductLine]),
			Status:          field(rec, idx[colStatus]),
			QuantityOrdered: parseAmount(field(rec, idx[colQuantityOrdered])),
			PriceEach:       parseAmount(field(rec, idx[colPriceEach])),
			Sales:           parseAmount(field(rec, idx[colSales])),
		})
	}

	if len(store.rows) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrNoRows)
	}

	return store, nil
}

func field(rec []string, i int) string {
	if i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func parseAmount(s string) Amount {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Amount{}
	}
	return Amount{Value: v, Valid: true}
}
