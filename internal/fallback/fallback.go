// Package fallback delegates queries no intent rule matched to an external
// completion service, supplying a short textual summary of the dataset as
// context.
package fallback

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/salescope-dev/salescope/internal/dataset"
	"github.com/salescope-dev/salescope/internal/llm"
)

// apology is returned when the completion call fails. The failure is
// terminal for the query; there is no retry.
const apology = "I'm unable to process this query at the moment. Please try again later."

// Responder forwards unmatched queries to a completion provider.
type Responder struct {
	provider llm.Provider
	opts     llm.ChatOptions
	logger   *slog.Logger
}

// New creates a Responder using the given provider and chat options.
func New(provider llm.Provider, opts llm.ChatOptions, logger *slog.Logger) *Responder {
	return &Responder{provider: provider, opts: opts, logger: logger}
}

// Respond sends one completion request embedding the dataset summary and the
// raw query. All failure modes are converted to a displayable string.
func (r *Responder) Respond(ctx context.Context, store *dataset.Store, query string) string {
	messages := []llm.Message{
		{Role: "system", Content: systemPrompt()},
		{Role: "user", Content: userPrompt(store, query)},
	}

	resp, err := r.provider.Chat(ctx, messages, &r.opts)
	if err != nil {
		r.logger.Error("fallback completion failed", "error", err)
		return apology
	}
	return resp.Content
}

// systemPrompt fixes the analyst persona for the completion service.
func systemPrompt() string {
	return `You are an expert sales data analyst. Answer questions about the
provided sales dataset using only the information in the dataset summary.
Give the answer directly; do not reveal your reasoning or intermediate steps.
If the exact answer cannot be determined from the summary, say so and suggest
how the question might be refined.`
}

// userPrompt combines the dataset summary and the raw query.
func userPrompt(store *dataset.Store, query string) string {
	var sb strings.Builder
	sb.WriteString("Dataset Summary:\n")
	sb.WriteString(BuildContext(store))
	sb.WriteString("\nQuery: ")
	sb.WriteString(query)
	return sb.String()
}

// BuildContext renders the dataset summary sent with every fallback request:
// column names, row count, distinct product lines, the order date range, and
// a short insight digest.
func BuildContext(store *dataset.Store) string {
	var sb strings.Builder

	sb.WriteString("Columns: ")
	sb.WriteString(strings.Join(store.Columns(), ", "))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Rows: %d\n", store.Len()))

	lines := store.GroupCount(func(r dataset.Row) string { return r.ProductLine })
	names := make([]string, len(lines))
	for i, g := range lines {
		names[i] = g.Key
	}
	sb.WriteString("Product lines: ")
	sb.WriteString(strings.Join(names, ", "))
	sb.WriteString("\n")

	if min, max := store.MinDate(), store.MaxDate(); !min.IsZero() {
		sb.WriteString(fmt.Sprintf("Order dates: %s to %s\n",
			min.Format("2006-01-02"), max.Format("2006-01-02")))
	}

	writeDigest(&sb, store)
	return sb.String()
}

// writeDigest appends a few headline aggregates so the model can answer
// common questions without fabricating numbers.
func writeDigest(sb *strings.Builder, store *dataset.Store) {
	sales := func(r dataset.Row) dataset.Amount { return r.Sales }

	byYear := store.GroupSum(func(r dataset.Row) string {
		return fmt.Sprintf("%d", r.OrderDate.Year())
	}, sales)
	if len(byYear) > 0 {
		sb.WriteString("Sales by year: ")
		writeGroups(sb, byYear)
	}

	topCountries := dataset.NLargest(store.GroupSum(func(r dataset.Row) string {
		return r.Country
	}, sales), 3)
	if len(topCountries) > 0 {
		sb.WriteString("Top countries by sales: ")
		writeGroups(sb, topCountries)
	}

	topCustomers := dataset.NLargest(store.GroupSum(func(r dataset.Row) string {
		return r.CustomerName
	}, sales), 3)
	if len(topCustomers) > 0 {
		sb.WriteString("Top customers by sales: ")
		writeGroups(sb, topCustomers)
	}
}

func writeGroups(sb *strings.Builder, groups []dataset.Group) {
	for i, g := range groups {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(fmt.Sprintf("%s $%.2f", g.Key, g.Value))
	}
	sb.WriteString("\n")
}
