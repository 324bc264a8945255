package pipeline

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/salescope-dev/salescope/internal/dataset"
	"github.com/salescope-dev/salescope/internal/fallback"
	"github.com/salescope-dev/salescope/internal/llm"
	"github.com/salescope-dev/salescope/internal/qlog"
)

type fakeProvider struct {
	calls   int
	content string
}

func (f *fakeProvider) Chat(ctx context.Context, messages []llm.Message, opts *llm.ChatOptions) (*llm.Response, error) {
	f.calls++
	return &llm.Response{Content: f.content, Model: "fake"}, nil
}

func (f *fakeProvider) Heartbeat(ctx context.Context) error { return nil }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testStore() *dataset.Store {
	amount := func(v float64) dataset.Amount { return dataset.Amount{Value: v, Valid: true} }
	date := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}
	return dataset.New(
		[]string{"ORDERNUMBER", "ORDERDATE", "CUSTOMERNAME", "COUNTRY", "PRODUCTLINE", "STATUS", "SALES"},
		[]dataset.Row{
			{OrderNumber: 10100, OrderDate: date(2003, 2, 24), CustomerName: "Land of Toys", Country: "USA", ProductLine: "Classic Cars", Status: "Shipped", Sales: amount(1000)},
			{OrderNumber: 10101, OrderDate: date(2003, 5, 7), CustomerName: "Mini Gifts", Country: "France", ProductLine: "Planes", Status: "Shipped", Sales: amount(500)},
		},
	)
}

func testPipeline(t *testing.T, provider llm.Provider, opts ...Option) (*Pipeline, *qlog.Logger) {
	t.Helper()
	log := qlog.New(filepath.Join(t.TempDir(), "query_log.csv"))
	responder := fallback.New(provider, llm.ChatOptions{}, discardLogger())
	return New(testStore(), responder, log, discardLogger(), opts...), log
}

func TestAnswerMatchedQuery(t *testing.T) {
	provider := &fakeProvider{}
	p, _ := testPipeline(t, provider)

	got := p.Answer(context.Background(), "Sales by country")
	want := "Results:\nUSA    : 1000\nFrance : 500"
	if got != want {
		t.Errorf("Answer =\n%q\nwant\n%q", got, want)
	}
	if provider.calls != 0 {
		t.Errorf("matched query must not reach the fallback, got %d calls", provider.calls)
	}
}

func TestAnswerUnmatchedQueryUsesFallbackOnce(t *testing.T) {
	provider := &fakeProvider{content: "Not in the dataset."}
	p, _ := testPipeline(t, provider)

	got := p.Answer(context.Background(), "what is the weather today?")
	if got != "Not in the dataset." {
		t.Errorf("Answer = %q", got)
	}
	if provider.calls != 1 {
		t.Errorf("expected exactly one fallback call, got %d", provider.calls)
	}
}

func TestAnswerLogsNormalizedQuery(t *testing.T) {
	fixed := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	p, log := testPipeline(t, &fakeProvider{}, WithClock(func() time.Time { return fixed }))

	p.Answer(context.Background(), "  Sales BY Country  ")

	entries, err := log.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected one log entry, got %d", len(entries))
	}
	if entries[0].Query != "sales by country" {
		t.Errorf("logged query = %q, want normalized form", entries[0].Query)
	}
	if !entries[0].Timestamp.Equal(fixed) {
		t.Errorf("logged timestamp = %v, want %v", entries[0].Timestamp, fixed)
	}
	if !strings.HasPrefix(entries[0].Response, "Results:") {
		t.Errorf("logged response = %q", entries[0].Response)
	}
}

func TestAnswerIdempotent(t *testing.T) {
	p, log := testPipeline(t, &fakeProvider{})

	first := p.Answer(context.Background(), "total orders")
	second := p.Answer(context.Background(), "total orders")
	if first != second {
		t.Errorf("repeated queries should produce identical responses:\n%q\n%q", first, second)
	}

	entries, err := log.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("each call appends one entry, got %d", len(entries))
	}
}

func TestAnswerSurvivesLogFailure(t *testing.T) {
	// Point the log at a path whose parent is a file so every append fails.
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	log := qlog.New(filepath.Join(blocker, "query_log.csv"))
	responder := fallback.New(&fakeProvider{}, llm.ChatOptions{}, discardLogger())
	p := New(testStore(), responder, log, discardLogger())

	got := p.Answer(context.Background(), "sales by country")
	if !strings.HasPrefix(got, "Results:") {
		t.Errorf("a failed log append must not suppress the answer, got %q", got)
	}
}

func TestAnswerWithoutRecording(t *testing.T) {
	p, log := testPipeline(t, &fakeProvider{}, WithoutRecording())

	p.Answer(context.Background(), "sales by country")

	if _, err := log.ReadAll(); err == nil {
		t.Error("recording disabled, log should remain empty")
	}
}

func TestQueryLogEmpty(t *testing.T) {
	p, _ := testPipeline(t, &fakeProvider{})
	if got := p.QueryLog(); got != qlog.NoLogs {
		t.Errorf("QueryLog = %q, want %q", got, qlog.NoLogs)
	}
}

func TestQueryLogAfterAnswer(t *testing.T) {
	p, _ := testPipeline(t, &fakeProvider{})

	p.Answer(context.Background(), "total orders")

	got := p.QueryLog()
	if !strings.Contains(got, "Query: total orders") {
		t.Errorf("QueryLog = %q", got)
	}
}
