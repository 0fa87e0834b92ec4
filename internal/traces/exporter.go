package traces

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/replicatedhq/pulsar-diag/pkg/constants"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	_        trace.SpanExporter = (*Exporter)(nil)
	once     sync.Once
	exporter *Exporter
	printer  = message.NewPrinter(language.English)
)

// GetExporterInstance returns the process wide exporter. Spans are kept in memory
// for the lifetime of the process, which suits one-shot CLI runs only.
func GetExporterInstance() *Exporter {
	once.Do(func() {
		exporter = &Exporter{}
	})
	return exporter
}

// Exporter is a trace.SpanExporter that caches spans for GetSummary.
type Exporter struct {
	spansMu  sync.Mutex
	allSpans []trace.ReadOnlySpan

	stoppedMu sync.RWMutex
	stopped   bool
}

func (e *Exporter) ExportSpans(ctx context.Context, spans []trace.ReadOnlySpan) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	e.stoppedMu.RLock()
	stopped := e.stopped
	e.stoppedMu.RUnlock()
	if stopped || len(spans) == 0 {
		return nil
	}

	e.spansMu.Lock()
	defer e.spansMu.Unlock()
	e.allSpans = append(e.allSpans, spans...)
	return nil
}

type spanTiming struct {
	duration time.Duration
	failed   bool
}

func isType(stub *tracetest.SpanStub, t string) bool {
	for _, attr := range stub.Attributes {
		if string(attr.Key) == "type" && attr.Value.AsString() == t {
			return true
		}
	}
	return false
}

// GetSummary renders the duration of every collector and unit step seen so far.
// Call it after the run span has ended.
func (e *Exporter) GetSummary() string {
	e.spansMu.Lock()
	stubs := tracetest.SpanStubsFromReadOnlySpans(e.allSpans)
	e.spansMu.Unlock()

	if len(stubs) == 0 {
		return ""
	}

	collectors := map[string]spanTiming{}
	units := map[string]spanTiming{}
	totalDuration := time.Duration(0)

	for i := range stubs {
		stub := &stubs[i]
		timing := spanTiming{
			duration: stub.EndTime.Sub(stub.StartTime),
			failed:   stub.Status.Code == codes.Error,
		}
		switch {
		case stub.Name == constants.ROOT_SPAN_NAME:
			totalDuration = timing.duration
		case isType(stub, constants.COLLECTOR_SPAN_TYPE):
			collectors[stub.Name] = timing
		case isType(stub, constants.UNIT_SPAN_TYPE):
			units[stub.Name] = timing
		}
	}

	sb := strings.Builder{}
	writeSection(&sb, "Collectors summary", "No collectors executed", collectors)
	sb.WriteString("\n")
	writeSection(&sb, "Units summary", "No units collected", units)
	sb.WriteString(printer.Sprintf("\nDuration: %dms\n", int64(totalDuration/time.Millisecond)))

	return sb.String()
}

func writeSection(sb *strings.Builder, title string, empty string, summary map[string]spanTiming) {
	sb.WriteString("========= " + title + " ==========\n")
	if len(summary) == 0 {
		sb.WriteString(empty + "\n")
		return
	}

	padding, keys := sortedKeysAndPadding(summary)
	for _, name := range keys {
		timing := summary[name]
		suffix := ""
		if timing.failed {
			suffix = " (failed)"
		}
		sb.WriteString(printer.Sprintf("%-*s : %dms%s\n", padding, name, int64(timing.duration/time.Millisecond), suffix))
	}
}

// sortedKeysAndPadding orders names by descending duration, then by name.
func sortedKeysAndPadding(summary map[string]spanTiming) (int, []string) {
	keys := make([]string, 0, len(summary))
	padding := 0
	for k := range summary {
		if len(k) > padding {
			padding = len(k)
		}
		keys = append(keys, k)
	}
	sort.Slice(keys, func(l, r int) bool {
		if summary[keys[l]].duration != summary[keys[r]].duration {
			return summary[keys[l]].duration > summary[keys[r]].duration
		}
		return keys[l] < keys[r]
	})
	return padding, keys
}

// Shutdown stops collecting spans and drops the cached ones.
func (e *Exporter) Shutdown(ctx context.Context) error {
	e.stoppedMu.Lock()
	e.stopped = true
	e.stoppedMu.Unlock()

	e.Reset()

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	return nil
}

func (e *Exporter) Reset() {
	e.spansMu.Lock()
	e.allSpans = e.allSpans[:0]
	e.spansMu.Unlock()
}
