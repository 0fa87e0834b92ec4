package collect

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/go-logr/logr"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
)

const ErrorsFilename = "collection-errors.json"

type CollectionError struct {
	Collector string `json:"collector"`
	Unit      string `json:"unit,omitempty"`
	Path      string `json:"path,omitempty"`
	Message   string `json:"error"`

	err error
}

func (e CollectionError) Error() string {
	msg := e.Collector
	if e.Unit != "" {
		msg = fmt.Sprintf("%s %s", msg, e.Unit)
	}
	if e.Path != "" {
		msg = fmt.Sprintf("%s %s", msg, e.Path)
	}
	return fmt.Sprintf("%s: %s", msg, e.Message)
}

func (e CollectionError) Unwrap() error {
	return e.err
}

// ErrorRecorder collects failures that were isolated and did not stop the run.
// It is safe for concurrent use.
type ErrorRecorder struct {
	log logr.Logger

	mu   sync.Mutex
	errs []CollectionError
}

func NewErrorRecorder(log logr.Logger) *ErrorRecorder {
	return &ErrorRecorder{log: log}
}

// Record logs err as it happens and keeps it for the run summary.
func (r *ErrorRecorder) Record(collector string, unit string, path string, err error) {
	if err == nil {
		return
	}

	r.log.Error(err, "collection step failed", "collector", collector, "unit", unit, "path", path)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = append(r.errs, CollectionError{
		Collector: collector,
		Unit:      unit,
		Path:      path,
		Message:   err.Error(),
		err:       err,
	})
}

func (r *ErrorRecorder) Errors() []CollectionError {
	r.mu.Lock()
	defer r.mu.Unlock()

	errs := make([]CollectionError, len(r.errs))
	copy(errs, r.errs)
	return errs
}

func (r *ErrorRecorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.errs)
}

// Count returns the number of failures recorded by collector.
func (r *ErrorRecorder) Count(collector string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, e := range r.errs {
		if e.Collector == collector {
			n++
		}
	}
	return n
}

// Err aggregates every recorded failure, or returns nil when there were none.
func (r *ErrorRecorder) Err() error {
	var result *multierror.Error
	for _, e := range r.Errors() {
		result = multierror.Append(result, e)
	}
	return result.ErrorOrNil()
}

// Save writes the recorded failures to ErrorsFilename. Nothing is written when
// there were none.
func (r *ErrorRecorder) Save(tree *OutputTree) error {
	errs := r.Errors()
	if len(errs) == 0 {
		return nil
	}

	b, err := json.MarshalIndent(errs, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal collection errors")
	}
	return tree.SaveResult(ErrorsFilename, bytes.NewReader(b))
}
