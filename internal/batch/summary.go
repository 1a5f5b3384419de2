package batch

import (
	"fmt"
	"io"
	"time"

	"github.com/Faultbox/meshconv/internal/convert"
)

// Failure names a file that could not be converted.
type Failure struct {
	Source string `yaml:"source"`
	Error  string `yaml:"error"`
}

// Summary aggregates the results of a batch.
type Summary struct {
	Total     int           `yaml:"total"`
	Converted int           `yaml:"converted"`
	Failed    int           `yaml:"failed"`
	Textured  int           `yaml:"textured"`
	Warnings  int           `yaml:"warnings"`
	Elapsed   time.Duration `yaml:"elapsed"`
	Failures  []Failure     `yaml:"failures,omitempty"`
}

// Summarize counts results. Elapsed is the sum of job durations.
func Summarize(results []convert.Result) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		s.Elapsed += r.Duration
		s.Warnings += len(r.Warnings)
		if r.Failed() {
			s.Failed++
			s.Failures = append(s.Failures, Failure{Source: r.Source, Error: r.Error})
			continue
		}
		s.Converted++
		if r.Textured {
			s.Textured++
		}
	}
	return s
}

// OK reports whether every file converted.
func (s Summary) OK() bool {
	return s.Failed == 0
}

// Print writes a human readable summary to w.
func (s Summary) Print(w io.Writer) {
	fmt.Fprintf(w, "Converted %d of %d files (%d textured, %d warnings)\n", s.Converted, s.Total, s.Textured, s.Warnings)
	if len(s.Failures) == 0 {
		return
	}
	fmt.Fprintf(w, "Failed:\n")
	for _, f := range s.Failures {
		fmt.Fprintf(w, "  %s: %s\n", f.Source, f.Error)
	}
}
