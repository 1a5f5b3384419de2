package batch

import (
	"bytes"
	"fmt"
	"time"

	"github.com/natefinch/atomic"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/meshconv/internal/convert"
)

// Report is the document written by WriteReport.
type Report struct {
	Generated time.Time        `yaml:"generated"`
	Summary   Summary          `yaml:"summary"`
	Results   []convert.Result `yaml:"results"`
}

// WriteReport writes a YAML report of results to path.
func WriteReport(path string, results []convert.Result) error {
	report := Report{
		Generated: time.Now().UTC().Truncate(time.Second),
		Summary:   Summarize(results),
		Results:   results,
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	return atomic.WriteFile(path, &buf)
}
