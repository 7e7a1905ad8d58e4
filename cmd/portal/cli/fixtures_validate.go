package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/dtca-portal/dtca-portal/internal/fixtures"
)

// FixturesValidateOptions defines the flags of the validate-fixtures command.
type FixturesValidateOptions struct {
	Path       string
	JSONOutput bool
	Stdout     io.Writer
	Stderr     io.Writer
}

// FixturesValidateSummary is the JSON shape printed with -json.
type FixturesValidateSummary struct {
	OK     bool           `json:"ok"`
	Error  string         `json:"error,omitempty"`
	Counts map[string]int `json:"counts,omitempty"`
}

// ValidateFixturesCommand decodes the fixture file and reports the outcome.
// It returns the process exit code.
func ValidateFixturesCommand(opts FixturesValidateOptions) int {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if opts.Path == "" {
		_, _ = fmt.Fprintln(opts.Stderr, "validate-fixtures: path is required")
		return 1
	}

	ds, err := fixtures.LoadFile(opts.Path)
	summary := FixturesValidateSummary{OK: err == nil}
	if err != nil {
		summary.Error = err.Error()
	} else {
		summary.Counts = countRecords(ds)
	}

	if opts.JSONOutput {
		if encErr := json.NewEncoder(opts.Stdout).Encode(summary); encErr != nil {
			_, _ = fmt.Fprintf(opts.Stderr, "validate-fixtures: encode json: %v\n", encErr)
			return 1
		}
	} else {
		renderValidateHuman(opts.Stdout, opts.Stderr, opts.Path, summary)
	}
	if !summary.OK {
		return 1
	}
	return 0
}

func countRecords(ds *fixtures.Dataset) map[string]int {
	return map[string]int{
		"students":               len(ds.Students),
		"overview.enrollment":    len(ds.Overview.Enrollment),
		"overview.activities":    len(ds.Overview.Activities),
		"finance.revenue":        len(ds.Finance.Revenue),
		"finance.payment_status": len(ds.Finance.PaymentStatus),
		"marketing.funnel":       len(ds.Marketing.Funnel),
		"marketing.campaigns":    len(ds.Marketing.Campaigns),
		"admissions.pipeline":    len(ds.Admissions.Pipeline),
		"admissions.timeline":    len(ds.Admissions.Timeline),
		"enrollment.cohorts":     len(ds.Enrollment.Cohorts),
		"enrollment.completions": len(ds.Enrollment.Completions),
	}
}

func renderValidateHuman(out, errOut io.Writer, path string, summary FixturesValidateSummary) {
	if !summary.OK {
		_, _ = fmt.Fprintf(errOut, "validate-fixtures: %s: %s\n", path, summary.Error)
		return
	}
	_, _ = fmt.Fprintf(out, "ok %s\n", path)
	keys := make([]string, 0, len(summary.Counts))
	for key := range summary.Counts {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		_, _ = fmt.Fprintf(out, "  %-24s %d\n", key, summary.Counts[key])
	}
}
