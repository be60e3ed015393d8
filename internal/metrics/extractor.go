// Package metrics pulls quantitative results out of phase documents and
// attaches them to the records they support. Metrics are provenance
// annotations: append-only once attached, never interpreted.
package metrics

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/montanaflynn/stats"

	"github.com/quireproject/quire/internal/model"
	"github.com/quireproject/quire/internal/registry"
)

// Extract parses METRIC lines from a phase's result document. A metric line
// is pipe-delimited like a record header:
//
//	METRIC chi_square | Value: 38.2 | N: 540 | P: 0.0008 | Attach: C101
//
// exists reports whether a record id is present in the corpus. A metric
// declared against a missing id fails softly: phases are often processed
// before the record they justify is written.
func Extract(ph *model.Phase, exists func(string) bool) ([]model.Metric, []model.Finding) {
	var out []model.Metric
	var findings []model.Finding

	for i, line := range strings.Split(ph.Body, "\n") {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "METRIC ") {
			continue
		}
		lineNo := ph.Origin.BodyLine + i

		m, errs := parseMetricLine(trimmed)
		if len(errs) > 0 {
			for _, msg := range errs {
				findings = append(findings, model.Finding{
					Code:     model.CodeParseError,
					Severity: model.SeverityWarning,
					RecordID: ph.ID,
					File:     ph.Origin.File,
					Line:     lineNo,
					Message:  msg + "; metric dropped",
				})
			}
			continue
		}

		m.Phase = ph.ID
		m.Origin = model.Origin{File: ph.Origin.File, Line: lineNo}

		// Metrics attach to records only. A phase slug or other token
		// would pass an existence check but land where no view reads it.
		if _, ok := registry.InferKind(m.Attach); !ok {
			findings = append(findings, model.Finding{
				Code:     model.CodeTypeMismatch,
				Severity: model.SeverityWarning,
				RecordID: ph.ID,
				Related:  m.Attach,
				File:     ph.Origin.File,
				Line:     lineNo,
				Message:  fmt.Sprintf("phase %s attaches metric %s to %s: target is not a claim or fit id; metric dropped", ph.ID, m.Name, m.Attach),
			})
			continue
		}

		if !exists(m.Attach) {
			findings = append(findings, model.Finding{
				Code:     model.CodeDanglingRef,
				Severity: model.SeverityWarning,
				RecordID: ph.ID,
				Related:  m.Attach,
				File:     ph.Origin.File,
				Line:     lineNo,
				Message:  fmt.Sprintf("phase %s attaches metric %s to %s: target not found", ph.ID, m.Name, m.Attach),
			})
			continue
		}
		out = append(out, m)
	}

	return out, findings
}

func parseMetricLine(line string) (model.Metric, []string) {
	var m model.Metric
	var errs []string

	segments := strings.Split(line, "|")
	head := strings.Fields(strings.TrimSpace(segments[0]))
	if len(head) != 2 {
		return m, []string{fmt.Sprintf("metric line needs exactly one statistic name, got %q", segments[0])}
	}
	m.Name = head[1]

	hasValue := false
	for _, seg := range segments[1:] {
		key, value, found := strings.Cut(strings.TrimSpace(seg), ":")
		if !found {
			errs = append(errs, fmt.Sprintf("metric segment %q is not Key: Value", strings.TrimSpace(seg)))
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)

		switch key {
		case "value":
			v, err := strconv.ParseFloat(value, 64)
			if err != nil {
				errs = append(errs, fmt.Sprintf("metric value %q is not numeric", value))
				continue
			}
			m.Value = v
			hasValue = true
		case "n":
			n, err := strconv.Atoi(value)
			if err != nil || n < 0 {
				errs = append(errs, fmt.Sprintf("sample size %q is not a non-negative integer", value))
				continue
			}
			m.SampleSize = n
		case "p":
			p, err := strconv.ParseFloat(value, 64)
			if err != nil || p < 0 || p > 1 {
				errs = append(errs, fmt.Sprintf("p-value %q outside [0,1]", value))
				continue
			}
			m.PValue = &p
		case "attach":
			m.Attach = value
		default:
			errs = append(errs, fmt.Sprintf("unknown metric field %q", key))
		}
	}

	if !hasValue {
		errs = append(errs, "missing required metric field \"value\"")
	}
	if m.Attach == "" {
		errs = append(errs, "missing required metric field \"attach\"")
	}
	return m, errs
}

// Aggregate summarizes a phase's metrics for the verbose check output.
type Aggregate struct {
	Phase     string  `json:"phase"`
	Count     int     `json:"count"`
	MeanN     float64 `json:"mean_n,omitempty"`
	MinPValue float64 `json:"min_p,omitempty"`
	MaxPValue float64 `json:"max_p,omitempty"`
	PValues   int     `json:"p_values"`
}

// Summarize computes per-phase aggregates over attached metrics
func Summarize(phase string, ms []model.Metric) Aggregate {
	agg := Aggregate{Phase: phase, Count: len(ms)}

	var sizes, ps []float64
	for _, m := range ms {
		if m.SampleSize > 0 {
			sizes = append(sizes, float64(m.SampleSize))
		}
		if m.PValue != nil {
			ps = append(ps, *m.PValue)
		}
	}

	if len(sizes) > 0 {
		agg.MeanN, _ = stats.Mean(sizes)
	}
	if len(ps) > 0 {
		agg.PValues = len(ps)
		agg.MinPValue, _ = stats.Min(ps)
		agg.MaxPValue, _ = stats.Max(ps)
	}
	return agg
}
