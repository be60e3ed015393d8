package model

import (
	"fmt"
	"sort"
)

// Code classifies a finding per the error taxonomy
type Code string

const (
	CodeParseError   Code = "PARSE_ERROR"          // Malformed document; fatal to that document only
	CodeDuplicateID  Code = "DUPLICATE_ID"         // Fatal to the run; identity is never ambiguous
	CodeDanglingRef  Code = "DANGLING_REFERENCE"   // Target id not found
	CodeTypeMismatch Code = "TYPE_MISMATCH"        // Target exists but wrong kind for the edge
	CodeGovernance   Code = "GOVERNANCE_VIOLATION" // Tier/promotion/supersession/lifecycle breach
	CodeVocabulary   Code = "VOCABULARY_VIOLATION" // Constraint vocabulary in fit prose
)

// Severity tags a finding as run-fatal or triage material
type Severity string

const (
	SeverityFatal   Severity = "FATAL"
	SeverityWarning Severity = "WARNING"
)

// Finding is one structural or governance problem with provenance.
// Findings are collected, never thrown; a run reports the complete list.
type Finding struct {
	Code     Code     `json:"code"`
	Severity Severity `json:"severity"`
	RecordID string   `json:"record_id,omitempty"`
	Related  string   `json:"related,omitempty"` // Second record involved (ref target, masked fit, ...)
	File     string   `json:"file,omitempty"`
	Line     int      `json:"line,omitempty"`
	Message  string   `json:"message"`
}

// String renders a finding the way check prints it
func (f Finding) String() string {
	loc := f.File
	if f.Line > 0 {
		loc = fmt.Sprintf("%s:%d", f.File, f.Line)
	}
	if loc == "" {
		return fmt.Sprintf("%s %s: %s", f.Severity, f.Code, f.Message)
	}
	return fmt.Sprintf("%s %s %s: %s", f.Severity, f.Code, loc, f.Message)
}

// key is the dedup identity of a finding
func (f Finding) key() string {
	return fmt.Sprintf("%s|%s|%s|%s|%s|%d|%s", f.Code, f.Severity, f.RecordID, f.Related, f.File, f.Line, f.Message)
}

// Report is the deterministic output of a validation run: same corpus
// snapshot, same report.
type Report struct {
	Findings []Finding `json:"findings"`
}

// Add appends findings to the report
func (r *Report) Add(fs ...Finding) {
	r.Findings = append(r.Findings, fs...)
}

// Merge folds another report into this one
func (r *Report) Merge(other *Report) {
	if other != nil {
		r.Findings = append(r.Findings, other.Findings...)
	}
}

// Normalize sorts and deduplicates findings: FATAL before WARNING, then by
// file, line, code, message. Call once before rendering.
func (r *Report) Normalize() {
	seen := make(map[string]bool, len(r.Findings))
	out := r.Findings[:0]
	for _, f := range r.Findings {
		k := f.key()
		if !seen[k] {
			seen[k] = true
			out = append(out, f)
		}
	}
	r.Findings = out

	sort.SliceStable(r.Findings, func(i, j int) bool {
		a, b := r.Findings[i], r.Findings[j]
		if a.Severity != b.Severity {
			return a.Severity == SeverityFatal
		}
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		if a.Code != b.Code {
			return a.Code < b.Code
		}
		return a.Message < b.Message
	})
}

// HasFatal reports whether any finding aborts table regeneration
func (r *Report) HasFatal() bool {
	for _, f := range r.Findings {
		if f.Severity == SeverityFatal {
			return true
		}
	}
	return false
}

// Count returns the number of findings at the given severity
func (r *Report) Count(sev Severity) int {
	n := 0
	for _, f := range r.Findings {
		if f.Severity == sev {
			n++
		}
	}
	return n
}
