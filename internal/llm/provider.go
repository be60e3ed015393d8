// Package llm produces optional natural-language digests of validation
// reports. The digest is advisory output for humans: it never feeds back
// into findings, exit codes, or generated tables.
package llm

import (
	"context"

	"github.com/quireproject/quire/internal/model"
)

// Provider generates a digest for a validation report
type Provider interface {
	// Name returns the provider name
	Name() string

	// Digest summarizes the report, citing only record ids that appear in it
	Digest(ctx context.Context, req DigestRequest) (*DigestResponse, error)
}

// DigestRequest is the input for report summarization
type DigestRequest struct {
	// Report is the normalized validation report to digest
	Report *model.Report

	// RecordCount is the size of the corpus the report covers
	RecordCount int

	// Model overrides the configured model for this request
	Model string

	// MaxTokens limits the response length
	MaxTokens int
}

// DigestResponse is the generated digest
type DigestResponse struct {
	// Summary is the digest text
	Summary string

	// Model is the model that produced it
	Model string

	// TokensUsed tracks token consumption
	TokensUsed int
}
