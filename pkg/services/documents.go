package services

import (
	"context"

	"cloud.google.com/go/civil"

	"docgen/internal/document"
	"docgen/pkg/models"
)

// Kind selects which documents a request produces.
type Kind int

const (
	// Both issues the invoice and act from one rate fetch.
	Both Kind = iota
	// InvoiceOnly issues only the invoice.
	InvoiceOnly
	// ActOnly issues only the act.
	ActOnly
)

// String returns the kind name used on the command line and in the API.
func (k Kind) String() string {
	switch k {
	case InvoiceOnly:
		return "invoice"
	case ActOnly:
		return "act"
	default:
		return "both"
	}
}

// DocumentService issues invoices and acts and keeps the register current.
type DocumentService interface {
	// Issue generates the requested documents, records them in the
	// register and, when requested, writes them to the output directory.
	Issue(ctx context.Context, req IssueRequest) (*IssueResult, error)
}

// IssueRequest is one issuing run.
type IssueRequest struct {
	Services      []models.ServiceInput
	ReferenceDate civil.Date
	Kind          Kind

	// Totals, when set, is used instead of fetching the rate. Only
	// meaningful for InvoiceOnly and ActOnly.
	Totals *document.Totals

	// Sequence overrides the register's same-month index when non-nil.
	Sequence *int

	// WriteFiles renders the documents to HTML files in the output directory.
	WriteFiles bool
}

// IssueResult carries the issued documents.
type IssueResult struct {
	Invoice  *models.InvoiceDocument `json:"invoice,omitempty"`
	Act      *models.ActDocument     `json:"act,omitempty"`
	Sequence int                     `json:"sequence"`
	Files    []string                `json:"files,omitempty"`
	Recorded bool                    `json:"recorded"`
}
