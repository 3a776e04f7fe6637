// Package issuer runs the document engine on behalf of the CLI and the
// HTTP API: it generates the documents, claims the invoice sequence in the
// register, records the result and writes the rendered HTML.
package issuer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"

	"docgen/internal/document"
	"docgen/internal/logger"
	"docgen/internal/register"
	"docgen/internal/render"
	"docgen/pkg/models"
	"docgen/pkg/services"
)

// maxClaimAttempts bounds how often a register-assigned sequence is retried
// after another writer recorded the same invoice number.
const maxClaimAttempts = 5

// Issuer implements services.DocumentService.
type Issuer struct {
	engine    *document.Engine
	register  register.Register
	renderer  *render.Renderer
	outputDir string

	// claimMu spans reading the next sequence and recording it.
	claimMu sync.Mutex
	log     zerolog.Logger
}

var _ services.DocumentService = (*Issuer)(nil)

// New builds an Issuer. reg may be nil to skip the register; renderer may
// be nil when files are never written.
func New(engine *document.Engine, reg register.Register, renderer *render.Renderer, outputDir string) *Issuer {
	return &Issuer{
		engine:    engine,
		register:  reg,
		renderer:  renderer,
		outputDir: outputDir,
		log:       logger.WithComponent("issuer"),
	}
}

// rendered is one HTML file waiting to be written.
type rendered struct {
	name string
	html []byte
}

// Issue implements services.DocumentService. Nothing is written to the
// output directory unless the register accepted the documents.
func (i *Issuer) Issue(ctx context.Context, req services.IssueRequest) (*services.IssueResult, error) {
	const op = "Issue"

	seq := 0
	if req.Sequence != nil {
		seq = *req.Sequence
	}

	engineReq := document.Request{
		Services:      req.Services,
		ReferenceDate: req.ReferenceDate,
		Sequence:      seq,
	}

	result := &services.IssueResult{Sequence: seq}
	var err error
	switch req.Kind {
	case services.InvoiceOnly:
		result.Invoice, err = i.engine.GenerateInvoice(ctx, engineReq, req.Totals)
	case services.ActOnly:
		result.Act, err = i.engine.GenerateAct(ctx, engineReq, req.Totals)
	default:
		result.Invoice, result.Act, err = i.engine.Generate(ctx, engineReq)
		if err == nil {
			err = document.Reconcile(result.Invoice, result.Act)
		}
	}
	if err != nil {
		return nil, err
	}

	files, err := i.claim(ctx, req, result)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if req.WriteFiles {
		if result.Files, err = i.writeFiles(files); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	i.log.Info().
		Str("kind", req.Kind.String()).
		Int("sequence", result.Sequence).
		Strs("files", result.Files).
		Bool("recorded", result.Recorded).
		Msg("Documents issued")

	return result, nil
}

// claim assigns the final invoice sequence, renders the documents and
// records them. With a register-assigned sequence a duplicate invoice
// number means another writer got there first, so the invoice is
// renumbered and recorded again.
func (i *Issuer) claim(ctx context.Context, req services.IssueRequest, result *services.IssueResult) ([]rendered, error) {
	if i.register == nil {
		return i.render(req, result.Invoice, result.Act)
	}

	i.claimMu.Lock()
	defer i.claimMu.Unlock()

	assigned := req.Sequence == nil && result.Invoice != nil
	for attempt := 1; ; attempt++ {
		if assigned {
			seq, err := i.register.NextSequence(ctx, req.ReferenceDate)
			if err != nil {
				return nil, err
			}
			if seq != result.Sequence {
				inv, err := i.engine.Renumber(result.Invoice, seq)
				if err != nil {
					return nil, err
				}
				result.Invoice, result.Sequence = inv, seq
			}
		}

		files, err := i.render(req, result.Invoice, result.Act)
		if err != nil {
			return nil, err
		}

		err = i.register.Record(ctx, register.EntryFromDocuments(result.Invoice, result.Act))
		if err == nil {
			result.Recorded = true
			return files, nil
		}
		if !assigned || !errors.Is(err, register.ErrDuplicateInvoice) || attempt == maxClaimAttempts {
			return nil, err
		}

		i.log.Warn().
			Err(err).
			Int("attempt", attempt).
			Str("invoice_number", result.Invoice.Number).
			Msg("Invoice number taken, claiming the next sequence")
	}
}

func (i *Issuer) render(req services.IssueRequest, inv *models.InvoiceDocument, act *models.ActDocument) ([]rendered, error) {
	if !req.WriteFiles {
		return nil, nil
	}
	if i.renderer == nil {
		return nil, fmt.Errorf("no renderer configured")
	}

	var files []rendered
	if inv != nil {
		html, err := i.renderer.Invoice(inv)
		if err != nil {
			return nil, err
		}
		files = append(files, rendered{name: InvoiceFileName(inv), html: html})
	}
	if act != nil {
		html, err := i.renderer.Act(act)
		if err != nil {
			return nil, err
		}
		files = append(files, rendered{name: ActFileName(act), html: html})
	}
	return files, nil
}

func (i *Issuer) writeFiles(files []rendered) ([]string, error) {
	if err := os.MkdirAll(i.outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	paths := make([]string, 0, len(files))
	for _, f := range files {
		path := filepath.Join(i.outputDir, f.name)
		if err := os.WriteFile(path, f.html, 0o644); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", f.name, err)
		}
		paths = append(paths, path)
	}

	i.log.Debug().Strs("files", paths).Str("dir", i.outputDir).Msg("Documents written")
	return paths, nil
}

// InvoiceFileName names the invoice HTML file.
func InvoiceFileName(inv *models.InvoiceDocument) string {
	return fmt.Sprintf("Счет_%s.html", inv.Number)
}

// ActFileName names the act HTML file by the year and month of its date.
func ActFileName(act *models.ActDocument) string {
	return fmt.Sprintf("Акт_%04d%02d_%s.html", act.Date.Year, int(act.Date.Month), act.Number)
}
