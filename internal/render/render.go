// Package render turns document contexts into HTML using the embedded
// invoice and act templates.
package render

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"

	"github.com/rs/zerolog"

	"docgen/internal/document"
	"docgen/internal/logger"
	"docgen/internal/payment"
	"docgen/pkg/models"
)

// Template names.
const (
	InvoiceTemplate = "invoice.html"
	ActTemplate     = "act.html"
)

// ErrUnknownTemplate is returned for a template name not shipped with the
// renderer.
var ErrUnknownTemplate = errors.New("unknown template")

//go:embed templates/*.html
var templateFiles embed.FS

var funcs = template.FuncMap{
	"longDate":   LongDate,
	"quotedDate": QuotedDate,
	"shortDate":  ShortDate,
	"money":      Money,
	"rate":       Rate,
	"inc":        func(i int) int { return i + 1 },
}

// Renderer renders documents to HTML.
type Renderer struct {
	templates *template.Template
	qr        *payment.Renderer
	log       zerolog.Logger
}

// New parses the embedded templates. qr renders the invoice payment code.
func New(qr *payment.Renderer) (*Renderer, error) {
	const op = "render.New"

	sub, err := fs.Sub(templateFiles, "templates")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	tmpl, err := template.New("").Funcs(funcs).ParseFS(sub, "*.html")
	if err != nil {
		return nil, fmt.Errorf("%s: parse templates: %w", op, err)
	}

	return &Renderer{
		templates: tmpl,
		qr:        qr,
		log:       logger.WithComponent("renderer"),
	}, nil
}

// Render executes the named template with ctx.
func (r *Renderer) Render(name string, ctx map[string]any) ([]byte, error) {
	tmpl := r.templates.Lookup(name)
	if tmpl == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTemplate, name)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, ctx); err != nil {
		return nil, fmt.Errorf("render %s: %w", name, err)
	}

	r.log.Debug().
		Str("template", name).
		Int("bytes", buf.Len()).
		Msg("Template rendered")

	return buf.Bytes(), nil
}

// Invoice renders inv with its payment QR code embedded as a data URI.
func (r *Renderer) Invoice(inv *models.InvoiceDocument) ([]byte, error) {
	uri, err := r.qr.DataURI(inv.QRPayload)
	if err != nil {
		return nil, fmt.Errorf("render invoice %s: qr code: %w", inv.Number, err)
	}

	ctx := document.InvoiceContext(inv)
	// data: URIs are rejected by html/template unless marked safe.
	ctx["qr_data_uri"] = template.URL(uri)
	return r.Render(InvoiceTemplate, ctx)
}

// Act renders act.
func (r *Renderer) Act(act *models.ActDocument) ([]byte, error) {
	return r.Render(ActTemplate, document.ActContext(act))
}
