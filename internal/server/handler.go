// Package server exposes document generation over HTTP.
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/go-chi/chi/v5"

	"docgen/internal/amount"
	"docgen/internal/document"
	"docgen/internal/logger"
	"docgen/internal/numbering"
	"docgen/internal/payment"
	"docgen/internal/period"
	"docgen/internal/rates"
	"docgen/internal/register"
	"docgen/internal/render"
	"docgen/internal/words"
	"docgen/pkg/models"
	"docgen/pkg/services"
)

// Handler serves the document API.
type Handler struct {
	documents services.DocumentService
	rates     rates.Provider
	renderer  *render.Renderer
	qr        *payment.Renderer
	currency  string
	today     func() civil.Date
}

// NewHandler builds a Handler. currency is the default for rate lookups.
func NewHandler(documents services.DocumentService, provider rates.Provider, renderer *render.Renderer, qr *payment.Renderer, currency string) *Handler {
	return &Handler{
		documents: documents,
		rates:     provider,
		renderer:  renderer,
		qr:        qr,
		currency:  currency,
		today:     func() civil.Date { return civil.DateOf(time.Now()) },
	}
}

// ServiceLine is a service in an API request. Start and End are optional
// and must be given together.
type ServiceLine struct {
	Description string `json:"description"`
	Start       string `json:"start_date,omitempty"`
	End         string `json:"end_date,omitempty"`
}

// IssueRequest is the body of POST /api/documents.
type IssueRequest struct {
	Services []ServiceLine `json:"services"`
	Date     string        `json:"date,omitempty"` // YYYY-MM-DD, defaults to today
	Kind     string        `json:"kind,omitempty"` // both, invoice, act
	Sequence *int          `json:"sequence,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// HandleIssue generates documents and returns them as JSON.
func (h *Handler) HandleIssue(w http.ResponseWriter, r *http.Request) {
	var body IssueRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	kind, err := parseKind(body.Kind)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	req, err := h.issueRequest(body, kind)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.documents.Issue(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

// HandleIssueHTML generates one document and returns it rendered.
func (h *Handler) HandleIssueHTML(w http.ResponseWriter, r *http.Request) {
	kind, err := parseKind(chi.URLParam(r, "kind"))
	if err != nil || kind == services.Both {
		writeError(w, http.StatusNotFound, "kind must be invoice or act")
		return
	}

	var body IssueRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	req, err := h.issueRequest(body, kind)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.documents.Issue(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	var html []byte
	if kind == services.InvoiceOnly {
		html, err = h.renderer.Invoice(result.Invoice)
	} else {
		html, err = h.renderer.Act(result.Act)
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusCreated)
	_, _ = w.Write(html)
}

// HandleRate returns the official rate for ?currency= on ?date=.
func (h *Handler) HandleRate(w http.ResponseWriter, r *http.Request) {
	currency := strings.ToUpper(r.URL.Query().Get("currency"))
	if currency == "" {
		currency = h.currency
	}

	date, err := h.parseDate(r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rate, err := h.rates.Fetch(r.Context(), currency, date)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, rate)
}

// HandleQR renders ?payload= as a PNG after validating it.
func (h *Handler) HandleQR(w http.ResponseWriter, r *http.Request) {
	payload := r.URL.Query().Get("payload")
	if payload == "" {
		writeError(w, http.StatusBadRequest, "payload query param required")
		return
	}
	if _, err := payment.Parse(payload); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	png, err := h.qr.PNG(payload)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	_, _ = w.Write(png)
}

func (h *Handler) issueRequest(body IssueRequest, kind services.Kind) (services.IssueRequest, error) {
	date, err := h.parseDate(body.Date)
	if err != nil {
		return services.IssueRequest{}, err
	}

	inputs := make([]models.ServiceInput, 0, len(body.Services))
	for _, s := range body.Services {
		line := s.Description
		if s.Start != "" || s.End != "" {
			line = strings.Join([]string{s.Description, s.Start, s.End}, "|")
		}
		in, err := models.ParseServiceLine(line)
		if err != nil {
			return services.IssueRequest{}, err
		}
		inputs = append(inputs, in)
	}

	return services.IssueRequest{
		Services:      inputs,
		ReferenceDate: date,
		Kind:          kind,
		Sequence:      body.Sequence,
	}, nil
}

func (h *Handler) parseDate(s string) (civil.Date, error) {
	if s == "" {
		return h.today(), nil
	}
	d, err := civil.ParseDate(s)
	if err != nil {
		return civil.Date{}, errors.New("date must be YYYY-MM-DD")
	}
	return d, nil
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	log := logger.FromContext(r.Context())
	log.Error().Err(err).Int("status", status).Msg("Request failed")
	writeError(w, status, err.Error())
}

func parseKind(s string) (services.Kind, error) {
	switch strings.ToLower(s) {
	case "", "both":
		return services.Both, nil
	case "invoice":
		return services.InvoiceOnly, nil
	case "act":
		return services.ActOnly, nil
	}
	return services.Both, errors.New("kind must be both, invoice or act")
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, rates.ErrRateUnavailable):
		return http.StatusBadGateway
	case errors.Is(err, document.ErrEmptyServiceList),
		errors.Is(err, period.ErrInvalidDate),
		errors.Is(err, numbering.ErrInvalidDate),
		errors.Is(err, numbering.ErrInvalidSequence),
		errors.Is(err, models.ErrInvalidServiceLine):
		return http.StatusBadRequest
	case errors.Is(err, amount.ErrInvalidRate),
		errors.Is(err, words.ErrNegativeAmount),
		errors.Is(err, payment.ErrMissingQRField),
		errors.Is(err, payment.ErrInvalidQRField),
		errors.Is(err, register.ErrDuplicateInvoice):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
