package register

import (
	"context"
	"fmt"
	"sync"

	"cloud.google.com/go/civil"
	"github.com/rs/zerolog"

	"docgen/internal/logger"
	"docgen/internal/sheets"
)

// SheetStore is the subset of the Google Sheets client the register uses.
type SheetStore interface {
	EnsureSheetWithHeaders(ctx context.Context, sheetName string, headers []string) error
	AppendRows(ctx context.Context, rangeSpec string, rows [][]interface{}) error
	ReadRange(ctx context.Context, rangeSpec string) ([][]interface{}, error)
}

var _ SheetStore = (*sheets.Service)(nil)

// Sheets is a Register stored in a Google Sheets worksheet.
type Sheets struct {
	store SheetStore
	sheet string

	mu       sync.Mutex
	ensureMu sync.Mutex
	ensured  bool
	log      zerolog.Logger
}

// NewSheets returns a register on the named worksheet of store.
func NewSheets(store SheetStore, sheet string) *Sheets {
	if sheet == "" {
		sheet = DefaultSheet
	}
	return &Sheets{
		store: store,
		sheet: sheet,
		log:   logger.WithComponent("register-sheets"),
	}
}

// NextSequence implements Register.
func (s *Sheets) NextSequence(ctx context.Context, date civil.Date) (int, error) {
	entries, err := s.Entries(ctx)
	if err != nil {
		return 0, err
	}
	return nextSequence(entries, date), nil
}

// Entries implements Register. Rows that cannot be parsed are skipped with
// a warning so a hand-edited sheet does not block generation.
func (s *Sheets) Entries(ctx context.Context) ([]Entry, error) {
	const op = "Sheets.Entries"

	if err := s.ensure(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	values, err := s.store.ReadRange(ctx, s.sheet+"!"+columns)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if len(values) == 0 {
		return nil, nil
	}

	var entries []Entry
	for i, row := range values[1:] {
		rowNum := i + 2

		cells := make([]string, len(row))
		for j, v := range row {
			cells[j] = fmt.Sprint(v)
		}
		if isBlank(cells) {
			continue
		}

		e, err := parseRow(cells, rowNum)
		if err != nil {
			s.log.Warn().
				Err(err).
				Int("row", rowNum).
				Str("sheet", s.sheet).
				Msg("Skipping unparseable register row")
			continue
		}
		entries = append(entries, e)
	}

	s.log.Debug().
		Int("total_rows", len(values)-1).
		Int("entries", len(entries)).
		Str("sheet", s.sheet).
		Msg("Register read")

	return entries, nil
}

// Record implements Register.
func (s *Sheets) Record(ctx context.Context, e Entry) error {
	const op = "Sheets.Record"

	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.Entries(ctx)
	if err != nil {
		return err
	}
	if err := checkDuplicate(entries, e); err != nil {
		return err
	}

	if err := s.store.AppendRows(ctx, s.sheet+"!"+columns, [][]interface{}{e.row()}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info().
		Str("sheet", s.sheet).
		Str("invoice_number", e.InvoiceNumber).
		Str("act_number", e.ActNumber).
		Str("total", e.Total.StringFixed(2)).
		Msg("Documents recorded in register")

	return nil
}

func (s *Sheets) ensure(ctx context.Context) error {
	s.ensureMu.Lock()
	defer s.ensureMu.Unlock()

	if s.ensured {
		return nil
	}
	if err := s.store.EnsureSheetWithHeaders(ctx, s.sheet, header); err != nil {
		return err
	}
	s.ensured = true
	return nil
}
