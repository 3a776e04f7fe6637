package register

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"cloud.google.com/go/civil"
	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"docgen/internal/logger"
)

// XLSX is a Register stored in a local Excel workbook. The workbook is
// created with a header row on the first Record.
type XLSX struct {
	path  string
	sheet string
	mu    sync.Mutex
	log   zerolog.Logger
}

// NewXLSX returns a register backed by the workbook at path.
func NewXLSX(path, sheet string) *XLSX {
	if sheet == "" {
		sheet = DefaultSheet
	}
	return &XLSX{
		path:  path,
		sheet: sheet,
		log:   logger.WithComponent("register-xlsx"),
	}
}

// NextSequence implements Register.
func (x *XLSX) NextSequence(ctx context.Context, date civil.Date) (int, error) {
	x.mu.Lock()
	defer x.mu.Unlock()

	entries, err := x.read()
	if err != nil {
		return 0, err
	}
	return nextSequence(entries, date), nil
}

// Entries implements Register.
func (x *XLSX) Entries(ctx context.Context) ([]Entry, error) {
	x.mu.Lock()
	defer x.mu.Unlock()

	return x.read()
}

// Record implements Register.
func (x *XLSX) Record(ctx context.Context, e Entry) error {
	const op = "XLSX.Record"

	x.mu.Lock()
	defer x.mu.Unlock()

	f, rows, err := x.open()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer f.Close()

	entries, err := parseRows(rows)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := checkDuplicate(entries, e); err != nil {
		return err
	}

	cell, err := excelize.CoordinatesToCellName(1, len(rows)+1)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	values := e.row()
	if err := f.SetSheetRow(x.sheet, cell, &values); err != nil {
		return fmt.Errorf("%s: failed to write row: %w", op, err)
	}

	if err := os.MkdirAll(filepath.Dir(x.path), 0o755); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := f.SaveAs(x.path); err != nil {
		return fmt.Errorf("%s: failed to save workbook: %w", op, err)
	}

	x.log.Info().
		Str("path", x.path).
		Str("invoice_number", e.InvoiceNumber).
		Str("act_number", e.ActNumber).
		Str("total", e.Total.StringFixed(2)).
		Int("row", len(rows)+1).
		Msg("Documents recorded in register")

	return nil
}

func (x *XLSX) read() ([]Entry, error) {
	const op = "XLSX.read"

	f, rows, err := x.open()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer f.Close()

	entries, err := parseRows(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return entries, nil
}

// open loads the workbook, creating it in memory with a header row when
// the file does not exist yet. rows includes the header.
func (x *XLSX) open() (*excelize.File, [][]string, error) {
	f, err := excelize.OpenFile(x.path)
	if errors.Is(err, fs.ErrNotExist) {
		f, err = x.create()
		if err != nil {
			return nil, nil, err
		}
		return f, [][]string{header}, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s: %w", x.path, err)
	}

	if idx, _ := f.GetSheetIndex(x.sheet); idx < 0 {
		if err := x.addSheet(f); err != nil {
			f.Close()
			return nil, nil, err
		}
		return f, [][]string{header}, nil
	}

	rows, err := f.GetRows(x.sheet)
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("failed to read sheet %s: %w", x.sheet, err)
	}
	if len(rows) == 0 {
		if err := x.writeHeader(f); err != nil {
			f.Close()
			return nil, nil, err
		}
		rows = [][]string{header}
	}
	return f, rows, nil
}

func (x *XLSX) create() (*excelize.File, error) {
	f := excelize.NewFile()
	if err := x.addSheet(f); err != nil {
		f.Close()
		return nil, err
	}
	if x.sheet != "Sheet1" {
		if err := f.DeleteSheet("Sheet1"); err != nil {
			f.Close()
			return nil, err
		}
	}
	x.log.Debug().Str("path", x.path).Msg("Creating register workbook")
	return f, nil
}

func (x *XLSX) addSheet(f *excelize.File) error {
	idx, err := f.NewSheet(x.sheet)
	if err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", x.sheet, err)
	}
	f.SetActiveSheet(idx)
	return x.writeHeader(f)
}

func (x *XLSX) writeHeader(f *excelize.File) error {
	values := make([]any, len(header))
	for i, h := range header {
		values[i] = h
	}
	if err := f.SetSheetRow(x.sheet, "A1", &values); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"E6E6E6"}},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	last, _ := excelize.CoordinatesToCellName(len(header), 1)
	return f.SetCellStyle(x.sheet, "A1", last, style)
}

func parseRows(rows [][]string) ([]Entry, error) {
	if len(rows) <= 1 {
		return nil, nil
	}
	entries := make([]Entry, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		e, err := parseRow(row, i+2)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func isBlank(row []string) bool {
	for _, c := range row {
		if c != "" {
			return false
		}
	}
	return true
}
