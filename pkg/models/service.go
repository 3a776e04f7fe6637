package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
)

// ErrInvalidServiceLine is returned when a service line cannot be parsed.
var ErrInvalidServiceLine = errors.New("invalid service line")

// ServiceInput is a service as supplied by the user: either a bare
// description (Simple) or a description with an explicit period
// (WithPeriod).
type ServiceInput interface {
	ServiceDescription() string
	isServiceInput()
}

// Simple is a service whose period defaults to the computed range.
type Simple struct {
	Description string
}

// WithPeriod is a service with an explicitly supplied period.
type WithPeriod struct {
	Description string
	Start       civil.Date
	End         civil.Date
}

func (s Simple) ServiceDescription() string { return s.Description }
func (s WithPeriod) ServiceDescription() string { return s.Description }

func (Simple) isServiceInput() {}
func (WithPeriod) isServiceInput() {}

var serviceDateLayouts = []string{"02.01.2006", "2006-01-02", "02/01/2006"}

// ParseServiceLine parses "description" or "description|start|end".
// Dates are accepted as dd.mm.yyyy, yyyy-mm-dd or dd/mm/yyyy.
func ParseServiceLine(line string) (ServiceInput, error) {
	parts := strings.Split(line, "|")
	desc := strings.TrimSpace(parts[0])
	if desc == "" {
		return nil, fmt.Errorf("%w: empty description in %q", ErrInvalidServiceLine, line)
	}

	switch len(parts) {
	case 1:
		return Simple{Description: desc}, nil
	case 3:
		start, err := parseServiceDate(parts[1])
		if err != nil {
			return nil, err
		}
		end, err := parseServiceDate(parts[2])
		if err != nil {
			return nil, err
		}
		return WithPeriod{Description: desc, Start: start, End: end}, nil
	default:
		return nil, fmt.Errorf("%w: expected \"description\" or \"description|start|end\", got %q", ErrInvalidServiceLine, line)
	}
}

// ParseServiceLines parses one service per non-blank line.
func ParseServiceLines(text string) ([]ServiceInput, error) {
	var inputs []ServiceInput
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		in, err := ParseServiceLine(line)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, in)
	}
	return inputs, nil
}

func parseServiceDate(s string) (civil.Date, error) {
	s = strings.TrimSpace(s)
	for _, layout := range serviceDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return civil.DateOf(t), nil
		}
	}
	return civil.Date{}, fmt.Errorf("%w: bad date %q", ErrInvalidServiceLine, s)
}
