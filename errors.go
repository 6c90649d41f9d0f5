package mirror

import (
	"errors"
	"fmt"

	"github.com/etnz/mirror/date"
)

var (
	// ErrEmptyHistory is returned when a replay is requested without any order.
	ErrEmptyHistory = errors.New("empty order history")
	// ErrLengthMismatch is returned when weights and values do not have the same length.
	ErrLengthMismatch = errors.New("weights and values length mismatch")
	// ErrMalformedCorporateAction is returned when an action misses a field its kind requires.
	ErrMalformedCorporateAction = errors.New("malformed corporate action")
	// ErrUnknownAsset is returned when a symbol has no listed asset.
	ErrUnknownAsset = errors.New("unknown asset")
)

// DiagnosticKind classifies the recoverable anomalies met while computing a result.
type DiagnosticKind int

const (
	// AnomalousSale is a sale of more shares than tracked.
	AnomalousSale DiagnosticKind = iota + 1
	// MissingPrice is a symbol the quote source could not price.
	MissingPrice
)

func (k DiagnosticKind) String() string {
	switch k {
	case AnomalousSale:
		return "anomalous-sale"
	case MissingPrice:
		return "missing-price"
	default:
		return fmt.Sprintf("diagnostic(%d)", int(k))
	}
}

// Diagnostic reports a recoverable anomaly alongside a best-effort result.
type Diagnostic struct {
	Kind    DiagnosticKind
	Symbol  string
	On      date.Date // zero when not bound to a day
	Message string
}

func (d Diagnostic) String() string {
	if d.On.IsZero() {
		return fmt.Sprintf("%s %s: %s", d.Kind, d.Symbol, d.Message)
	}
	return fmt.Sprintf("%s %s %s: %s", d.On, d.Kind, d.Symbol, d.Message)
}
