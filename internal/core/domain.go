package core

import (
	"errors"
	"strings"
	"time"
)

// Wire literals of the two transaction types. They are persisted as-is and
// must round-trip unchanged.
const (
	Inflow  TxType = "Masuk"
	Outflow TxType = "Keluar"
)

// DateLayout is the persisted date format.
const DateLayout = "2006-01-02"

type (
	TxType string

	Date struct {
		time.Time
	}

	// Transaction is the only persisted entity. Amount is never signed; the
	// sign is derived from Type.
	Transaction struct {
		ID          string
		Date        Date
		Description string
		Category    string
		Type        TxType
		Amount      int64
	}
)

var (
	ErrStorageCorrupt      = errors.New("storage is not parseable as tabular data")
	ErrSchemaValidation    = errors.New("schema validation failed")
	ErrIndexOutOfRange     = errors.New("position out of range")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrInvalidDate         = errors.New("invalid date")
	ErrInvalidType         = errors.New("invalid transaction type")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrEmptyCategory       = errors.New("empty category name")
)

// ParseTxType maps Masuk/Keluar and Inflow/Outflow (any case) to the
// canonical literals. Other values are returned trimmed with ok=false.
func ParseTxType(s string) (TxType, bool) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "masuk", "inflow":
		return Inflow, true
	case "keluar", "outflow":
		return Outflow, true
	}
	return TxType(s), false
}

// IsValid reports whether t is one of the two known types.
func (t TxType) IsValid() bool {
	return t == Inflow || t == Outflow
}

func (t TxType) String() string {
	return string(t)
}

// Placeholder is the description used when a new transaction has none.
func (t TxType) Placeholder() string {
	if t == Inflow {
		return "Pemasukan"
	}
	return "Pengeluaran"
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar date.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// Today returns the current local calendar date.
func Today() Date {
	return DateOf(time.Now())
}

func (d Date) Validate() error {
	if d.IsZero() {
		return errors.New("date cannot be zero")
	}
	return nil
}

// AddDays returns the date shifted by n calendar days.
func (d Date) AddDays(n int) Date {
	return Date{Time: d.Time.AddDate(0, 0, n)}
}

// Before reports whether d is strictly before o.
func (d Date) Before(o Date) bool {
	return d.Time.Before(o.Time)
}

// After reports whether d is strictly after o.
func (d Date) After(o Date) bool {
	return d.Time.After(o.Time)
}

// Between reports whether d lies in [from, to]. A zero bound is open.
func (d Date) Between(from, to Date) bool {
	if !from.IsZero() && d.Before(from) {
		return false
	}
	if !to.IsZero() && d.After(to) {
		return false
	}
	return true
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// Signed returns the amount with the sign implied by the type. Unknown types
// contribute nothing.
func (t Transaction) Signed() int64 {
	switch t.Type {
	case Inflow:
		return t.Amount
	case Outflow:
		return -t.Amount
	}
	return 0
}

func (t Transaction) Validate() error {
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if !t.Type.IsValid() {
		return ErrInvalidType
	}
	if t.Amount < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// SameEntry compares the five persisted fields, ignoring ID.
func (t Transaction) SameEntry(o Transaction) bool {
	return t.Date.Equal(o.Date.Time) &&
		t.Description == o.Description &&
		t.Category == o.Category &&
		t.Type == o.Type &&
		t.Amount == o.Amount
}
