package ledger

import (
	"fmt"
	"strconv"
	"strings"

	"moneyboard/internal/core"
)

// Column names of the persisted table, in order.
const (
	ColDate        = "date"
	ColDescription = "description"
	ColCategory    = "category"
	ColType        = "type"
	ColAmount      = "amount"
	ColID          = "id"
)

// Columns are the five required columns in their defined order.
var Columns = []string{ColDate, ColDescription, ColCategory, ColType, ColAmount}

// StoreColumns adds the trailing stable identifier used by the stores.
var StoreColumns = append(append([]string(nil), Columns...), ColID)

// Header maps column names to their position in a parsed header row.
type Header map[string]int

// NewHeader indexes a header row. Names are matched exactly (case-sensitive)
// after trimming surrounding whitespace; the first occurrence wins.
func NewHeader(row []string) Header {
	h := make(Header, len(row))
	for i, name := range row {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if _, dup := h[name]; !dup {
			h[name] = i
		}
	}
	return h
}

// Missing returns the required columns absent from h, in defined order.
func (h Header) Missing() []string {
	var out []string
	for _, c := range Columns {
		if _, ok := h[c]; !ok {
			out = append(out, c)
		}
	}
	return out
}

func (h Header) cell(record []string, col string) (string, bool) {
	i, ok := h[col]
	if !ok || i >= len(record) {
		return "", false
	}
	return record[i], true
}

// ParseRow normalizes one record. Missing text columns become "", a missing
// amount becomes 0, and when the header has no date column the first column
// is read as the date. Only an unparseable date is an error.
func (h Header) ParseRow(record []string) (core.Transaction, error) {
	rawDate, ok := h.cell(record, ColDate)
	if _, hasCol := h[ColDate]; !hasCol && len(record) > 0 {
		rawDate, ok = record[0], true
	}
	if !ok {
		return core.Transaction{}, core.ErrInvalidDate
	}
	date, err := core.ParseDate(rawDate)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("%q: %w", rawDate, err)
	}

	desc, _ := h.cell(record, ColDescription)
	cat, _ := h.cell(record, ColCategory)
	rawType, _ := h.cell(record, ColType)
	rawAmount, _ := h.cell(record, ColAmount)
	id, _ := h.cell(record, ColID)

	typ, _ := core.ParseTxType(rawType)
	return core.Transaction{
		ID:          strings.TrimSpace(id),
		Date:        date,
		Description: desc,
		Category:    cat,
		Type:        typ,
		Amount:      core.CoerceAmount(rawAmount),
	}, nil
}

// Record renders tx as the five required cells.
func Record(tx core.Transaction) []string {
	return []string{
		tx.Date.String(),
		tx.Description,
		tx.Category,
		tx.Type.String(),
		strconv.FormatInt(tx.Amount, 10),
	}
}

// StoreRecord renders tx as the persisted row, ID last.
func StoreRecord(tx core.Transaction) []string {
	return append(Record(tx), tx.ID)
}
