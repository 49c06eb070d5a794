package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldOperation  = "operation"
	FieldError      = "error"
	FieldErrorType  = "error_type"
	FieldBackend    = "backend"
	FieldPath       = "path"
	FieldRows       = "rows"
	FieldPosition   = "position"
	FieldTxID       = "tx_id"
	FieldTxType     = "tx_type"
	FieldCategory   = "category"
	FieldAmount     = "amount"
	FieldFormat     = "format"
	FieldSheetsRef  = "sheets_ref"
	FieldWindowDays = "window_days"
	FieldToday      = "today"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentLedger  = "ledger"
	ComponentStorage = "storage"
	ComponentBackend = "backend"
	ComponentSheets  = "sheets"
)

// Operations defines standard operation names
const (
	OpLoad     = "load"
	OpAppend   = "append"
	OpDelete   = "delete"
	OpImport   = "import"
	OpExport   = "export"
	OpPublish  = "publish"
	OpInsights = "insights"
	OpCategory = "category"
	OpStartup  = "startup"
)

// ErrorTypes defines standard error type categories
const (
	ErrorTypeValidation    = "validation_error"
	ErrorTypeConfiguration = "configuration_error"
	ErrorTypeStorage       = "storage_error"
	ErrorTypeSchema        = "schema_error"
	ErrorTypeNotFound      = "not_found_error"
	ErrorTypeNetwork       = "network_error"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

// WithOperation adds operation field
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithError adds error and error type fields
func (f LogFields) WithError(err error, errorType string) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
		f[FieldErrorType] = errorType
	}
	return f
}

// WithTransaction adds the identifying fields of a ledger row
func (f LogFields) WithTransaction(id, txType, category string, amount int64) LogFields {
	f[FieldTxID] = id
	f[FieldTxType] = txType
	f[FieldCategory] = category
	f[FieldAmount] = amount
	return f
}

// WithRows adds a row count
func (f LogFields) WithRows(n int) LogFields {
	f[FieldRows] = n
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
