package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"

	"moneyboard/internal/aggregate"
	"moneyboard/internal/core"
	"moneyboard/internal/exchange"
	"moneyboard/internal/insight"
	"moneyboard/internal/ledger"
	"moneyboard/internal/log"
	"moneyboard/internal/sheets"
)

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrUnknownCategory = errors.New("category not registered for type")
)

// AddInput is a new ledger row as entered by the user.
type AddInput struct {
	Date        string `validate:"required"`
	Type        string `validate:"required,oneof=Masuk Keluar"`
	Category    string `validate:"required"`
	Description string `validate:"max=500"`
	Amount      int64  `validate:"gte=0"`
}

// LedgerService runs every user action as load, mutate in memory, persist the
// full snapshot. Nothing is retried; a failed action leaves the store as it was.
type LedgerService struct {
	store    ledger.Backend
	engine   *insight.Engine
	validate *validator.Validate
	logger   *log.Logger
}

func NewLedgerService(store ledger.Backend, engine *insight.Engine, logger *log.Logger) *LedgerService {
	if engine == nil {
		engine = insight.NewEngine(insight.DefaultConfig())
	}
	if logger == nil {
		logger = log.Discard()
	}
	return &LedgerService{
		store:    store,
		engine:   engine,
		validate: validator.New(),
		logger:   logger.WithComponent(log.ComponentLedger),
	}
}

// Transactions loads the ledger and applies c.
func (s *LedgerService) Transactions(ctx context.Context, c aggregate.Criteria) ([]core.Transaction, error) {
	txs, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return aggregate.Filter(txs, c), nil
}

// Add validates in, appends it and persists the ledger.
func (s *LedgerService) Add(ctx context.Context, in AddInput) (core.Transaction, error) {
	if typ, ok := core.ParseTxType(in.Type); ok {
		in.Type = typ.String()
	}
	in.Category = strings.TrimSpace(in.Category)
	if err := s.validate.Struct(in); err != nil {
		return core.Transaction{}, validationError(err)
	}
	date, err := core.ParseDate(in.Date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("%w: date %q", ErrInvalidInput, in.Date)
	}
	typ := core.TxType(in.Type)

	reg, err := s.store.LoadCategories(ctx)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("load categories: %w", err)
	}
	if !slices.Contains(reg.ForType(typ), in.Category) {
		return core.Transaction{}, fmt.Errorf("%w: %q is not a %s category", ErrUnknownCategory, in.Category, typ)
	}

	desc := strings.TrimSpace(in.Description)
	if desc == "" {
		desc = typ.Placeholder()
	}
	row := core.Transaction{
		ID:          ledger.NewID(),
		Date:        date,
		Description: desc,
		Category:    in.Category,
		Type:        typ,
		Amount:      in.Amount,
	}

	txs, err := s.load(ctx)
	if err != nil {
		return core.Transaction{}, err
	}
	if err := s.store.Save(ctx, ledger.Append(txs, row)); err != nil {
		return core.Transaction{}, fmt.Errorf("append transaction: %w", err)
	}

	s.logger.InfoContext(ctx, "Transaction appended",
		log.NewFields().WithOperation(log.OpAppend).WithTransaction(row.ID, row.Type.String(), row.Category, row.Amount).ToSlice()...)
	return row, nil
}

// DeleteAt removes the row at pos of the freshly loaded ordering and returns it.
func (s *LedgerService) DeleteAt(ctx context.Context, pos int) (core.Transaction, error) {
	txs, err := s.load(ctx)
	if err != nil {
		return core.Transaction{}, err
	}
	rest, err := ledger.DeleteAt(txs, pos)
	if err != nil {
		return core.Transaction{}, err
	}
	removed := txs[pos]
	if err := s.store.Save(ctx, rest); err != nil {
		return core.Transaction{}, fmt.Errorf("delete transaction: %w", err)
	}
	s.logger.InfoContext(ctx, "Transaction deleted", log.FieldOperation, log.OpDelete, log.FieldPosition, pos, log.FieldTxID, removed.ID)
	return removed, nil
}

// DeleteByID removes the row carrying id and returns it.
func (s *LedgerService) DeleteByID(ctx context.Context, id string) (core.Transaction, error) {
	txs, err := s.load(ctx)
	if err != nil {
		return core.Transaction{}, err
	}
	idx := slices.IndexFunc(txs, func(tx core.Transaction) bool { return tx.ID == id })
	rest, err := ledger.DeleteByID(txs, id)
	if err != nil {
		return core.Transaction{}, err
	}
	if err := s.store.Save(ctx, rest); err != nil {
		return core.Transaction{}, fmt.Errorf("delete transaction: %w", err)
	}
	s.logger.InfoContext(ctx, "Transaction deleted", log.FieldOperation, log.OpDelete, log.FieldTxID, id)
	return txs[idx], nil
}

// Import parses r completely before touching the store, then appends every
// parsed row. It returns the number of rows added.
func (s *LedgerService) Import(ctx context.Context, r io.Reader, format exchange.Format) (int, error) {
	incoming, err := exchange.Import(r, format)
	if err != nil {
		s.logger.WarnContext(ctx, "Import rejected",
			log.NewFields().WithOperation(log.OpImport).WithError(err, errorType(err)).ToSlice()...)
		return 0, fmt.Errorf("import: %w", err)
	}
	txs, err := s.load(ctx)
	if err != nil {
		return 0, err
	}
	if err := s.store.Save(ctx, ledger.Merge(txs, incoming)); err != nil {
		return 0, fmt.Errorf("import: %w", err)
	}
	s.logger.InfoContext(ctx, "Import merged",
		append(log.NewFields().WithOperation(log.OpImport).WithRows(len(incoming)).ToSlice(), log.FieldFormat, string(format))...)
	return len(incoming), nil
}

// Export writes the full ledger to w.
func (s *LedgerService) Export(ctx context.Context, w io.Writer, format exchange.Format) error {
	txs, err := s.load(ctx)
	if err != nil {
		return err
	}
	if err := exchange.Export(w, txs, format); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	s.logger.DebugContext(ctx, "Ledger exported", log.FieldOperation, log.OpExport, log.FieldFormat, string(format), log.FieldRows, len(txs))
	return nil
}

func (s *LedgerService) Categories(ctx context.Context) (core.Registry, error) {
	reg, err := s.store.LoadCategories(ctx)
	if err != nil {
		return core.Registry{}, fmt.Errorf("load categories: %w", err)
	}
	return reg, nil
}

// AddCategory registers name for rawType, or moves an existing name to it.
func (s *LedgerService) AddCategory(ctx context.Context, name, rawType string) error {
	typ, ok := core.ParseTxType(rawType)
	if !ok {
		return fmt.Errorf("%w: %q", core.ErrInvalidType, rawType)
	}
	reg, err := s.Categories(ctx)
	if err != nil {
		return err
	}
	if err := reg.Add(name, typ); err != nil {
		return err
	}
	if err := s.store.SaveCategories(ctx, reg); err != nil {
		return fmt.Errorf("save categories: %w", err)
	}
	s.logger.InfoContext(ctx, "Category registered", log.FieldOperation, log.OpCategory, log.FieldCategory, strings.TrimSpace(name), log.FieldTxType, typ.String())
	return nil
}

// RemoveCategory drops name. Existing transactions keep their category.
func (s *LedgerService) RemoveCategory(ctx context.Context, name string) (bool, error) {
	reg, err := s.Categories(ctx)
	if err != nil {
		return false, err
	}
	if !reg.Remove(name) {
		return false, nil
	}
	if err := s.store.SaveCategories(ctx, reg); err != nil {
		return false, fmt.Errorf("save categories: %w", err)
	}
	s.logger.InfoContext(ctx, "Category removed", log.FieldOperation, log.OpCategory, log.FieldCategory, name)
	return true, nil
}

// Insights evaluates the ledger relative to today.
func (s *LedgerService) Insights(ctx context.Context, today core.Date) (insight.Report, error) {
	txs, err := s.load(ctx)
	if err != nil {
		return insight.Report{}, err
	}
	s.logger.DebugContext(ctx, "Generating insights", log.FieldOperation, log.OpInsights, log.FieldToday, today.String(), log.FieldRows, len(txs))
	return s.engine.Generate(txs, today), nil
}

// Publish mirrors the full ledger to p.
func (s *LedgerService) Publish(ctx context.Context, p sheets.LedgerPublisher) (string, error) {
	txs, err := s.load(ctx)
	if err != nil {
		return "", err
	}
	ref, err := p.Publish(ctx, txs)
	if err != nil {
		s.logger.ErrorContext(ctx, "Publish failed",
			log.NewFields().WithOperation(log.OpPublish).WithError(err, log.ErrorTypeNetwork).ToSlice()...)
		return "", fmt.Errorf("publish: %w", err)
	}
	s.logger.InfoContext(ctx, "Ledger published", log.FieldOperation, log.OpPublish, log.FieldSheetsRef, ref, log.FieldRows, len(txs))
	return ref, nil
}

func (s *LedgerService) load(ctx context.Context) ([]core.Transaction, error) {
	txs, err := s.store.Load(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Load failed",
			log.NewFields().WithOperation(log.OpLoad).WithError(err, errorType(err)).ToSlice()...)
		return nil, fmt.Errorf("load ledger: %w", err)
	}
	return txs, nil
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, strings.ToLower(fe.Field())+" "+formatValidationError(fe))
	}
	return fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(msgs, "; "))
}

func formatValidationError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return "must be one of " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters long", fe.Param())
	}
	return "is invalid"
}

func errorType(err error) string {
	switch {
	case errors.Is(err, core.ErrSchemaValidation):
		return log.ErrorTypeSchema
	case errors.Is(err, core.ErrInvalidDate):
		return log.ErrorTypeValidation
	case errors.Is(err, core.ErrTransactionNotFound), errors.Is(err, core.ErrIndexOutOfRange):
		return log.ErrorTypeNotFound
	}
	return log.ErrorTypeStorage
}
