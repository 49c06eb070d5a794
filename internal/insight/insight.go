// Package insight turns a ledger into plain-text observations and rule-based
// recommendations. Output depends on the reference date passed to Generate.
package insight

import (
	"fmt"

	"github.com/shopspring/decimal"

	"moneyboard/internal/aggregate"
	"moneyboard/internal/core"
)

const NoDataMessage = "No transaction data available for analysis."

// Actions are appended to every non-empty report after the recommendations.
var Actions = []string{
	"Set a budget per category and cap the largest one.",
	"Export the data every month as a backup.",
	"Enable an alert when the balance drops below a threshold.",
}

type Config struct {
	WindowDays            int
	SmallExpenseThreshold int64
	SmallExpenseLimit     int
	LowBalanceRatio       float64
}

func DefaultConfig() Config {
	return Config{
		WindowDays:            30,
		SmallExpenseThreshold: 50000,
		SmallExpenseLimit:     5,
		LowBalanceRatio:       0.10,
	}
}

// Report holds the summary lines and the recommendation lines followed by the
// fixed actions.
type Report struct {
	Summary []string
	Advice  []string
}

type Engine struct {
	cfg Config
}

// NewEngine returns an engine for cfg. A zero window, threshold or ratio
// falls back to its default.
func NewEngine(cfg Config) *Engine {
	def := DefaultConfig()
	if cfg.WindowDays <= 0 {
		cfg.WindowDays = def.WindowDays
	}
	if cfg.SmallExpenseThreshold <= 0 {
		cfg.SmallExpenseThreshold = def.SmallExpenseThreshold
	}
	if cfg.LowBalanceRatio <= 0 {
		cfg.LowBalanceRatio = def.LowBalanceRatio
	}
	return &Engine{cfg: cfg}
}

// Window is an inclusive date range.
type Window struct {
	From core.Date
	To   core.Date
}

// Windows returns the trailing window ending at today and the window of equal
// length immediately before it.
func (e *Engine) Windows(today core.Date) (recent, previous Window) {
	w := e.cfg.WindowDays
	recent = Window{From: today.AddDays(-(w - 1)), To: today}
	previous = Window{From: today.AddDays(-(2*w - 1)), To: today.AddDays(-w)}
	return recent, previous
}

func (e *Engine) Generate(txs []core.Transaction, today core.Date) Report {
	if len(txs) == 0 {
		return Report{Summary: []string{NoDataMessage}, Advice: []string{}}
	}

	sum := aggregate.Summarize(txs)
	var r Report
	r.Summary = append(r.Summary, fmt.Sprintf("Total inflow: %s. Total outflow: %s. Final balance: %s.",
		core.FormatRupiah(sum.TotalInflow), core.FormatRupiah(sum.TotalOutflow), core.FormatRupiah(sum.Balance)))
	r.Summary = append(r.Summary, e.trendLine(txs, today))
	r.Summary = append(r.Summary, topOutflowLine(txs))

	r.Advice = append(r.Advice, e.balanceAdvice(sum))
	if line, ok := e.smallExpenseAdvice(txs); ok {
		r.Advice = append(r.Advice, line)
	}
	r.Advice = append(r.Advice, Actions...)
	return r
}

func (e *Engine) trendLine(txs []core.Transaction, today core.Date) string {
	recentW, prevW := e.Windows(today)
	recent := aggregate.Net(aggregate.Filter(txs, aggregate.Criteria{From: recentW.From, To: recentW.To}))
	previous := aggregate.Net(aggregate.Filter(txs, aggregate.Criteria{From: prevW.From, To: prevW.To}))

	if previous == 0 {
		return fmt.Sprintf("Net cash flow over the last %d days: %s. No data for the previous period to compare against.",
			e.cfg.WindowDays, core.FormatRupiah(recent))
	}

	pct := PercentChange(recent, previous)
	return fmt.Sprintf("Net cash flow over the last %d days versus the previous period: %s (%s%% change).",
		e.cfg.WindowDays, Direction(pct), signed(pct))
}

// PercentChange is (recent - previous) / |previous| * 100. previous must be
// non-zero.
func PercentChange(recent, previous int64) decimal.Decimal {
	diff := decimal.NewFromInt(recent - previous)
	return diff.Div(decimal.NewFromInt(previous).Abs()).Mul(decimal.NewFromInt(100))
}

// Direction classifies a change as up, down or stable.
func Direction(pct decimal.Decimal) string {
	switch pct.Sign() {
	case 1:
		return "up"
	case -1:
		return "down"
	}
	return "stable"
}

func signed(pct decimal.Decimal) string {
	s := pct.StringFixed(1)
	if pct.Sign() > 0 {
		return "+" + s
	}
	return s
}

func topOutflowLine(txs []core.Transaction) string {
	top := aggregate.ByCategory(txs, core.Outflow)
	if len(top) == 0 {
		return "No outflows recorded yet."
	}
	return fmt.Sprintf("Largest outflow category: %s (%s). Consider reviewing spending in this category.",
		top[0].Name, core.FormatRupiah(top[0].Amount))
}

func (e *Engine) balanceAdvice(sum core.Summary) string {
	floor := decimal.NewFromInt(sum.TotalInflow).Mul(decimal.NewFromFloat(e.cfg.LowBalanceRatio))
	switch {
	case sum.Balance < 0:
		return "Negative balance: cut spending or find additional income."
	case decimal.NewFromInt(sum.Balance).LessThan(floor):
		return fmt.Sprintf("Balance is low relative to total inflow. Reserve at least %s%% of monthly inflow as an emergency buffer.",
			decimal.NewFromFloat(e.cfg.LowBalanceRatio).Mul(decimal.NewFromInt(100)).String())
	default:
		return "Cash flow is healthy so far. Keep it up and keep tracking routine expenses."
	}
}

func (e *Engine) smallExpenseAdvice(txs []core.Transaction) (string, bool) {
	var n int
	for _, tx := range txs {
		if tx.Type == core.Outflow && tx.Amount < e.cfg.SmallExpenseThreshold {
			n++
		}
	}
	if n <= e.cfg.SmallExpenseLimit {
		return "", false
	}
	return fmt.Sprintf("Many small expenses (< %s). Consolidate them or reduce their frequency where possible.",
		core.FormatRupiah(e.cfg.SmallExpenseThreshold)), true
}
