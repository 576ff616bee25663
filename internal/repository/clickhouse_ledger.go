package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"FinScope/internal/domain/models"
	"FinScope/internal/domain/service"
	pkgch "FinScope/pkg/clickhouse"
	applogger "FinScope/pkg/logger"
	"FinScope/pkg/util"

	"github.com/guregu/null/v6"
	"github.com/shopspring/decimal"
)

const (
	topN          = 5
	uncategorized = "Uncategorized"
)

// Transaction is one ledger row. Amount follows the bank feed convention:
// positive is money out, negative is money in.
type Transaction struct {
	ID       string
	Date     time.Time
	Amount   decimal.Decimal
	Currency string
	Name     string
	Category string
}

// ClickHouseLedger summarises synced bank transactions.
type ClickHouseLedger struct {
	ch  *pkgch.Client
	log *applogger.Logger
	now func() time.Time
}

func NewClickHouseLedger(ch *pkgch.Client, l *applogger.Logger) *ClickHouseLedger {
	if l == nil {
		l = applogger.NewNop()
	}
	return &ClickHouseLedger{ch: ch, log: l, now: time.Now}
}

// Init creates the transactions table when missing.
func (s *ClickHouseLedger) Init(ctx context.Context) error {
	return s.ch.Migrate(ctx, fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id         String,
		date       Date,
		amount     Decimal(18, 2),
		currency   LowCardinality(String),
		name       String,
		category   String,
		account_id String
	) ENGINE = ReplacingMergeTree
	ORDER BY id`, s.ch.Table("transactions")))
}

// Summary returns nil, nil when the window holds no transactions.
func (s *ClickHouseLedger) Summary(ctx context.Context, days int) (*models.PersonalFinance, error) {
	if days <= 0 {
		days = 30
	}
	since := util.DaysAgo(s.now(), days)

	start := time.Now()
	rows, err := s.ch.DB().QueryContext(ctx,
		fmt.Sprintf("SELECT id, date, toString(amount), currency, name, category FROM %s FINAL WHERE date >= ? ORDER BY date", s.ch.Table("transactions")),
		since.Format(util.DateLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var txns []Transaction
	for rows.Next() {
		var (
			t      Transaction
			amount string
		)
		if err := rows.Scan(&t.ID, &t.Date, &amount, &t.Currency, &t.Name, &t.Category); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		if t.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("transaction %s amount %q: %w", t.ID, amount, err)
		}
		txns = append(txns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	s.log.Debug("ledger window loaded",
		applogger.Int("days", days),
		applogger.Int("rows", len(txns)),
		applogger.Duration("took", time.Since(start)))

	return Summarize(txns, days), nil
}

// Summarize folds transactions into a spending summary. Top lists rank by
// spend, ties broken by name.
func Summarize(txns []Transaction, days int) *models.PersonalFinance {
	if len(txns) == 0 {
		return nil
	}

	spend, income := decimal.Zero, decimal.Zero
	type bucket struct {
		total decimal.Decimal
		count int
	}
	cats := map[string]*bucket{}
	merchants := map[string]*bucket{}
	add := func(m map[string]*bucket, key string, amt decimal.Decimal) {
		b, ok := m[key]
		if !ok {
			b = &bucket{}
			m[key] = b
		}
		b.total = b.total.Add(amt)
		b.count++
	}

	for _, t := range txns {
		if t.Amount.IsNegative() {
			income = income.Add(t.Amount.Neg())
			continue
		}
		spend = spend.Add(t.Amount)
		add(cats, primaryCategory(t.Category), t.Amount)
		name := strings.TrimSpace(t.Name)
		if name == "" {
			name = "Unknown"
		}
		add(merchants, name, t.Amount)
	}

	net := income.Sub(spend)
	pf := &models.PersonalFinance{
		WindowDays:  days,
		TotalSpend:  cents(spend),
		TotalIncome: cents(income),
		NetSavings:  cents(net),
	}
	if income.IsPositive() {
		pf.SavingsRatePct = null.FloatFrom(net.Div(income).Mul(decimal.NewFromInt(100)).Round(2).InexactFloat64())
	}

	for _, k := range rank(cats, func(b *bucket) decimal.Decimal { return b.total }) {
		pf.TopCategories = append(pf.TopCategories, models.CategoryTotal{Category: k, Total: cents(cats[k].total).Float64, Count: cats[k].count})
	}
	for _, k := range rank(merchants, func(b *bucket) decimal.Decimal { return b.total }) {
		pf.TopMerchants = append(pf.TopMerchants, models.MerchantTotal{Merchant: k, Total: cents(merchants[k].total).Float64, Count: merchants[k].count})
	}
	return pf
}

func rank[B any](m map[string]B, total func(B) decimal.Decimal) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		ti, tj := total(m[keys[i]]), total(m[keys[j]])
		if !ti.Equal(tj) {
			return ti.GreaterThan(tj)
		}
		return keys[i] < keys[j]
	})
	if len(keys) > topN {
		keys = keys[:topN]
	}
	return keys
}

// primaryCategory takes the first level of a "Food and Drink,Restaurants" path.
func primaryCategory(c string) string {
	first, _, _ := strings.Cut(c, ",")
	if first = strings.TrimSpace(first); first == "" {
		return uncategorized
	}
	return first
}

func cents(d decimal.Decimal) null.Float {
	return null.FloatFrom(d.Round(2).InexactFloat64())
}

var _ service.PersonalFinanceSource = (*ClickHouseLedger)(nil)
