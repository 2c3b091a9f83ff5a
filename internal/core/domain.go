package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	KindTransaction Kind = "transaction"
	KindDebt        Kind = "debt"
	KindCredit      Kind = "credit"
	KindInvestment  Kind = "investment"
	KindCommitment  Kind = "commitment"
)

const (
	FlowIncome  Flow = "income"
	FlowExpense Flow = "expense"
)

const (
	AccountMain      AccountType = "main"
	AccountCard      AccountType = "card"
	AccountPiggyBank AccountType = "piggybank"
)

type (
	Kind        string
	Flow        string
	AccountType string

	// Probability is the estimated likelihood, in percent, that a credit
	// will actually be collected. Zero means unset and is treated as 100.
	Probability int

	Money struct {
		Amount decimal.Decimal
	}

	// Bound is one side of a recurrence window: either indefinite (no date)
	// or a concrete date, optionally widened to its whole calendar month.
	Bound struct {
		date      time.Time
		monthOnly bool
	}

	// DateConfig is the wire/storage shape of a date bound. It carries both
	// an indefinite flag and a date; Bound() collapses the redundancy.
	DateConfig struct {
		MonthOnly  bool       `json:"isMonthOnly"`
		Date       *time.Time `json:"date"`
		Indefinite bool       `json:"isIndefinite"`
	}

	Recurrence struct {
		Recurring bool
		Start     Bound
		End       Bound
	}

	Record struct {
		ID          string
		Kind        Kind
		Flow        Flow
		Amount      Money
		Description string
		Category    string
		AccountID   string
		Recurrence  Recurrence
		// Execution is the due/expected date for one-time non-transaction
		// records. Indefinite when the record has none.
		Execution   Bound
		Probability Probability
		CreatedAt   time.Time
	}

	Account struct {
		ID   string
		Name string
		Type AccountType
	}
)

var (
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrEmptyDescription   = errors.New("empty description")
	ErrEmptyAccount       = errors.New("empty account")
	ErrUnknownKind        = errors.New("unknown record kind")
	ErrUnknownFlow        = errors.New("unknown flow type")
	ErrInvalidProbability = errors.New("invalid probability")
	ErrEmptyName          = errors.New("empty account name")
	ErrUnknownAccountType = errors.New("unknown account type")
)

func (k Kind) Valid() bool {
	switch k {
	case KindTransaction, KindDebt, KindCredit, KindInvestment, KindCommitment:
		return true
	}
	return false
}

func (f Flow) Valid() bool {
	return f == FlowIncome || f == FlowExpense
}

// FlowFor returns the flow direction implied by a record kind. Plain
// transactions carry their own direction and return the zero Flow.
func FlowFor(k Kind) Flow {
	switch k {
	case KindCredit:
		return FlowIncome
	case KindDebt, KindInvestment, KindCommitment:
		return FlowExpense
	}
	return ""
}

func (p Probability) Validate() error {
	switch p {
	case 0, 30, 50, 70, 100:
		return nil
	}
	return ErrInvalidProbability
}

// Weight returns the probability as a multiplier. Unset acts as certain.
func (p Probability) Weight() decimal.Decimal {
	if p == 0 {
		return decimal.NewFromInt(1)
	}
	return decimal.New(int64(p), -2)
}

// IndefiniteBound returns the open side of a window.
func IndefiniteBound() Bound {
	return Bound{}
}

// BoundAt returns a concrete bound, truncated to day precision in UTC.
func BoundAt(t time.Time, monthOnly bool) Bound {
	u := t.UTC()
	return Bound{
		date:      time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC),
		monthOnly: monthOnly,
	}
}

// Bound normalizes a DateConfig into a Bound. A concrete date always wins
// over the indefinite flag; no date means indefinite regardless of the flag.
func (c DateConfig) Bound() Bound {
	if c.Date == nil {
		return IndefiniteBound()
	}
	return BoundAt(*c.Date, c.MonthOnly)
}

func (b Bound) Indefinite() bool { return b.date.IsZero() }
func (b Bound) MonthOnly() bool  { return b.monthOnly }

// Date returns the concrete date of the bound; zero when indefinite.
func (b Bound) Date() time.Time { return b.date }

// Config converts a Bound back to its wire/storage shape.
func (b Bound) Config() DateConfig {
	if b.Indefinite() {
		return DateConfig{Indefinite: true}
	}
	d := b.date
	return DateConfig{MonthOnly: b.monthOnly, Date: &d}
}

// NewMoney wraps a decimal amount.
func NewMoney(d decimal.Decimal) Money { return Money{Amount: d} }

// MoneyZero is the additive identity.
func MoneyZero() Money { return Money{Amount: decimal.Zero} }

func (m Money) Add(o Money) Money { return Money{Amount: m.Amount.Add(o.Amount)} }
func (m Money) Sub(o Money) Money { return Money{Amount: m.Amount.Sub(o.Amount)} }

// Mul scales the amount by a factor.
func (m Money) Mul(factor decimal.Decimal) Money {
	return Money{Amount: m.Amount.Mul(factor)}
}

// MulInt scales the amount by an integer count.
func (m Money) MulInt(n int) Money {
	return Money{Amount: m.Amount.Mul(decimal.NewFromInt(int64(n)))}
}

func (m Money) IsZero() bool     { return m.Amount.IsZero() }
func (m Money) IsNegative() bool { return m.Amount.IsNegative() }

func (m Money) Equal(o Money) bool {
	return m.Amount.Equal(o.Amount)
}

// String renders the amount as a plain decimal, suitable for storage and JSON.
func (m Money) String() string { return m.Amount.String() }

func (m Money) Validate() error {
	if m.Amount.IsNegative() {
		return ErrInvalidAmount
	}
	return nil
}

func (r Record) Validate() error {
	if !r.Kind.Valid() {
		return ErrUnknownKind
	}
	if !r.Flow.Valid() {
		return ErrUnknownFlow
	}
	if implied := FlowFor(r.Kind); implied != "" && r.Flow != implied {
		return ErrUnknownFlow
	}
	if err := r.Amount.Validate(); err != nil {
		return err
	}
	if len(strings.TrimSpace(r.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(r.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if strings.TrimSpace(r.AccountID) == "" {
		return ErrEmptyAccount
	}
	if r.Kind == KindCredit {
		if err := r.Probability.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (t AccountType) Valid() bool {
	switch t {
	case AccountMain, AccountCard, AccountPiggyBank:
		return true
	}
	return false
}

func (a Account) Validate() error {
	if len(strings.TrimSpace(a.Name)) == 0 {
		return ErrEmptyName
	}
	if !a.Type.Valid() {
		return ErrUnknownAccountType
	}
	return nil
}
