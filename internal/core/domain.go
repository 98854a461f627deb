package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  Kind = "INCOME"
	Expense Kind = "EXPENSE"
)

const (
	AccountCurrent    AccountType = "CURRENT"
	AccountSavings    AccountType = "SAVINGS"
	AccountInvestment AccountType = "INVESTMENT"
	AccountLoan       AccountType = "LOAN"
	AccountCredit     AccountType = "CREDIT"
)

type (
	// Kind partitions money movements into income and expenses.
	Kind string

	// AccountType classifies an account for net-worth purposes.
	// LOAN and CREDIT balances count as liabilities.
	AccountType string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Transaction is a single dated, categorized money movement.
	// Immutable once observed by the analytics engine.
	Transaction struct {
		Date        Date
		Description string
		Amount      Money
		Category    string
		Kind        Kind
	}

	// Account is a financial account with a current balance.
	Account struct {
		Name    string
		Type    AccountType
		Balance Money
	}
)

var (
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidKind      = errors.New("invalid transaction kind")
	ErrEmptyCategory    = errors.New("empty category")
	ErrEmptyAccountName = errors.New("empty account name")
)

// NewDate creates a new Date from year, month, day (UTC, midnight).
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// Day returns the day of the month.
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month as an int (1-12).
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year.
func (d Date) Year() int {
	return d.Time.Year()
}

func (k Kind) Validate() error {
	switch k {
	case Income, Expense:
		return nil
	}
	return ErrInvalidKind
}

// Validate rejects negative amounts. Zero is allowed: a transaction may
// legitimately record a zero movement (e.g. a fully refunded charge).
func (m Money) Validate() error {
	if m.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (t Transaction) Validate() error {
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if len(t.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	return t.Kind.Validate()
}

func (a Account) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return ErrEmptyAccountName
	}
	switch a.Type {
	case AccountCurrent, AccountSavings, AccountInvestment, AccountLoan, AccountCredit:
	default:
		return errors.New("invalid account type")
	}
	return nil
}

// IsLiability reports whether the account balance counts against net worth.
func (a Account) IsLiability() bool {
	return a.Type == AccountLoan || a.Type == AccountCredit
}
