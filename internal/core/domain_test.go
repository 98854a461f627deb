package core

import (
	"testing"
	"time"
)

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2025, 1, 1), true},
		{NewDate(2025, 12, 31), true},
		{Date{Time: time.Time{}}, false}, // zero time
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestMoneyValidate(t *testing.T) {
	if err := (Money{Cents: 1}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Money{Cents: 0}).Validate(); err != nil {
		t.Fatalf("zero amount should be valid, got %v", err)
	}
	if err := (Money{Cents: -1}).Validate(); err == nil {
		t.Fatalf("expected error for negative")
	}
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		Date:        NewDate(2025, 1, 1),
		Description: "weekly shop",
		Amount:      Money{Cents: 12050},
		Category:    "groceries",
		Kind:        Expense,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Transaction{
		{Date: Date{}, Amount: Money{Cents: 1}, Category: "c", Kind: Expense},
		{Date: NewDate(2025, 1, 1), Amount: Money{Cents: -1}, Category: "c", Kind: Expense},
		{Date: NewDate(2025, 1, 1), Amount: Money{Cents: 1}, Category: "  ", Kind: Expense},
		{Date: NewDate(2025, 1, 1), Amount: Money{Cents: 1}, Category: "c", Kind: "TRANSFER"},
	}
	for i, tx := range bads {
		if err := tx.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestAccountValidate(t *testing.T) {
	if err := (Account{Name: "Main", Type: AccountCurrent, Balance: Money{Cents: 100}}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Account{Name: "", Type: AccountCurrent}).Validate(); err == nil {
		t.Fatalf("expected error for empty name")
	}
	if err := (Account{Name: "x", Type: "OTHER"}).Validate(); err == nil {
		t.Fatalf("expected error for unknown type")
	}
}

func TestAccountIsLiability(t *testing.T) {
	cases := []struct {
		typ  AccountType
		want bool
	}{
		{AccountCurrent, false},
		{AccountSavings, false},
		{AccountInvestment, false},
		{AccountLoan, true},
		{AccountCredit, true},
	}
	for _, tc := range cases {
		a := Account{Name: "a", Type: tc.typ}
		if got := a.IsLiability(); got != tc.want {
			t.Fatalf("%s: expected %v, got %v", tc.typ, tc.want, got)
		}
	}
}

func TestParseDecimalToCents(t *testing.T) {
	cases := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"12.34", 1234, true},
		{"12,34", 1234, true},
		{"12.345", 1234, true},
		{"12.346", 1235, true},
		{"0", 0, true},
		{"0.5", 50, true},
		{"", 0, false},
		{"-3", 0, false},
		{"+3", 0, false},
		{"1.2.3", 0, false},
		{"abc", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseDecimalToCents(tc.in)
		if tc.ok && (err != nil || got != tc.want) {
			t.Fatalf("%q: expected %d, got %d (%v)", tc.in, tc.want, got, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("%q: expected error", tc.in)
		}
	}
}

func TestMoneyDollars(t *testing.T) {
	if got := (Money{Cents: 12345}).Dollars(); got != 123.45 {
		t.Fatalf("expected 123.45, got %v", got)
	}
}

func TestCentsFromFloat(t *testing.T) {
	cases := []struct {
		in   float64
		want int64
	}{
		{123.45, 12345},
		{0.005, 1},
		{0, 0},
		{-1.25, -125},
	}
	for _, tc := range cases {
		if got := CentsFromFloat(tc.in); got != tc.want {
			t.Fatalf("%v: expected %d, got %d", tc.in, tc.want, got)
		}
	}
}
