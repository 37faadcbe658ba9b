package core

import (
	"fmt"
	"time"
)

// TransactionKind marks a ledger entry as an earn or a spend.
type TransactionKind string

const (
	TransactionEarn  TransactionKind = "earn"
	TransactionSpend TransactionKind = "spend"
)

// Transaction is one append-only currency ledger entry. Spend entries
// record the positive spent amount; the kind carries the sign.
type Transaction struct {
	Time        time.Time       `json:"time"`
	Amount      int             `json:"amount"`
	Kind        TransactionKind `json:"kind"`
	Source      string          `json:"source"`
	Description string          `json:"description,omitempty"`
}

// CurrencyState is the key-gem ledger. Invariant after every operation:
// Balance == TotalEarned - sum of spend amounts, and Balance >= 0.
type CurrencyState struct {
	Balance      int           `json:"balance"`
	TotalEarned  int           `json:"total_earned"`
	Transactions []Transaction `json:"transactions"`
}

// Credit appends an earn transaction and returns the new balance.
func (c *CurrencyState) Credit(now time.Time, amount int, source, description string) (int, error) {
	if amount <= 0 {
		return c.Balance, ErrInvalidAmount
	}
	c.Balance += amount
	c.TotalEarned += amount
	c.Transactions = append(c.Transactions, Transaction{
		Time:        now,
		Amount:      amount,
		Kind:        TransactionEarn,
		Source:      source,
		Description: description,
	})
	return c.Balance, nil
}

// Debit appends a spend transaction and returns the new balance. A debit
// larger than the balance is rejected whole; there is no partial spend.
func (c *CurrencyState) Debit(now time.Time, amount int, source, description string) (int, error) {
	if amount <= 0 {
		return c.Balance, ErrInvalidAmount
	}
	if amount > c.Balance {
		return c.Balance, &InsufficientFundsError{Balance: c.Balance, Requested: amount}
	}
	c.Balance -= amount
	c.Transactions = append(c.Transactions, Transaction{
		Time:        now,
		Amount:      amount,
		Kind:        TransactionSpend,
		Source:      source,
		Description: description,
	})
	return c.Balance, nil
}

// CheckInvariant recomputes the balance from the transaction log and
// reports any divergence. Used by tests and storage round-trip checks.
func (c CurrencyState) CheckInvariant() error {
	spent := 0
	earned := 0
	for _, tx := range c.Transactions {
		switch tx.Kind {
		case TransactionEarn:
			earned += tx.Amount
		case TransactionSpend:
			spent += tx.Amount
		default:
			return fmt.Errorf("unknown transaction kind %q", tx.Kind)
		}
	}
	if earned != c.TotalEarned {
		return fmt.Errorf("total earned %d does not match ledger sum %d", c.TotalEarned, earned)
	}
	if got := c.TotalEarned - spent; got != c.Balance {
		return fmt.Errorf("balance %d does not match ledger-derived %d", c.Balance, got)
	}
	if c.Balance < 0 {
		return fmt.Errorf("negative balance %d", c.Balance)
	}
	return nil
}
