// model/transaction.go
package model

import "time"

type TxKind string

const (
	TxPurchase TxKind = "purchase"
	TxRental   TxKind = "rental"
	TxReversal TxKind = "reversal"
)

// Transaction is one ledger entry. Entries are append-only: a refund is a
// reversal entry pointing at the original, never an update.
type Transaction struct {
	ID         int64      `json:"id"`
	UserID     int64      `json:"user_id"`
	BookID     int64      `json:"book_id"`
	Kind       TxKind     `json:"kind"`
	Amount     float64    `json:"amount"`
	PaymentRef string     `json:"payment_ref"`
	ReversedID *int64     `json:"reversed_id,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
}

type AccessState string

const (
	AccessNone      AccessState = "none"
	AccessPurchased AccessState = "purchased"
	AccessRented    AccessState = "rented"
)

// AccessResult is derived from the ledger on every check, never stored.
type AccessResult struct {
	State     AccessState `json:"state"`
	ExpiresAt *time.Time  `json:"expires_at,omitempty"`
}
