package entitlementsvc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lena-biju/library-managment/model"
	"github.com/lena-biju/library-managment/repository/catalog"
	entitlementrepo "github.com/lena-biju/library-managment/repository/entitlement"
	paymentrepo "github.com/lena-biju/library-managment/repository/payment"
	userrepo "github.com/lena-biju/library-managment/repository/user"
	"github.com/lena-biju/library-managment/service/plan"
)

// errors used by controllers

type ErrCode string

const (
	ErrBookNotFound  ErrCode = "BOOK_NOT_FOUND"
	ErrUserNotFound  ErrCode = "USER_NOT_FOUND"
	ErrEntryNotFound ErrCode = "ENTRY_NOT_FOUND"
	ErrQuotaExceeded ErrCode = "QUOTA_EXCEEDED"
	ErrBadKind       ErrCode = "BAD_KIND"
	ErrUnavailable   ErrCode = "BOOK_UNAVAILABLE"
	ErrBadCallback   ErrCode = "BAD_CALLBACK"
)

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }
func makeErr(c ErrCode) error      { return codedError{code: c} }

// Code extracts error code
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

// dto

type CheckoutCreated struct {
	PaymentLink string
	PaymentRef  string
	Amount      float64
	ExpiresAt   string
}

// Books only needs lookups; the catalog store satisfies it.
type Books interface {
	GetByID(id int64) (*model.Book, error)
}

// Users only needs lookups; the identity repository satisfies it.
type Users interface {
	ByID(ctx context.Context, id int64) (*model.User, error)
}

type Service interface {
	// Grant appends a payment-confirmed entry. Idempotent with respect to
	// paymentRef: a second call with the same reference returns the entry
	// recorded by the first. amount <= 0 means charge the list price for
	// the kind.
	Grant(ctx context.Context, userID, bookID int64, kind model.TxKind, amount float64, paymentRef string) (*model.Transaction, error)

	// Reverse appends a compensating entry for an existing grant. History
	// is never edited.
	Reverse(ctx context.Context, entryID int64, paymentRef string) (*model.Transaction, error)

	// History lists every ledger entry for the user, newest first.
	History(ctx context.Context, userID int64) ([]model.Transaction, error)

	// Access answers "can this user read this book at now, and how".
	Access(ctx context.Context, userID, bookID int64, now time.Time) (model.AccessResult, error)

	// Checkout creates a provider invoice for a purchase or rental. The
	// ledger is only appended once the provider confirms payment through
	// the webhook.
	Checkout(ctx context.Context, userID, bookID int64, kind model.TxKind, payerEmail string) (*CheckoutCreated, error)

	// HandleCallback processes the provider webhook and grants on PAID.
	HandleCallback(ctx context.Context, sigHeader string, raw []byte) error
}

type service struct {
	r      entitlementrepo.Repo
	books  Books
	users  Users
	policy plan.Policy
	pay    paymentrepo.Provider
}

func New(r entitlementrepo.Repo, books Books, users Users, policy plan.Policy, pay paymentrepo.Provider) Service {
	return &service{r: r, books: books, users: users, policy: policy, pay: pay}
}

func (s *service) Grant(ctx context.Context, userID, bookID int64, kind model.TxKind, amount float64, paymentRef string) (*model.Transaction, error) {
	if kind != model.TxPurchase && kind != model.TxRental {
		return nil, makeErr(ErrBadKind)
	}

	book, err := s.books.GetByID(bookID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return nil, makeErr(ErrBookNotFound)
		}
		return nil, err
	}

	u, err := s.users.ByID(ctx, userID)
	if err != nil {
		if errors.Is(err, userrepo.ErrNotFound) {
			return nil, makeErr(ErrUserNotFound)
		}
		return nil, err
	}

	// Retried confirmations for an already-recorded payment are the common
	// case; answer them without touching the ledger.
	if existing, err := s.r.ByPaymentRef(ctx, paymentRef); err == nil {
		return existing, nil
	} else if !errors.Is(err, entitlementrepo.ErrNotFound) {
		return nil, err
	}

	if amount <= 0 {
		amount = listPrice(book, kind)
	}

	t := &model.Transaction{
		UserID:     userID,
		BookID:     bookID,
		Kind:       kind,
		Amount:     amount,
		PaymentRef: paymentRef,
	}
	if kind == model.TxRental {
		exp := time.Now().UTC().Add(s.policy.RentalPeriod(u.Plan))
		t.ExpiresAt = &exp
	}

	out, err := s.r.Append(ctx, t, s.policy.MaxConcurrentRentals(u.Plan))
	if err != nil {
		if errors.Is(err, entitlementrepo.ErrQuotaExceeded) {
			return nil, makeErr(ErrQuotaExceeded)
		}
		return nil, err
	}
	return out, nil
}

func (s *service) Reverse(ctx context.Context, entryID int64, paymentRef string) (*model.Transaction, error) {
	orig, err := s.r.ByID(ctx, entryID)
	if err != nil {
		if errors.Is(err, entitlementrepo.ErrNotFound) {
			return nil, makeErr(ErrEntryNotFound)
		}
		return nil, err
	}

	if existing, err := s.r.ByPaymentRef(ctx, paymentRef); err == nil {
		return existing, nil
	} else if !errors.Is(err, entitlementrepo.ErrNotFound) {
		return nil, err
	}

	t := &model.Transaction{
		UserID:     orig.UserID,
		BookID:     orig.BookID,
		Kind:       model.TxReversal,
		Amount:     -orig.Amount,
		PaymentRef: paymentRef,
		ReversedID: &orig.ID,
	}
	return s.r.Append(ctx, t, 0)
}

func (s *service) History(ctx context.Context, userID int64) ([]model.Transaction, error) {
	return s.r.ListForUser(ctx, userID)
}

func (s *service) Access(ctx context.Context, userID, bookID int64, now time.Time) (model.AccessResult, error) {
	if _, err := s.books.GetByID(bookID); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return model.AccessResult{}, makeErr(ErrBookNotFound)
		}
		return model.AccessResult{}, err
	}
	entries, err := s.r.ListForUserBook(ctx, userID, bookID)
	if err != nil {
		return model.AccessResult{}, err
	}
	return Decide(entries, now), nil
}

func (s *service) Checkout(ctx context.Context, userID, bookID int64, kind model.TxKind, payerEmail string) (*CheckoutCreated, error) {
	if kind != model.TxPurchase && kind != model.TxRental {
		return nil, makeErr(ErrBadKind)
	}

	book, err := s.books.GetByID(bookID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return nil, makeErr(ErrBookNotFound)
		}
		return nil, err
	}
	if !book.Availability {
		return nil, makeErr(ErrUnavailable)
	}
	if _, err := s.users.ByID(ctx, userID); err != nil {
		if errors.Is(err, userrepo.ErrNotFound) {
			return nil, makeErr(ErrUserNotFound)
		}
		return nil, err
	}

	amount := listPrice(book, kind)
	exp := 24 * time.Hour
	inv, err := s.pay.CreateInvoice(paymentrepo.CreateInvoiceReq{
		ExternalID:  fmt.Sprintf("%s:%d:%d:%s", kind, userID, bookID, uuid.NewString()),
		Amount:      amount,
		PayerEmail:  payerEmail,
		Description: fmt.Sprintf("Book %s: %s", kind, book.Title),
		ExpirySec:   int(exp.Seconds()),
	})
	if err != nil {
		return nil, err
	}

	return &CheckoutCreated{
		PaymentLink: inv.InvoiceURL,
		PaymentRef:  inv.InvoiceID,
		Amount:      amount,
		ExpiresAt:   inv.ExpiresAt,
	}, nil
}

type invoiceEvent struct {
	ID         string  `json:"id"`
	Status     string  `json:"status"`
	ExternalID string  `json:"external_id"`
	Amount     float64 `json:"amount"`
}

func (s *service) HandleCallback(ctx context.Context, sigHeader string, raw []byte) error {
	if err := s.pay.VerifyCallbackSignature(sigHeader, raw); err != nil {
		return makeErr(ErrBadCallback)
	}

	var ev invoiceEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		return makeErr(ErrBadCallback)
	}
	if ev.ID == "" || ev.Status == "" {
		return makeErr(ErrBadCallback)
	}
	if ev.Status != "PAID" {
		// EXPIRED and the rest: nothing was granted, nothing to undo.
		return nil
	}

	kind, userID, bookID, err := parseExternalID(ev.ExternalID)
	if err != nil {
		return makeErr(ErrBadCallback)
	}

	// The invoice id is the payment reference, so redelivered webhooks
	// collapse onto the original grant.
	_, err = s.Grant(ctx, userID, bookID, kind, ev.Amount, ev.ID)
	return err
}

func parseExternalID(ext string) (model.TxKind, int64, int64, error) {
	parts := strings.Split(ext, ":")
	if len(parts) < 3 {
		return "", 0, 0, fmt.Errorf("malformed external id %q", ext)
	}
	kind := model.TxKind(parts[0])
	userID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return "", 0, 0, err
	}
	bookID, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return "", 0, 0, err
	}
	return kind, userID, bookID, nil
}

func listPrice(b *model.Book, kind model.TxKind) float64 {
	if kind == model.TxRental {
		return b.RentPrice
	}
	return b.Price
}
