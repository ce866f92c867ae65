package entitlementsvc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lena-biju/library-managment/model"
)

var t0 = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func rental(id int64, createdAt time.Time, period time.Duration) model.Transaction {
	exp := createdAt.Add(period)
	return model.Transaction{
		ID: id, UserID: 1, BookID: 7, Kind: model.TxRental,
		Amount: 9.99, PaymentRef: "ref", CreatedAt: createdAt, ExpiresAt: &exp,
	}
}

const day = 24 * time.Hour

func TestDecide_Empty(t *testing.T) {
	res := Decide(nil, t0)
	require.Equal(t, model.AccessNone, res.State)
}

func TestDecide_PurchaseNeverExpires(t *testing.T) {
	entries := []model.Transaction{
		{ID: 1, Kind: model.TxPurchase, CreatedAt: t0},
	}
	for _, at := range []time.Time{t0, t0.Add(365 * day), t0.Add(10 * 365 * day)} {
		res := Decide(entries, at)
		require.Equal(t, model.AccessPurchased, res.State, "at %v", at)
	}
}

func TestDecide_RentalExpiryBoundary(t *testing.T) {
	entries := []model.Transaction{rental(1, t0, 30*day)}

	res := Decide(entries, t0.Add(29*day))
	require.Equal(t, model.AccessRented, res.State)
	require.Equal(t, t0.Add(30*day), *res.ExpiresAt)

	res = Decide(entries, t0.Add(30*day))
	require.Equal(t, model.AccessNone, res.State)

	res = Decide(entries, t0.Add(30*day+time.Second))
	require.Equal(t, model.AccessNone, res.State)
}

func TestDecide_LatestExpiryWins(t *testing.T) {
	entries := []model.Transaction{
		rental(1, t0, 30*day),
		rental(2, t0.Add(20*day), 30*day), // renewed
	}
	res := Decide(entries, t0.Add(40*day))
	require.Equal(t, model.AccessRented, res.State)
	require.Equal(t, t0.Add(50*day), *res.ExpiresAt)
}

func TestDecide_PurchaseBeatsExpiredRental(t *testing.T) {
	entries := []model.Transaction{
		rental(1, t0, 30*day),
		{ID: 2, Kind: model.TxPurchase, CreatedAt: t0.Add(40 * day)},
	}
	res := Decide(entries, t0.Add(100*day))
	require.Equal(t, model.AccessPurchased, res.State)
}

func TestDecide_ReversedPurchaseIgnored(t *testing.T) {
	one := int64(1)
	entries := []model.Transaction{
		{ID: 1, Kind: model.TxPurchase, CreatedAt: t0},
		{ID: 2, Kind: model.TxReversal, ReversedID: &one, CreatedAt: t0.Add(day)},
	}
	res := Decide(entries, t0.Add(2*day))
	require.Equal(t, model.AccessNone, res.State)
}

func TestDecide_ReversedRentalIgnored(t *testing.T) {
	one := int64(1)
	entries := []model.Transaction{
		rental(1, t0, 30*day),
		{ID: 2, Kind: model.TxReversal, ReversedID: &one, CreatedAt: t0.Add(day)},
	}
	res := Decide(entries, t0.Add(2*day))
	require.Equal(t, model.AccessNone, res.State)
}
