package entitlementsvc

import (
	"time"

	"github.com/lena-biju/library-managment/model"
)

// Decide derives the access state for one (user, book) pair from its ledger
// entries. It is pure and is recomputed on every check; nothing caches the
// answer, since a cached flag would drift from ledger truth as rentals
// expire.
//
// A purchase grants access permanently. Otherwise the rental with the
// latest expiry decides: access holds while now < expiresAt. Entries
// referenced by a reversal are ignored.
func Decide(entries []model.Transaction, now time.Time) model.AccessResult {
	reversed := make(map[int64]bool)
	for _, e := range entries {
		if e.Kind == model.TxReversal && e.ReversedID != nil {
			reversed[*e.ReversedID] = true
		}
	}

	var latest *time.Time
	for i := range entries {
		e := entries[i]
		if reversed[e.ID] {
			continue
		}
		switch e.Kind {
		case model.TxPurchase:
			return model.AccessResult{State: model.AccessPurchased}
		case model.TxRental:
			if e.ExpiresAt != nil && (latest == nil || e.ExpiresAt.After(*latest)) {
				latest = e.ExpiresAt
			}
		}
	}

	if latest != nil && now.Before(*latest) {
		return model.AccessResult{State: model.AccessRented, ExpiresAt: latest}
	}
	return model.AccessResult{State: model.AccessNone}
}
