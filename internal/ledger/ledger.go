// Package ledger keeps the members' points. Points only ever grow.
package ledger

import (
	"context"
	"errors"
	"sort"

	"github.com/rs/zerolog"

	"communitybot/internal/models"
	"communitybot/internal/store"
	"communitybot/pkg/utils"
)

// ErrInvalidDelta is returned for awards that are not strictly positive
var ErrInvalidDelta = errors.New("ledger: award must be positive")

// Ledger is the points store shared by every rewarding handler
type Ledger interface {
	Balance(ctx context.Context, memberID string) (int64, error)
	Award(ctx context.Context, memberID, displayName string, delta int64) (int64, error)
	Top(ctx context.Context, limit int) ([]models.PointsRecord, error)
}

// PointsBook is the persisted shape of the points document
type PointsBook map[string]*models.PointsRecord

func NewPointsBook() PointsBook { return PointsBook{} }

// DocumentLedger keeps the ledger in the points document
type DocumentLedger struct {
	doc   *store.Document[PointsBook]
	clock utils.Clock
}

func NewDocumentLedger(backend store.Backend, clock utils.Clock) *DocumentLedger {
	return &DocumentLedger{
		doc:   store.NewDocument(backend, store.Points, NewPointsBook),
		clock: clock,
	}
}

func (l *DocumentLedger) Balance(ctx context.Context, memberID string) (int64, error) {
	book, err := l.doc.Get(ctx)
	if err != nil {
		return 0, err
	}
	if rec, ok := book[memberID]; ok && rec != nil {
		return rec.Points, nil
	}
	return 0, nil
}

// Award credits delta points, creating the record on first award
func (l *DocumentLedger) Award(ctx context.Context, memberID, displayName string, delta int64) (int64, error) {
	if delta <= 0 {
		return 0, ErrInvalidDelta
	}

	var total int64
	_, err := l.doc.Update(ctx, func(book *PointsBook) error {
		if *book == nil {
			*book = NewPointsBook()
		}
		rec, ok := (*book)[memberID]
		if !ok || rec == nil {
			rec = &models.PointsRecord{DisplayName: displayName}
			(*book)[memberID] = rec
		}
		if displayName != "" {
			rec.DisplayName = displayName
		}
		rec.Points += delta
		rec.LastUpdate = l.clock.Now()
		total = rec.Points
		return nil
	})
	if err != nil {
		return 0, err
	}

	zerolog.Ctx(ctx).Debug().Str("member", memberID).Int64("delta", delta).Int64("total", total).Msg("Points awarded")
	return total, nil
}

// Top returns up to limit records ordered by points, highest first
func (l *DocumentLedger) Top(ctx context.Context, limit int) ([]models.PointsRecord, error) {
	book, err := l.doc.Get(ctx)
	if err != nil {
		return nil, err
	}

	records := make([]models.PointsRecord, 0, len(book))
	for id, rec := range book {
		if rec == nil {
			continue
		}
		r := *rec
		r.MemberID = id
		records = append(records, r)
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].Points != records[j].Points {
			return records[i].Points > records[j].Points
		}
		return records[i].MemberID < records[j].MemberID
	})
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

var _ Ledger = (*DocumentLedger)(nil)
