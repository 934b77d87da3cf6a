package memory

import (
	"context"
	"sync"
	"time"

	"github.com/emirpasic/gods/maps/treemap"
	"github.com/emirpasic/gods/utils"

	"github.com/code-payments/code-escrow/pkg/database/query"
	"github.com/code-payments/code-escrow/pkg/ledger"
)

type store struct {
	mu      sync.Mutex
	last    uint64
	records *treemap.Map
}

// New returns a new in memory ledger.Store
func New() ledger.Store {
	return &store{
		records: treemap.NewWith(utils.StringComparator),
	}
}

// Get implements ledger.Store.Get
func (s *store) Get(_ context.Context, address string) (*ledger.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.records.Get(address)
	if !ok {
		return nil, ledger.ErrAccountNotFound
	}

	cloned := item.(*ledger.Record).Clone()
	return &cloned, nil
}

// GetAllByOwner implements ledger.Store.GetAllByOwner
func (s *store) GetAllByOwner(_ context.Context, owner string, opts ...query.Option) ([]*ledger.Record, error) {
	req, err := query.DefaultPaginationHandler(opts...)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	it := s.records.Iterator()
	next := it.Next
	if req.SortBy == query.Descending {
		it.End()
		next = it.Prev
	}

	var res []*ledger.Record
	for next() && uint64(len(res)) < req.Limit {
		item := it.Value().(*ledger.Record)
		if item.Owner != owner {
			continue
		}

		if len(req.Cursor) > 0 {
			if req.SortBy == query.Ascending && item.Address <= req.Cursor.String() {
				continue
			}
			if req.SortBy == query.Descending && item.Address >= req.Cursor.String() {
				continue
			}
		}

		cloned := item.Clone()
		res = append(res, &cloned)
	}

	if len(res) == 0 {
		return nil, ledger.ErrAccountNotFound
	}
	return res, nil
}

// Save implements ledger.Store.Save
func (s *store) Save(_ context.Context, records ...*ledger.Record) error {
	for _, record := range records {
		if err := record.Validate(); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for _, record := range records {
		if existing, ok := s.records.Get(record.Address); ok {
			item := existing.(*ledger.Record)
			item.Owner = record.Owner
			item.Lamports = record.Lamports
			item.Data = append([]byte(nil), record.Data...)
			item.Executable = record.Executable
			item.LastUpdatedAt = now

			item.CopyTo(record)
			continue
		}

		s.last++
		record.Id = s.last
		record.CreatedAt = now
		record.LastUpdatedAt = now

		cloned := record.Clone()
		s.records.Put(record.Address, &cloned)
	}

	return nil
}

// Count implements ledger.Store.Count
func (s *store) Count(_ context.Context) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return uint64(s.records.Size()), nil
}

func (s *store) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.last = 0
	s.records.Clear()
}
