package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/code-payments/code-escrow/pkg/database/query"
)

var (
	ErrAccountNotFound = errors.New("ledger account not found")
)

// Record is the persisted state of a single account
type Record struct {
	Id uint64

	Address    string
	Owner      string
	Lamports   uint64
	Data       []byte
	Executable bool

	CreatedAt     time.Time
	LastUpdatedAt time.Time
}

type Store interface {
	// Get gets the account at the provided address
	Get(ctx context.Context, address string) (*Record, error)

	// GetAllByOwner gets a page of accounts owned by the provided program,
	// ordered by address. Cursors are addresses.
	//
	// ErrAccountNotFound is returned when the page is empty.
	GetAllByOwner(ctx context.Context, owner string, opts ...query.Option) ([]*Record, error)

	// Save creates or updates the provided accounts. Either every record is
	// saved, or none are.
	Save(ctx context.Context, records ...*Record) error

	// Count returns the number of accounts in the ledger
	Count(ctx context.Context) (uint64, error)
}

func (r *Record) Validate() error {
	if len(r.Address) == 0 {
		return errors.New("address is required")
	}

	if len(r.Owner) == 0 {
		return errors.New("owner is required")
	}

	return nil
}

func (r *Record) Clone() Record {
	var data []byte
	if r.Data != nil {
		data = make([]byte, len(r.Data))
		copy(data, r.Data)
	}

	return Record{
		Id:            r.Id,
		Address:       r.Address,
		Owner:         r.Owner,
		Lamports:      r.Lamports,
		Data:          data,
		Executable:    r.Executable,
		CreatedAt:     r.CreatedAt,
		LastUpdatedAt: r.LastUpdatedAt,
	}
}

func (r *Record) CopyTo(dst *Record) {
	cloned := r.Clone()
	*dst = cloned
}
