package postgres

import (
	"context"
	"database/sql"
	"math"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	pgutil "github.com/code-payments/code-escrow/pkg/database/postgres"
	"github.com/code-payments/code-escrow/pkg/database/query"
	"github.com/code-payments/code-escrow/pkg/ledger"
)

const (
	tableName = "escrow__core_ledgeraccount"
)

// ErrLamportsOutOfRange is returned for balances the BIGINT column can't hold
var ErrLamportsOutOfRange = errors.New("lamports exceed the storable range")

type model struct {
	Id            sql.NullInt64 `db:"id"`
	Address       string        `db:"address"`
	Owner         string        `db:"owner"`
	Lamports      int64         `db:"lamports"`
	Data          []byte        `db:"data"`
	Executable    bool          `db:"executable"`
	CreatedAt     time.Time     `db:"created_at"`
	LastUpdatedAt time.Time     `db:"last_updated_at"`
}

func toModel(obj *ledger.Record) (*model, error) {
	if err := obj.Validate(); err != nil {
		return nil, err
	}

	if obj.Lamports > math.MaxInt64 {
		return nil, errors.Wrapf(ErrLamportsOutOfRange, "%s holds %d", obj.Address, obj.Lamports)
	}

	data := obj.Data
	if data == nil {
		data = []byte{}
	}

	return &model{
		Address:    obj.Address,
		Owner:      obj.Owner,
		Lamports:   int64(obj.Lamports),
		Data:       data,
		Executable: obj.Executable,
	}, nil
}

func fromModel(obj *model) *ledger.Record {
	return &ledger.Record{
		Id:            uint64(obj.Id.Int64),
		Address:       obj.Address,
		Owner:         obj.Owner,
		Lamports:      uint64(obj.Lamports),
		Data:          obj.Data,
		Executable:    obj.Executable,
		CreatedAt:     obj.CreatedAt,
		LastUpdatedAt: obj.LastUpdatedAt,
	}
}

func (m *model) dbSave(ctx context.Context, tx *sqlx.Tx) error {
	query := `INSERT INTO ` + tableName + `
		(address, owner, lamports, data, executable, created_at, last_updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)

		ON CONFLICT (address)
		DO UPDATE
			SET owner = $2, lamports = $3, data = $4, executable = $5, last_updated_at = $6
			WHERE ` + tableName + `.address = $1

		RETURNING id, address, owner, lamports, data, executable, created_at, last_updated_at
	`

	return tx.QueryRowxContext(
		ctx,
		query,
		m.Address,
		m.Owner,
		m.Lamports,
		m.Data,
		m.Executable,
		time.Now(),
	).StructScan(m)
}

func dbGet(ctx context.Context, db *sqlx.DB, address string) (*model, error) {
	var res model
	query := `SELECT id, address, owner, lamports, data, executable, created_at, last_updated_at FROM ` + tableName + `
		WHERE address = $1
	`

	err := db.GetContext(ctx, &res, query, address)
	if err != nil {
		return nil, pgutil.CheckNoRows(err, ledger.ErrAccountNotFound)
	}
	return &res, nil
}

func dbGetAllByOwner(ctx context.Context, db *sqlx.DB, owner string, cursor query.Cursor, limit uint64, direction query.Ordering) ([]*model, error) {
	var res []*model
	q, args := query.PaginateQuery(
		`SELECT id, address, owner, lamports, data, executable, created_at, last_updated_at FROM `+tableName+`
			WHERE (owner = $1)`,
		[]interface{}{owner},
		"address",
		cursor,
		limit,
		direction,
	)

	err := db.SelectContext(ctx, &res, q, args...)
	if err != nil {
		return nil, pgutil.CheckNoRows(err, ledger.ErrAccountNotFound)
	}
	if len(res) == 0 {
		return nil, ledger.ErrAccountNotFound
	}
	return res, nil
}

func dbCount(ctx context.Context, db *sqlx.DB) (uint64, error) {
	var res uint64
	query := `SELECT COUNT(*) FROM ` + tableName

	err := db.GetContext(ctx, &res, query)
	if err != nil {
		return 0, err
	}
	return res, nil
}
