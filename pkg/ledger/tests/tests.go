package tests

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/code-escrow/pkg/database/query"
	"github.com/code-payments/code-escrow/pkg/ledger"
)

func RunTests(t *testing.T, s ledger.Store, teardown func()) {
	for _, tf := range []func(t *testing.T, s ledger.Store){
		testHappyPath,
		testGetAllByOwner,
		testGetAllByOwnerPaging,
		testBatchSave,
		testInvalidRecord,
	} {
		tf(t, s)
		teardown()
	}
}

func testHappyPath(t *testing.T, s ledger.Store) {
	t.Run("testHappyPath", func(t *testing.T) {
		ctx := context.Background()
		start := time.Now()
		time.Sleep(time.Millisecond)

		record := &ledger.Record{
			Address:  "address",
			Owner:    "owner",
			Lamports: 1_000_000,
			Data:     []byte{1, 2, 3},
		}
		cloned := record.Clone()

		_, err := s.Get(ctx, record.Address)
		assert.Equal(t, ledger.ErrAccountNotFound, err)

		count, err := s.Count(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 0, count)

		require.NoError(t, s.Save(ctx, record))
		assert.True(t, record.Id > 0)

		actual, err := s.Get(ctx, record.Address)
		require.NoError(t, err)
		assert.Equal(t, record.Id, actual.Id)
		assert.True(t, actual.CreatedAt.After(start))
		assert.True(t, actual.LastUpdatedAt.After(start))
		assertEquivalentRecords(t, &cloned, actual)

		updateTime := time.Now()
		time.Sleep(time.Millisecond)

		record.Owner = "new_owner"
		record.Lamports = 42
		record.Data = nil
		record.Executable = true
		cloned = record.Clone()
		require.NoError(t, s.Save(ctx, record))

		actual, err = s.Get(ctx, record.Address)
		require.NoError(t, err)
		assert.Equal(t, record.Id, actual.Id)
		assert.True(t, actual.CreatedAt.Before(updateTime))
		assert.True(t, actual.LastUpdatedAt.After(updateTime))
		assertEquivalentRecords(t, &cloned, actual)

		count, err = s.Count(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 1, count)

		// Mutating a returned record never changes what's stored
		actual.Data = append(actual.Data, 1)
		actual, err = s.Get(ctx, record.Address)
		require.NoError(t, err)
		assert.Empty(t, actual.Data)
	})
}

func testGetAllByOwner(t *testing.T, s ledger.Store) {
	t.Run("testGetAllByOwner", func(t *testing.T) {
		ctx := context.Background()

		_, err := s.GetAllByOwner(ctx, "owner1")
		assert.Equal(t, ledger.ErrAccountNotFound, err)

		var records []*ledger.Record
		for i := 0; i < 10; i++ {
			records = append(records, &ledger.Record{
				Address:  fmt.Sprintf("address%d", 9-i),
				Owner:    fmt.Sprintf("owner%d", i%2),
				Lamports: uint64(i),
			})
		}
		require.NoError(t, s.Save(ctx, records...))

		actual, err := s.GetAllByOwner(ctx, "owner1")
		require.NoError(t, err)
		require.Len(t, actual, 5)
		for i, record := range actual {
			assert.Equal(t, "owner1", record.Owner)
			assert.Equal(t, fmt.Sprintf("address%d", 2*i), record.Address)
		}

		_, err = s.GetAllByOwner(ctx, "owner2")
		assert.Equal(t, ledger.ErrAccountNotFound, err)
	})
}

func testGetAllByOwnerPaging(t *testing.T, s ledger.Store) {
	t.Run("testGetAllByOwnerPaging", func(t *testing.T) {
		ctx := context.Background()

		var records []*ledger.Record
		for i := 0; i < 10; i++ {
			records = append(records, &ledger.Record{
				Address: fmt.Sprintf("address%d", i),
				Owner:   "owner",
			})
		}
		records = append(records, &ledger.Record{
			Address: "address5a",
			Owner:   "other",
		})
		require.NoError(t, s.Save(ctx, records...))

		for _, direction := range []query.Ordering{query.Ascending, query.Descending} {
			var addresses []string
			var cursor query.Cursor
			for {
				page, err := s.GetAllByOwner(
					ctx,
					"owner",
					query.WithLimit(3),
					query.WithDirection(direction),
					query.WithCursor(cursor),
				)
				if err == ledger.ErrAccountNotFound {
					break
				}
				require.NoError(t, err)
				require.True(t, len(page) <= 3)

				for _, record := range page {
					addresses = append(addresses, record.Address)
				}
				cursor = query.ToCursor(page[len(page)-1].Address)
			}

			require.Len(t, addresses, 10)
			for i, address := range addresses {
				expected := i
				if direction == query.Descending {
					expected = 9 - i
				}
				assert.Equal(t, fmt.Sprintf("address%d", expected), address)
			}
		}

		_, err := s.GetAllByOwner(ctx, "owner", query.WithLimit(0))
		assert.Equal(t, query.ErrQueryNotSupported, err)
	})
}

func testBatchSave(t *testing.T, s ledger.Store) {
	t.Run("testBatchSave", func(t *testing.T) {
		ctx := context.Background()

		valid := &ledger.Record{
			Address:  "valid",
			Owner:    "owner",
			Lamports: 1,
		}
		invalid := &ledger.Record{
			Address: "invalid",
		}
		require.Error(t, s.Save(ctx, valid, invalid))

		_, err := s.Get(ctx, valid.Address)
		assert.Equal(t, ledger.ErrAccountNotFound, err)

		count, err := s.Count(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 0, count)

		other := &ledger.Record{
			Address:  "other",
			Owner:    "owner",
			Lamports: 2,
		}
		require.NoError(t, s.Save(ctx, valid, other))

		count, err = s.Count(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 2, count)
	})
}

func testInvalidRecord(t *testing.T, s ledger.Store) {
	t.Run("testInvalidRecord", func(t *testing.T) {
		ctx := context.Background()

		assert.Error(t, s.Save(ctx, &ledger.Record{Owner: "owner"}))
		assert.Error(t, s.Save(ctx, &ledger.Record{Address: "address"}))
	})
}

func assertEquivalentRecords(t *testing.T, obj1, obj2 *ledger.Record) {
	assert.Equal(t, obj1.Address, obj2.Address)
	assert.Equal(t, obj1.Owner, obj2.Owner)
	assert.Equal(t, obj1.Lamports, obj2.Lamports)
	assert.Equal(t, len(obj1.Data), len(obj2.Data))
	if len(obj1.Data) > 0 {
		assert.Equal(t, obj1.Data, obj2.Data)
	}
	assert.Equal(t, obj1.Executable, obj2.Executable)
}
