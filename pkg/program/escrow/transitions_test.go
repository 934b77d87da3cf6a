package escrow

import (
	"crypto/ed25519"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	swap_escrow "github.com/code-payments/code-escrow/pkg/solana/escrow"
)

func testRecord(t *testing.T, state swap_escrow.EscrowState) (*swap_escrow.EscrowAccount, []ed25519.PublicKey) {
	keys := make([]ed25519.PublicKey, 5)
	for i := range keys {
		pub, _, err := ed25519.GenerateKey(nil)
		require.NoError(t, err)
		keys[i] = pub
	}

	return &swap_escrow.EscrowAccount{
		SizeX:      100,
		SizeY:      50,
		PartyA:     keys[0],
		PartyB:     keys[1],
		MintX:      keys[2],
		MintY:      keys[3],
		State:      state,
		VaultXBump: 254,
		VaultYBump: 255,
	}, keys
}

func TestTransitions(t *testing.T) {
	const (
		partyA = iota
		partyB
		stranger = 4
	)

	allStates := []swap_escrow.EscrowState{
		swap_escrow.EscrowStateUninitialized,
		swap_escrow.EscrowStateInitialized,
		swap_escrow.EscrowStateDepositAlice,
		swap_escrow.EscrowStateDepositBob,
		swap_escrow.EscrowStateCommitted,
		swap_escrow.EscrowStateWithdrawAlice,
		swap_escrow.EscrowStateWithdrawBob,
	}

	type transition struct {
		to  swap_escrow.EscrowState
		leg string
	}

	for _, tc := range []struct {
		name     string
		fn       transitionFunc
		caller   int
		expected map[swap_escrow.EscrowState]transition
	}{
		{
			name:   "deposit by party a",
			fn:     depositTransition,
			caller: partyA,
			expected: map[swap_escrow.EscrowState]transition{
				swap_escrow.EscrowStateInitialized: {swap_escrow.EscrowStateDepositAlice, "x"},
				swap_escrow.EscrowStateDepositBob:  {swap_escrow.EscrowStateCommitted, "x"},
			},
		},
		{
			name:   "deposit by party b",
			fn:     depositTransition,
			caller: partyB,
			expected: map[swap_escrow.EscrowState]transition{
				swap_escrow.EscrowStateInitialized:  {swap_escrow.EscrowStateDepositBob, "y"},
				swap_escrow.EscrowStateDepositAlice: {swap_escrow.EscrowStateCommitted, "y"},
			},
		},
		{
			name:   "withdrawal by party a",
			fn:     withdrawalTransition,
			caller: partyA,
			expected: map[swap_escrow.EscrowState]transition{
				swap_escrow.EscrowStateCommitted:   {swap_escrow.EscrowStateWithdrawAlice, "y"},
				swap_escrow.EscrowStateWithdrawBob: {swap_escrow.EscrowStateUninitialized, "y"},
			},
		},
		{
			name:   "withdrawal by party b",
			fn:     withdrawalTransition,
			caller: partyB,
			expected: map[swap_escrow.EscrowState]transition{
				swap_escrow.EscrowStateCommitted:     {swap_escrow.EscrowStateWithdrawBob, "x"},
				swap_escrow.EscrowStateWithdrawAlice: {swap_escrow.EscrowStateUninitialized, "x"},
			},
		},
		{
			name:   "cancel by party a",
			fn:     cancelTransition,
			caller: partyA,
			expected: map[swap_escrow.EscrowState]transition{
				swap_escrow.EscrowStateDepositAlice: {swap_escrow.EscrowStateInitialized, "x"},
			},
		},
		{
			name:   "cancel by party b",
			fn:     cancelTransition,
			caller: partyB,
			expected: map[swap_escrow.EscrowState]transition{
				swap_escrow.EscrowStateDepositBob: {swap_escrow.EscrowStateInitialized, "y"},
			},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			for _, state := range allStates {
				record, keys := testRecord(t, state)

				to, l, err := tc.fn(record, keys[tc.caller])

				expected, ok := tc.expected[state]
				if !ok {
					assert.True(t, errors.Is(err, swap_escrow.ErrInvalidState), "state %s", state)
					assert.Nil(t, l)
					continue
				}

				require.NoError(t, err, "state %s", state)
				assert.Equal(t, expected.to, to)
				assert.Equal(t, expected.leg, l.name)

				// The record itself is never modified
				assert.Equal(t, state, record.State)
			}
		})
	}

	for _, fn := range []transitionFunc{depositTransition, withdrawalTransition, cancelTransition} {
		for _, state := range allStates {
			record, keys := testRecord(t, state)

			_, _, err := fn(record, keys[stranger])
			assert.Equal(t, swap_escrow.ErrNotAParty, err)
		}
	}
}

func TestLegs(t *testing.T) {
	record, keys := testRecord(t, swap_escrow.EscrowStateInitialized)

	x := legX(record)
	assert.Equal(t, keys[2], x.mint)
	assert.EqualValues(t, 100, x.amount)
	assert.EqualValues(t, 254, x.vaultBump)

	y := legY(record)
	assert.Equal(t, keys[3], y.mint)
	assert.EqualValues(t, 50, y.amount)
	assert.EqualValues(t, 255, y.vaultBump)

	args := record.AddressArgs(swap_escrow.Pass{})
	assert.Equal(t, swap_escrow.GetVaultXSeeds(args), x.vaultSeeds(args))
	assert.Equal(t, swap_escrow.GetVaultYSeeds(args), y.vaultSeeds(args))
}

func TestTransitions_SameParty(t *testing.T) {
	record, keys := testRecord(t, swap_escrow.EscrowStateInitialized)
	record.PartyB = keys[0]

	to, l, err := depositTransition(record, keys[0])
	require.NoError(t, err)
	assert.Equal(t, swap_escrow.EscrowStateDepositAlice, to)
	assert.Equal(t, "x", l.name)

	record.State = to
	to, l, err = depositTransition(record, keys[0])
	require.NoError(t, err)
	assert.Equal(t, swap_escrow.EscrowStateCommitted, to)
	assert.Equal(t, "y", l.name)
}
