package testutil

import (
	"context"
	"crypto/ed25519"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/code-payments/code-escrow/pkg/bank"
	"github.com/code-payments/code-escrow/pkg/solana/system"
	"github.com/code-payments/code-escrow/pkg/solana/token"
)

// FundedKeypair returns a new system account holding the provided lamports
func FundedKeypair(t *testing.T, b *bank.Bank, lamports uint64) ed25519.PrivateKey {
	key := GenerateSolanaKeypair(t)
	require.NoError(t, b.Airdrop(context.Background(), key.Public().(ed25519.PublicKey), lamports))
	return key
}

// CreateMint creates a rent exempt mint with zero decimals
func CreateMint(t *testing.T, b *bank.Bank, payer, authority ed25519.PrivateKey) ed25519.PublicKey {
	ctx := context.Background()
	mint := GenerateSolanaKeypair(t)
	mintAddress := mint.Public().(ed25519.PublicKey)

	txn := bank.NewTransaction(
		[]ed25519.PrivateKey{payer, mint},
		system.CreateAccount(
			payer.Public().(ed25519.PublicKey),
			mintAddress,
			token.ProgramKey,
			b.Rent(ctx).MinimumBalance(token.MintSize),
			token.MintSize,
		),
		token.InitializeMint(mintAddress, authority.Public().(ed25519.PublicKey), nil, 0),
	)
	_, err := b.Process(ctx, txn)
	require.NoError(t, err)

	return mintAddress
}

// CreateTokenAccount creates a rent exempt token account for the mint held by
// owner
func CreateTokenAccount(t *testing.T, b *bank.Bank, payer ed25519.PrivateKey, mint, owner ed25519.PublicKey) ed25519.PublicKey {
	ctx := context.Background()
	account := GenerateSolanaKeypair(t)
	address := account.Public().(ed25519.PublicKey)

	txn := bank.NewTransaction(
		[]ed25519.PrivateKey{payer, account},
		system.CreateAccount(
			payer.Public().(ed25519.PublicKey),
			address,
			token.ProgramKey,
			b.Rent(ctx).MinimumBalance(token.AccountSize),
			token.AccountSize,
		),
		token.InitializeAccount(address, mint, owner),
	)
	_, err := b.Process(ctx, txn)
	require.NoError(t, err)

	return address
}

// MintTo mints tokens into the destination token account
func MintTo(t *testing.T, b *bank.Bank, mint, destination ed25519.PublicKey, authority ed25519.PrivateKey, amount uint64) {
	txn := bank.NewTransaction(
		[]ed25519.PrivateKey{authority},
		token.MintTo(mint, destination, authority.Public().(ed25519.PublicKey), amount),
	)
	_, err := b.Process(context.Background(), txn)
	require.NoError(t, err)
}

// GetTokenBalance returns the balance of a token account
func GetTokenBalance(t *testing.T, b *bank.Bank, address ed25519.PublicKey) uint64 {
	info, err := b.GetAccount(context.Background(), address)
	require.NoError(t, err)

	var account token.Account
	require.True(t, account.Unmarshal(info.Data))
	return account.Amount
}
