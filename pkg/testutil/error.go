package testutil

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/code-escrow/pkg/solana"
)

// AssertInstructionError verifies that the provided error is a
// solana.InstructionError for the instruction at index with the provided key.
func AssertInstructionError(t *testing.T, err error, index int, key solana.InstructionErrorKey) {
	require.Error(t, err)

	var instructionErr solana.InstructionError
	require.True(t, errors.As(err, &instructionErr), err)
	assert.Equal(t, index, instructionErr.Index)
	assert.Equal(t, key, instructionErr.ErrorKey(), err)
}

// AssertCustomError verifies that the provided error is a
// solana.InstructionError for the first instruction carrying the custom
// program error.
func AssertCustomError(t *testing.T, err error, expected solana.CustomErrorCoder) {
	AssertInstructionError(t, err, 0, solana.InstructionErrorCustom)

	var instructionErr solana.InstructionError
	require.True(t, errors.As(err, &instructionErr))

	code := instructionErr.CustomError()
	require.NotNil(t, code)
	assert.Equal(t, expected.CustomErrorCode(), *code, err)
	assert.True(t, errors.Is(err, expected), err)
}
