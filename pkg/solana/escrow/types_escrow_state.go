package swap_escrow

type EscrowState uint8

const (
	EscrowStateUninitialized EscrowState = iota
	EscrowStateInitialized
	EscrowStateDepositAlice
	EscrowStateDepositBob
	EscrowStateCommitted
	EscrowStateWithdrawAlice
	EscrowStateWithdrawBob
)

func putEscrowState(dst []byte, v EscrowState, offset *int) {
	putUint8(dst, uint8(v), offset)
}
func getEscrowState(src []byte, dst *EscrowState, offset *int) {
	*dst = EscrowState(src[*offset])
	*offset += 1
}

// IsValid returns whether the state is one of the known escrow states
func (s EscrowState) IsValid() bool {
	return s <= EscrowStateWithdrawBob
}

func (s EscrowState) String() string {
	switch s {
	case EscrowStateUninitialized:
		return "uninitialized"
	case EscrowStateInitialized:
		return "initialized"
	case EscrowStateDepositAlice:
		return "deposit_alice"
	case EscrowStateDepositBob:
		return "deposit_bob"
	case EscrowStateCommitted:
		return "committed"
	case EscrowStateWithdrawAlice:
		return "withdraw_alice"
	case EscrowStateWithdrawBob:
		return "withdraw_bob"
	}
	return "unknown"
}
