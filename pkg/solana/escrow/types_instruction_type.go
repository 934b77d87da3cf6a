package swap_escrow

type EscrowInstruction uint8

const (
	EscrowInstructionInitEscrow EscrowInstruction = iota
	EscrowInstructionDeposit
	EscrowInstructionWithdrawal
	EscrowInstructionCancel
)

func putEscrowInstruction(dst []byte, v EscrowInstruction, offset *int) {
	putUint8(dst, uint8(v), offset)
}

// GetEscrowInstruction returns the instruction tag of the encoded data
func GetEscrowInstruction(data []byte) (EscrowInstruction, error) {
	if len(data) == 0 {
		return 0, ErrInvalidInstructionData
	}

	v := EscrowInstruction(data[0])
	if v > EscrowInstructionCancel {
		return 0, ErrInvalidInstructionData
	}
	return v, nil
}

func (i EscrowInstruction) String() string {
	switch i {
	case EscrowInstructionInitEscrow:
		return "init_escrow"
	case EscrowInstructionDeposit:
		return "deposit"
	case EscrowInstructionWithdrawal:
		return "withdrawal"
	case EscrowInstructionCancel:
		return "cancel"
	}
	return "unknown"
}
