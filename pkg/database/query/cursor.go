package query

import (
	"github.com/mr-tron/base58"
)

// Cursor points at the last record of a previous page. Ledger listings use
// the account address.
type Cursor []byte

var (
	EmptyCursor Cursor = Cursor([]byte{})
)

func ToCursor(address string) Cursor {
	return Cursor(address)
}

func (c Cursor) String() string {
	return string(c)
}

func (c Cursor) ToBase58() string {
	return base58.Encode(c)
}
