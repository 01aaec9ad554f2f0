// Package wire defines the integer status codes of the settlement protocol.
//
// Negative codes share the sign space with order ids, balances and pending
// counts on the same response fields, so they are confined to the HTTP
// boundary: handlers encode them on the way out, clients decode them back
// into errors on the way in. Nothing between those two points reasons about
// signs.
package wire

const (
	// OK reports a successful transfer or sale.
	OK int64 = 0
	// NotFound reports an unknown wallet or payment order.
	NotFound int64 = -1
	// InvalidBalance reports insufficient funds on reservation, or a
	// confirmation amount that does not match the reserved amount.
	InvalidBalance int64 = -2
	// InvalidWallet reports an unknown destination wallet on transfer.
	InvalidWallet int64 = -3
	// Unreachable reports that the bank could not be reached at all.
	Unreachable int64 = -9
)
