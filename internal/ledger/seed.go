package ledger

import (
	"bufio"
	"context"
	"io"
	"strconv"
	"strings"
)

// LoadWallets reads the bulk initial state, one "walletId balance" pair per
// line, and installs each wallet in the ledger. Malformed lines are skipped.
// Returns the number of wallets loaded.
func LoadWallets(ctx context.Context, l Ledger, r io.Reader) (int, error) {
	scanner := bufio.NewScanner(r)
	loaded := 0
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) != 2 {
			continue
		}
		balance, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			continue
		}
		if err := l.LoadWallet(ctx, fields[0], balance); err != nil {
			return loaded, err
		}
		loaded++
	}
	return loaded, scanner.Err()
}
