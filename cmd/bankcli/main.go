// Command bankcli is the interactive bank client. It reads single-letter
// commands from stdin and prints protocol results on stdout:
//
//	S                           print wallet balance
//	O <amount>                  create a payment order, print order id/status
//	X <order> <amount> <wallet> confirm a transfer, print status
//	F                           end execution, print pending orders
//
// Malformed and unknown commands are ignored without contacting the bank.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/lukasa-pay/lukasa/internal/bank"
	"github.com/lukasa-pay/lukasa/internal/logging"
	"github.com/lukasa-pay/lukasa/internal/wire"
)

func main() {
	debug := flag.Bool("debug", false, "log transport errors to stderr")
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) != 2 {
		usage()
		os.Exit(1)
	}
	walletID, bankURL := args[0], args[1]

	logger := logging.CLI(*debug)
	client := bank.NewClient(bankURL)
	ctx := context.Background()

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "S":
			balance, err := client.Balance(ctx, walletID)
			switch {
			case err == nil:
				fmt.Println(balance)
			case errors.Is(err, bank.ErrUnreachable):
				logger.Debug("get balance failed", "error", err)
			default:
				fmt.Println(wire.NotFound)
			}

		case "O":
			if len(fields) != 2 {
				logger.Debug("invalid 'O' command format")
				continue
			}
			amount, err := strconv.ParseInt(fields[1], 10, 64)
			if err != nil {
				logger.Debug("invalid 'O' amount", "error", err)
				continue
			}
			orderID, err := client.CreateOrder(ctx, walletID, amount)
			if errors.Is(err, bank.ErrUnreachable) {
				logger.Debug("create payment order failed", "error", err)
				continue
			}
			status, ok := bank.ReserveStatus(orderID, err)
			if !ok {
				logger.Debug("create payment order failed", "error", err)
				continue
			}
			fmt.Println(status)

		case "X":
			if len(fields) != 4 {
				logger.Debug("invalid 'X' command format")
				continue
			}
			orderID, err := strconv.ParseInt(fields[1], 10, 64)
			if err != nil {
				logger.Debug("invalid 'X' order id", "error", err)
				continue
			}
			amount, err := strconv.ParseInt(fields[2], 10, 64)
			if err != nil {
				logger.Debug("invalid 'X' amount", "error", err)
				continue
			}
			err = client.Transfer(ctx, orderID, amount, fields[3])
			if errors.Is(err, bank.ErrUnreachable) {
				logger.Debug("transfer failed", "error", err)
				continue
			}
			status, ok := bank.TransferStatus(err)
			if !ok {
				logger.Debug("transfer failed", "error", err)
				continue
			}
			fmt.Println(status)

		case "F":
			pending, err := client.EndExecution(ctx)
			if err != nil {
				logger.Debug("end execution failed", "error", err)
				fmt.Println(wire.NotFound)
			} else {
				fmt.Println(pending)
			}
			return

		default:
			logger.Debug("ignored unknown command", "line", scanner.Text())
		}
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [-debug] <wallet_id> <bank_url>\n", os.Args[0])
}
