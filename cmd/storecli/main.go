// Command storecli is the interactive store client. On startup it fetches
// and prints the catalog price, then reads commands from stdin:
//
//	C    purchase: reserve the price at the bank, then settle the sale at
//	     the store; prints the reservation status and, if reserved, the
//	     sale status
//	T    end execution: prints "sellerBalance bankStatus" and exits
//
// Malformed and unknown commands are ignored without contacting a service.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/lukasa-pay/lukasa/internal/bank"
	"github.com/lukasa-pay/lukasa/internal/logging"
	"github.com/lukasa-pay/lukasa/internal/store"
	"github.com/lukasa-pay/lukasa/internal/wire"
)

func main() {
	debug := flag.Bool("debug", false, "log transport errors to stderr")
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) != 3 {
		usage()
		os.Exit(1)
	}
	walletID, bankURL, storeURL := args[0], args[1], args[2]

	logger := logging.CLI(*debug)
	bankClient := bank.NewClient(bankURL)
	storeClient := store.NewClient(storeURL)
	ctx := context.Background()

	price, err := storeClient.Price(ctx)
	priceKnown := err == nil
	if priceKnown {
		fmt.Println(price)
	} else {
		logger.Debug("get price failed", "error", err)
	}

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "C":
			if !priceKnown {
				logger.Debug("product price is not set")
				continue
			}
			orderID, err := bankClient.CreateOrder(ctx, walletID, price)
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
			if status <= 0 {
				continue
			}

			result, err := storeClient.Sale(ctx, orderID, uuid.NewString())
			if err != nil {
				logger.Debug("sale failed", "error", err)
				continue
			}
			fmt.Println(result.Status)

		case "T":
			result, err := storeClient.EndExecution(ctx)
			if err != nil {
				logger.Debug("end execution failed", "error", err)
				fmt.Println(wire.NotFound, wire.NotFound)
			} else {
				fmt.Println(result.SellerBalance, result.BankServerStatus)
			}
			return

		default:
			logger.Debug("ignored unknown command", "line", scanner.Text())
		}
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [-debug] <wallet_id> <bank_url> <store_url>\n", os.Args[0])
}
