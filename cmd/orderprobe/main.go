// orderprobe exercises the backend REST surface from the command line:
// list orders, inspect a table's bill, pull stats, or walk one order
// through its lifecycle. Useful against a staging backend.
//
// Usage:
//
//	go run ./cmd/orderprobe --base-url http://localhost:8080 --token $TOKEN list
//	go run ./cmd/orderprobe --base-url http://localhost:8080 bill 5
//	go run ./cmd/orderprobe --base-url http://localhost:8080 --token $TOKEN stats daily
//	go run ./cmd/orderprobe --base-url http://localhost:8080 cancel 41
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/ekaya/cafelive/internal/api"
	"github.com/ekaya/cafelive/internal/model"
)

func main() {
	baseURL := flag.String("base-url", "http://localhost:8080", "backend base URL")
	token := flag.String("token", os.Getenv("CAFE_TOKEN"), "credential for privileged endpoints")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))

	client := api.NewClient(*baseURL, *token,
		api.WithLogger(logger),
		api.WithTimeout(30*time.Second),
		api.WithRetries(3, time.Second),
	)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	args := flag.Args()
	if len(args) == 0 {
		usage()
	}

	var err error
	switch args[0] {
	case "list":
		err = list(ctx, client, args[1:])
	case "bill":
		err = bill(ctx, client, args[1:])
	case "stats":
		err = stats(ctx, client, args[1:])
	case "tables":
		err = tables(ctx, client)
	case "products":
		err = products(ctx, client)
	case "cancel":
		err = cancelCmd(ctx, client, args[1:])
	case "advance":
		err = advance(ctx, client, args[1:])
	case "pay":
		err = pay(ctx, client, args[1:])
	default:
		usage()
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: orderprobe [flags] <command>

commands:
  list [status]       list current orders, optionally filtered
  bill <table>        table bill (unpaid orders and total)
  stats <period>      daily | monthly | yearly aggregates
  tables              active table count
  products            product catalog
  cancel <id>         request cancellation of an order
  advance <id> <to>   move an order to the given status
  pay <id>            mark an order paid`)
	os.Exit(2)
}

func list(ctx context.Context, client *api.Client, args []string) error {
	var status model.OrderStatus
	if len(args) > 0 {
		status = model.OrderStatus(args[0])
		if !status.Valid() {
			return fmt.Errorf("unknown status %q", args[0])
		}
	}

	orders, err := client.ListOrders(ctx, status)
	if err != nil {
		return err
	}

	for _, o := range orders {
		fmt.Printf("#%-5d table=%-4s %-10s %8.2f TL  %s\n",
			o.ID, o.TableID, o.Status, float64(o.Total())/100,
			o.CreatedAt.Format("15:04:05"))
	}
	fmt.Printf("%d orders\n", len(orders))
	return nil
}

func bill(ctx context.Context, client *api.Client, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("bill requires a table id")
	}

	resp, err := client.GetTableBill(ctx, args[0])
	if err != nil {
		return err
	}

	for _, o := range resp.Orders {
		order := o.ToModel()
		fmt.Printf("#%-5d %-10s %8.2f TL\n", order.ID, order.Status, float64(order.Total())/100)
	}
	fmt.Printf("table %s total: %.2f TL\n", resp.TableID, float64(resp.Total)/100)
	return nil
}

func stats(ctx context.Context, client *api.Client, args []string) error {
	period := api.PeriodDaily
	if len(args) > 0 {
		period = args[0]
	}

	resp, err := client.GetStats(ctx, period)
	if err != nil {
		return err
	}
	return json.NewEncoder(os.Stdout).Encode(resp)
}

func tables(ctx context.Context, client *api.Client) error {
	count, err := client.GetActiveTableCount(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("%d active tables\n", count)
	return nil
}

func products(ctx context.Context, client *api.Client) error {
	items, err := client.ListProducts(ctx)
	if err != nil {
		return err
	}
	for _, p := range items {
		fmt.Printf("#%-5d %-30s %8.2f TL\n", p.ID, p.Name, float64(p.Price)/100)
	}
	return nil
}

func cancelCmd(ctx context.Context, client *api.Client, args []string) error {
	id, err := orderID(args)
	if err != nil {
		return err
	}

	resp, err := client.CancelOrder(ctx, id)
	if err != nil {
		return err
	}
	if !resp.Cancelled {
		fmt.Printf("not cancelled: %s (order is %s)\n", resp.Reason, resp.Order.Status)
		return nil
	}
	fmt.Printf("order %d cancelled\n", id)
	return nil
}

func advance(ctx context.Context, client *api.Client, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("advance requires an order id and a target status")
	}
	id, err := orderID(args)
	if err != nil {
		return err
	}
	status := model.OrderStatus(args[1])
	if !status.Valid() {
		return fmt.Errorf("unknown status %q", args[1])
	}

	order, err := client.AdvanceStatus(ctx, id, status)
	if err != nil {
		return err
	}
	fmt.Printf("order %d is now %s\n", order.ID, order.Status)
	return nil
}

func pay(ctx context.Context, client *api.Client, args []string) error {
	id, err := orderID(args)
	if err != nil {
		return err
	}

	order, err := client.MarkPaid(ctx, id)
	if err != nil {
		return err
	}
	fmt.Printf("order %d is now %s\n", order.ID, order.Status)
	return nil
}

func orderID(args []string) (int64, error) {
	if len(args) < 1 {
		return 0, fmt.Errorf("an order id is required")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("bad order id %q", args[0])
	}
	return id, nil
}
