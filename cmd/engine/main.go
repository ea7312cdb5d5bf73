package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apporder "github.com/donhauser001/order-engine/internal/application/order"
	"github.com/donhauser001/order-engine/internal/domain/shared"
	"github.com/donhauser001/order-engine/internal/infrastructure/config"
	"github.com/donhauser001/order-engine/internal/infrastructure/lock"
	"github.com/donhauser001/order-engine/internal/infrastructure/logger"
	"github.com/donhauser001/order-engine/internal/infrastructure/persistence"
)

// engine is the operational command line for the order pricing engine.
// Requests that carry service lines read them as JSON from stdin or a
// file, in the same shape the application DTOs use.
func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		_ = db.Close()
	}()

	locks, err := lock.FromConfig(cfg.Lock, cfg.Redis)
	if err != nil {
		log.Fatal("Failed to initialize lock backend", zap.Error(err))
	}

	orders := persistence.NewGormOrderRepository(db.DB)
	versions := persistence.NewGormOrderVersionRepository(db.DB)
	versionSvc := apporder.NewVersionService(orders, versions, nil, locks, log)
	orderSvc := apporder.NewOrderService(orders, versionSvc, log)

	ctx := context.Background()
	if err := run(ctx, orderSvc, versionSvc, os.Args[1:]); err != nil {
		log.Fatal("Command failed", zap.Error(err))
	}
}

func run(ctx context.Context, orders *apporder.OrderService, versions *apporder.VersionService, args []string) error {
	switch args[0] {
	case "order-create":
		var req apporder.CreateOrderRequest
		if err := readInput(args[1:], &req); err != nil {
			return err
		}
		view, err := orders.Create(ctx, req)
		if err != nil {
			return err
		}
		return printJSON(view)

	case "order-list":
		filter := shared.DefaultFilter()
		for i := 1; i+1 < len(args); i += 2 {
			switch args[i] {
			case "-status":
				filter.Filters["status"] = args[i+1]
			case "-search":
				filter.Search = args[i+1]
			case "-page":
				page, err := strconv.Atoi(args[i+1])
				if err != nil {
					return fmt.Errorf("invalid page %q", args[i+1])
				}
				filter.Page = page
			default:
				return fmt.Errorf("unknown flag %q", args[i])
			}
		}
		page, err := orders.List(ctx, filter)
		if err != nil {
			return err
		}
		return printJSON(page)

	case "order-show":
		id, err := orderID(args)
		if err != nil {
			return err
		}
		view, err := orders.GetCurrentView(ctx, id)
		if err != nil {
			return err
		}
		return printJSON(view)

	case "order-update":
		id, err := orderID(args)
		if err != nil {
			return err
		}
		var req apporder.UpdateOrderRequest
		if err := readInput(args[2:], &req); err != nil {
			return err
		}
		view, err := orders.Update(ctx, id, req, nil)
		if err != nil {
			return err
		}
		return printJSON(view)

	case "order-activate", "order-cancel", "order-delete":
		id, err := orderID(args)
		if err != nil {
			return err
		}
		switch args[0] {
		case "order-activate":
			return orders.Activate(ctx, id, uuid.Nil)
		case "order-cancel":
			return orders.Cancel(ctx, id, uuid.Nil)
		default:
			return orders.Delete(ctx, id)
		}

	case "version-create", "version-preview":
		id, err := orderID(args)
		if err != nil {
			return err
		}
		var req apporder.CreateVersionRequest
		if err := readInput(args[2:], &req); err != nil {
			return err
		}
		var resp *apporder.VersionResponse
		if args[0] == "version-create" {
			resp, err = versions.CreateVersion(ctx, id, req)
		} else {
			resp, err = versions.PreviewVersion(ctx, id, req)
		}
		if err != nil {
			return err
		}
		return printJSON(resp)

	case "version-list":
		id, err := orderID(args)
		if err != nil {
			return err
		}
		history, err := versions.GetVersions(ctx, id)
		if err != nil {
			return err
		}
		return printJSON(history)

	case "version-show":
		id, err := orderID(args)
		if err != nil {
			return err
		}
		if len(args) < 3 {
			return fmt.Errorf("version-show requires an order id and a version number")
		}
		number, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("invalid version number %q", args[2])
		}
		resp, err := versions.GetVersion(ctx, id, number)
		if err != nil {
			return err
		}
		return printJSON(resp)

	default:
		printUsage()
		return fmt.Errorf("unknown command: %s", args[0])
	}
}

func orderID(args []string) (uuid.UUID, error) {
	if len(args) < 2 {
		return uuid.Nil, fmt.Errorf("%s requires an order id", args[0])
	}
	id, err := uuid.Parse(args[1])
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid order id %q: %w", args[1], err)
	}
	return id, nil
}

// readInput decodes a JSON request from the file named by -input, or
// from stdin when the flag is absent or "-".
func readInput(args []string, v any) error {
	path := "-"
	for i := 0; i+1 < len(args); i += 2 {
		if args[i] == "-input" {
			path = args[i+1]
		}
	}

	var reader io.Reader = os.Stdin
	if path != "-" {
		file, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open input %s: %w", path, err)
		}
		defer file.Close()
		reader = file
	}

	decoder := json.NewDecoder(reader)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		return fmt.Errorf("failed to decode request: %w", err)
	}
	return nil
}

func printJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func printUsage() {
	fmt.Println(`Order pricing engine CLI

Usage:
  engine <command> [arguments]

Commands:
  order-create   [-input file]          Create an order (JSON request on stdin or file)
  order-list     [-status s] [-search q] [-page n]
  order-show     <order-id>
  order-update   <order-id> [-input file]
  order-activate <order-id>
  order-cancel   <order-id>
  order-delete   <order-id>

  version-create  <order-id> [-input file]  Price and persist a new revision
  version-preview <order-id> [-input file]  Price a revision without persisting
  version-list    <order-id>
  version-show    <order-id> <number>

Configuration is read from config.toml and ORDER_ENGINE_* environment
variables.`)
}
