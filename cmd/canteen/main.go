// Command canteen is a headless client for the canteen ordering
// backend: browse the menu, manage a locally persisted cart, place
// orders and watch their payment countdowns from a terminal.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/harshit25jain/canteen-client/internal/api"
	"github.com/harshit25jain/canteen-client/internal/cart"
	"github.com/harshit25jain/canteen-client/internal/checkout"
	"github.com/harshit25jain/canteen-client/internal/menu"
	"github.com/harshit25jain/canteen-client/internal/notify"
	"github.com/harshit25jain/canteen-client/internal/snapshot"
	"github.com/harshit25jain/canteen-client/internal/track"
)

type Config struct {
	APIBaseURL     string
	RequestTimeout time.Duration
	MenuCacheTTL   time.Duration
	SnapshotPath   string
	RedisAddr      string
	MongoURI       string
	MongoDBName    string
}

func loadConfig() *Config {
	return &Config{
		APIBaseURL:     getEnv("CANTEEN_API_URL", "http://localhost:8080"),
		RequestTimeout: 10 * time.Second,
		MenuCacheTTL:   time.Minute,
		SnapshotPath:   getEnv("CART_SNAPSHOT_PATH", "cart.json"),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		MongoURI:       os.Getenv("MONGO_URI"),
		MongoDBName:    getEnv("MONGO_DB_NAME", "canteen"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

const usage = `usage: canteen <command> [args]

commands:
  menu                     list available menu items
  search <name>            search menu items by name
  cart show                show cart contents and totals
  cart add <id> <qty>      add a menu item to the cart
  cart qty <id> <qty>      set a line's quantity (0 removes it)
  cart rm <id>             remove a line
  cart clear               empty the cart
  checkout                 place one order per cart unit
  orders                   list pending orders with countdowns
  pay <id>                 pay a pending order
  cancel <id>              cancel a pending order
  history                  list all past orders
  watch                    live countdown view, ctrl-c to stop
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	cfg := loadConfig()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	snapshots, cleanup, err := buildSnapshotStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("snapshot store init failed", zap.Error(err))
	}
	defer cleanup()

	client := api.NewClient(cfg.APIBaseURL, cfg.RequestTimeout, logger)
	menuSvc := api.NewMenuService(client)
	orderSvc := api.NewOrderService(client)

	notifier := notify.NewLogNotifier(logger)
	cartStore := cart.New(snapshots, logger)
	if err := cartStore.Load(ctx); err != nil {
		logger.Warn("cart snapshot load failed, starting empty", zap.Error(err))
	}

	catalog := menu.NewCatalog(menuSvc, cfg.MenuCacheTTL, logger)
	co := checkout.New(cartStore, orderSvc, notifier, logger)
	tracker := track.New(orderSvc, notifier, logger)

	app := &app{
		cart:     cartStore,
		catalog:  catalog,
		menu:     menuSvc,
		orders:   orderSvc,
		checkout: co,
		tracker:  tracker,
		log:      logger,
	}

	if err := app.run(ctx, os.Args[1:]); err != nil {
		logger.Error("command failed", zap.Error(err))
		os.Exit(1)
	}
}

// buildSnapshotStore picks the persistence backend from the
// environment: redis or mongo when configured, a local file otherwise.
func buildSnapshotStore(ctx context.Context, cfg *Config, logger *zap.Logger) (snapshot.Store, func(), error) {
	switch {
	case cfg.RedisAddr != "":
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, nil, fmt.Errorf("redis connection failed: %w", err)
		}
		logger.Info("cart snapshots in redis", zap.String("addr", cfg.RedisAddr))
		return snapshot.NewRedisStore(client), func() { client.Close() }, nil

	case cfg.MongoURI != "":
		db, err := snapshot.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDBName)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("cart snapshots in mongo", zap.String("db", cfg.MongoDBName))
		cleanup := func() { db.Client().Disconnect(context.Background()) }
		return snapshot.NewMongoStore(db), cleanup, nil

	default:
		logger.Info("cart snapshots in file", zap.String("path", cfg.SnapshotPath))
		return snapshot.NewFileStore(cfg.SnapshotPath), func() {}, nil
	}
}

type app struct {
	cart     *cart.Store
	catalog  *menu.Catalog
	menu     *api.MenuService
	orders   *api.OrderService
	checkout *checkout.Checkout
	tracker  *track.Tracker
	log      *zap.Logger
}

func (a *app) run(ctx context.Context, args []string) error {
	switch args[0] {
	case "menu":
		return a.showMenu(ctx)
	case "search":
		if len(args) < 2 {
			return fmt.Errorf("search needs a name argument")
		}
		return a.search(ctx, args[1])
	case "cart":
		if len(args) < 2 {
			return fmt.Errorf("cart needs a subcommand")
		}
		return a.runCart(ctx, args[1:])
	case "checkout":
		_, err := a.checkout.Run(ctx)
		return err
	case "orders":
		return a.showOrders(ctx)
	case "pay":
		if len(args) < 2 {
			return fmt.Errorf("pay needs an order id")
		}
		return a.settle(ctx, args[1], a.tracker.Pay)
	case "cancel":
		if len(args) < 2 {
			return fmt.Errorf("cancel needs an order id")
		}
		return a.settle(ctx, args[1], a.tracker.Cancel)
	case "history":
		return a.showHistory(ctx)
	case "watch":
		return a.watch(ctx)
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func (a *app) showMenu(ctx context.Context) error {
	items, err := a.catalog.Available(ctx)
	if err != nil {
		return err
	}
	for _, item := range items {
		fmt.Printf("%4d  %-24s $%.2f  (%d in stock)\n", item.ID, item.Name, item.Price, item.StockCount)
	}
	return nil
}

func (a *app) search(ctx context.Context, name string) error {
	items, err := a.catalog.Search(ctx, name)
	if err != nil {
		return err
	}
	for _, item := range items {
		fmt.Printf("%4d  %-24s $%.2f  (%d in stock)\n", item.ID, item.Name, item.Price, item.StockCount)
	}
	return nil
}

func (a *app) runCart(ctx context.Context, args []string) error {
	switch args[0] {
	case "show":
		for _, item := range a.cart.Items() {
			fmt.Printf("%4d  %-24s $%.2f x %d\n", item.MenuItemID, item.Name, item.UnitPrice, item.Quantity)
		}
		fmt.Printf("total: $%.2f (%d items)\n", a.cart.TotalPrice(), a.cart.TotalItems())
		return nil

	case "add":
		if len(args) < 3 {
			return fmt.Errorf("cart add needs <id> <qty>")
		}
		id, qty, err := parseIDQty(args[1], args[2])
		if err != nil {
			return err
		}
		item, err := a.menu.Get(ctx, id)
		if err != nil {
			return err
		}
		return a.catalog.AddToCart(ctx, a.cart, item, qty)

	case "qty":
		if len(args) < 3 {
			return fmt.Errorf("cart qty needs <id> <qty>")
		}
		id, qty, err := parseIDQty(args[1], args[2])
		if err != nil {
			return err
		}
		a.cart.UpdateQuantity(ctx, id, qty)
		return nil

	case "rm":
		if len(args) < 2 {
			return fmt.Errorf("cart rm needs <id>")
		}
		id, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid id %q", args[1])
		}
		a.cart.RemoveItem(ctx, id)
		return nil

	case "clear":
		a.cart.Clear(ctx)
		return nil

	default:
		return fmt.Errorf("unknown cart subcommand %q", args[0])
	}
}

func (a *app) showOrders(ctx context.Context) error {
	if err := a.tracker.Refresh(ctx); err != nil {
		return err
	}
	printViews(a.tracker.Views())
	return nil
}

// settle refreshes the pending list so the expiry gate sees current
// state, then runs the pay or cancel command.
func (a *app) settle(ctx context.Context, idArg string, cmd func(context.Context, int64) error) error {
	id, err := strconv.ParseInt(idArg, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid order id %q", idArg)
	}
	if err := a.tracker.Refresh(ctx); err != nil {
		return err
	}
	if err := cmd(ctx, id); err != nil {
		return err
	}
	printViews(a.tracker.Views())
	return nil
}

func (a *app) showHistory(ctx context.Context) error {
	orders, err := a.orders.History(ctx)
	if err != nil {
		return err
	}
	for _, order := range orders {
		fmt.Printf("#%-5d %-24s %-10s $%.2f  %s\n",
			order.ID, order.MenuItem.Name, order.Status, order.TotalPrice,
			order.CreatedAt.Local().Format("Jan 2 15:04"))
	}
	return nil
}

func (a *app) watch(ctx context.Context) error {
	if err := a.tracker.Refresh(ctx); err != nil {
		return err
	}
	a.tracker.Watch(ctx, printViews)
	return nil
}

func printViews(views []track.OrderView) {
	if len(views) == 0 {
		fmt.Println("no pending orders")
		return
	}
	for _, v := range views {
		state := v.Countdown.Clock()
		if v.Countdown.Expired {
			state = "expired"
		}
		fmt.Printf("#%-5d %-24s %s  %3d%% elapsed\n",
			v.Order.ID, v.Order.MenuItem.Name, state, v.Countdown.PercentElapsed)
	}
}

func parseIDQty(idArg, qtyArg string) (int64, int, error) {
	id, err := strconv.ParseInt(idArg, 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid id %q", idArg)
	}
	qty, err := strconv.Atoi(qtyArg)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid quantity %q", qtyArg)
	}
	return id, qty, nil
}
