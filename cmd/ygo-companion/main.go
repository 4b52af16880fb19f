package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/ramonehamilton/YGO-Companion/internal/api"
	"github.com/ramonehamilton/YGO-Companion/internal/charts"
	"github.com/ramonehamilton/YGO-Companion/internal/collection"
	"github.com/ramonehamilton/YGO-Companion/internal/config"
	"github.com/ramonehamilton/YGO-Companion/internal/deck"
	"github.com/ramonehamilton/YGO-Companion/internal/session"
	ygostats "github.com/ramonehamilton/YGO-Companion/internal/stats"
	"github.com/ramonehamilton/YGO-Companion/internal/storage"
)

var (
	// Application mode flags
	debugMode      = flag.Bool("debug-mode", false, "Enable verbose debug logging")
	debugModeShort = flag.Bool("d", false, "Enable debug logging (shorthand for -debug-mode)")

	// Server connection flags (override config file values)
	serverURL      = flag.String("server", "", "Backend server URL (overrides config)")
	requestTimeout = flag.Duration("request-timeout", 0, "HTTP request timeout (overrides config)")

	// Output flags
	chartPath = flag.String("chart", "", "Write a stats chart HTML file to this path")
	exportDir = flag.String("export-dir", "", "Directory for exported deck lists (overrides config)")
)

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: ygo-companion [flags] <command> [args]

Commands:
  login <username>               Log in and persist the session
  register <username> <email>    Create an account and log in
  logout                         End the session
  whoami                         Show the logged-in user

  collection list                Show the collection (falls back to the offline snapshot)
  collection add <card> <qty>    Add a card that is not yet in the collection
  collection set <card> <qty>    Set the owned quantity of a card
  collection delete <card>       Remove a card from the collection
  search <term>                  Search the card catalogue
  cards [limit [offset]]         Browse the card catalogue page by page
  card <id-or-name>              Show one card's details

  deck list                      List decks
  deck create <name> [desc]      Create a deck
  deck delete <id>               Delete a deck
  deck show <id>                 Show a deck partitioned into zones
  deck add <id> <card> [count]   Add copies of a card to a deck
  deck remove <id> <card> [count] Remove copies of a card from a deck

  import <deck-id> <file.ydk>    Upload a deck list file
  export <deck-id>               Download a deck list file
  watch <deck-id> <dir>          Watch a directory and import dropped .ydk files

  stats collection               Show collection statistics
  stats deck <id>                Show deck statistics

Flags:
`)
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.Parse()

	if *debugModeShort {
		*debugMode = true
	}

	level := slog.LevelInfo
	if *debugMode {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}
	if *serverURL != "" {
		cfg.Server.BaseURL = *serverURL
	}
	if *requestTimeout > 0 {
		cfg.Server.RequestTimeout = requestTimeout.String()
	}
	if *exportDir != "" {
		cfg.Decks.ExportDir = *exportDir
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	client, err := newClient(cfg)
	if err != nil {
		log.Fatalf("Error creating client: %v", err)
	}
	restoreSession(client)

	if flag.NArg() == 0 {
		usage()
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	args := flag.Args()
	switch args[0] {
	case "login":
		err = runLogin(ctx, client, args[1:])
	case "register":
		err = runRegister(ctx, client, args[1:])
	case "logout":
		err = runLogout(client)
	case "whoami":
		err = runWhoami(ctx, client)
	case "collection":
		err = runCollection(ctx, client, cfg, args[1:])
	case "search":
		err = runSearch(ctx, client, args[1:])
	case "cards":
		err = runCards(ctx, client, args[1:])
	case "card":
		err = runCard(ctx, client, args[1:])
	case "deck":
		err = runDeck(ctx, client, cfg, args[1:])
	case "import":
		err = runImport(ctx, client, args[1:])
	case "export":
		err = runExport(ctx, client, cfg, args[1:])
	case "watch":
		err = runWatch(ctx, client, args[1:])
	case "stats":
		err = runStats(ctx, client, args[1:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", args[0])
		usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func newClient(cfg *config.Config) (*api.Client, error) {
	clientConfig := api.DefaultClientConfig(cfg.Server.BaseURL)
	clientConfig.RequestsPerSecond = cfg.Server.RequestsPerSecond
	if timeout, err := cfg.GetRequestTimeout(); err == nil {
		clientConfig.Timeout = timeout
	}
	return api.NewClient(clientConfig)
}

// sessionPath returns where the encrypted session cookies live.
func sessionPath() (string, error) {
	dir, err := config.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "session.bin"), nil
}

// sessionPassphrase returns the passphrase protecting stored cookies. An empty
// value disables session persistence.
func sessionPassphrase() string {
	return os.Getenv("YGO_COMPANION_PASSPHRASE")
}

// restoreSession loads persisted cookies into the client. Failures are not
// fatal; the user just has to log in again.
func restoreSession(client *api.Client) {
	passphrase := sessionPassphrase()
	if passphrase == "" {
		return
	}
	path, err := sessionPath()
	if err != nil {
		return
	}
	cookies, err := session.LoadCookies(path, passphrase)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			slog.Debug("could not restore session", "error", err)
		}
		return
	}
	if err := client.SetSessionCookies(cookies); err != nil {
		slog.Debug("could not restore session", "error", err)
	}
}

// persistSession writes the client's cookies to disk if a passphrase is set.
func persistSession(client *api.Client) {
	passphrase := sessionPassphrase()
	if passphrase == "" {
		fmt.Println("Note: set YGO_COMPANION_PASSPHRASE to persist the session across runs.")
		return
	}
	path, err := sessionPath()
	if err != nil {
		slog.Warn("could not persist session", "error", err)
		return
	}
	if err := session.SaveCookies(path, passphrase, client.SessionCookies()); err != nil {
		slog.Warn("could not persist session", "error", err)
	}
}

func dropSession() {
	path, err := sessionPath()
	if err != nil {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		slog.Warn("could not remove stored session", "error", err)
	}
}

// promptPassword reads a password from stdin.
func promptPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func runLogin(ctx context.Context, client *api.Client, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: login <username>")
	}
	password, err := promptPassword("Password: ")
	if err != nil {
		return err
	}

	store := session.NewStore(client, nil)
	user, err := client.Login(ctx, args[0], password)
	if err != nil {
		return err
	}
	store.SetCurrentUser(user)
	persistSession(client)
	fmt.Printf("Logged in as %s\n", user.Username)
	return nil
}

func runRegister(ctx context.Context, client *api.Client, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: register <username> <email>")
	}
	password, err := promptPassword("Password: ")
	if err != nil {
		return err
	}

	user, err := client.Register(ctx, args[0], args[1], password)
	if err != nil {
		return err
	}
	persistSession(client)
	fmt.Printf("Registered and logged in as %s\n", user.Username)
	return nil
}

func runLogout(client *api.Client) error {
	store := session.NewStore(client, nil)
	if err := store.Logout(); err != nil {
		return err
	}
	dropSession()
	fmt.Println("Logged out.")
	return nil
}

func runWhoami(ctx context.Context, client *api.Client) error {
	store := session.NewStore(client, nil)
	if err := store.Refresh(ctx); err != nil {
		if api.IsKind(err, api.KindUnauthorized) {
			return fmt.Errorf("not logged in")
		}
		return err
	}
	user := store.CurrentUser()
	fmt.Printf("%s (%s)\n", user.Username, user.Email)
	return nil
}

func runCollection(ctx context.Context, client *api.Client, cfg *config.Config, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: collection <list|add|set|delete> ...")
	}

	rec := collection.NewReconciler(client, nil)
	switch args[0] {
	case "list":
		return listCollection(ctx, rec, cfg)
	case "add":
		if len(args) != 3 {
			return fmt.Errorf("usage: collection add <card-id> <quantity>")
		}
		cardID, quantity, err := parseCardQuantity(args[1], args[2])
		if err != nil {
			return err
		}
		if err := rec.Add(ctx, cardID, quantity); err != nil {
			return err
		}
		fmt.Printf("Added %d x card %d.\n", quantity, cardID)
		return snapshotCollection(ctx, rec, cfg)
	case "set":
		if len(args) != 3 {
			return fmt.Errorf("usage: collection set <card-id> <quantity>")
		}
		cardID, target, err := parseCardQuantity(args[1], args[2])
		if err != nil {
			return err
		}
		if err := rec.Load(ctx); err != nil {
			return err
		}
		if err := rec.OpenManageFor(cardID); err != nil {
			return err
		}
		if err := rec.ConfirmQuantityUpdate(ctx, target); err != nil {
			return err
		}
		fmt.Printf("Card %d set to quantity %d.\n", cardID, target)
		return snapshotCollection(ctx, rec, cfg)
	case "delete":
		if len(args) != 2 {
			return fmt.Errorf("usage: collection delete <card-id>")
		}
		cardID, err := parseID(args[1])
		if err != nil {
			return err
		}
		if err := rec.Load(ctx); err != nil {
			return err
		}
		if err := rec.OpenManageFor(cardID); err != nil {
			return err
		}
		if err := rec.ConfirmDelete(ctx); err != nil {
			return err
		}
		fmt.Printf("Card %d removed from collection.\n", cardID)
		return snapshotCollection(ctx, rec, cfg)
	default:
		return fmt.Errorf("unknown collection command: %s", args[0])
	}
}

// listCollection shows the live collection, snapshotting it for offline use.
// When the backend is unreachable it falls back to the last snapshot,
// explicitly labelled stale.
func listCollection(ctx context.Context, rec *collection.Reconciler, cfg *config.Config) error {
	if err := rec.Load(ctx); err != nil {
		if api.IsKind(err, api.KindNetwork) || api.IsKind(err, api.KindServer) {
			return displaySnapshotFallback(ctx, cfg, err)
		}
		return err
	}
	displayCollection(rec.Items())
	return snapshotCollection(ctx, rec, cfg)
}

func displaySnapshotFallback(ctx context.Context, cfg *config.Config, cause error) error {
	if !cfg.Cache.Enabled {
		return cause
	}
	db, err := openSnapshotDB(cfg)
	if err != nil {
		return cause
	}
	defer func() {
		_ = db.Close()
	}()

	snapshot, err := db.LoadCollectionSnapshot(ctx)
	if errors.Is(err, storage.ErrNoSnapshot) {
		return cause
	}
	if err != nil {
		return cause
	}
	displaySnapshot(snapshot)
	return nil
}

func snapshotCollection(ctx context.Context, rec *collection.Reconciler, cfg *config.Config) error {
	if !cfg.Cache.Enabled {
		return nil
	}
	db, err := openSnapshotDB(cfg)
	if err != nil {
		slog.Warn("could not open snapshot cache", "error", err)
		return nil
	}
	defer func() {
		_ = db.Close()
	}()

	if err := db.SaveCollectionSnapshot(ctx, rec.Items()); err != nil {
		slog.Warn("could not snapshot collection", "error", err)
	}
	return nil
}

func openSnapshotDB(cfg *config.Config) (*storage.DB, error) {
	path, err := cfg.CachePath()
	if err != nil {
		return nil, err
	}
	return storage.Open(storage.DefaultConfig(path))
}

func runSearch(ctx context.Context, client *api.Client, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: search <term>")
	}
	result, err := client.SearchCards(ctx, api.SearchFilter{Name: args[0]})
	if err != nil {
		return err
	}
	displaySearchResults(args[0], result)
	return nil
}

func runCards(ctx context.Context, client *api.Client, args []string) error {
	if len(args) > 2 {
		return fmt.Errorf("usage: cards [limit [offset]]")
	}
	limit, offset := 0, 0
	var err error
	if len(args) > 0 {
		limit, err = strconv.Atoi(args[0])
		if err != nil || limit <= 0 {
			return fmt.Errorf("invalid limit %q", args[0])
		}
	}
	if len(args) > 1 {
		offset, err = strconv.Atoi(args[1])
		if err != nil || offset < 0 {
			return fmt.Errorf("invalid offset %q", args[1])
		}
	}

	result, err := client.GetCards(ctx, limit, offset)
	if err != nil {
		return err
	}
	displayCatalogPage(result, offset)
	return nil
}

func runCard(ctx context.Context, client *api.Client, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: card <id-or-name>")
	}
	card, err := client.GetCard(ctx, args[0])
	if err != nil {
		if api.IsKind(err, api.KindNotFound) {
			return fmt.Errorf("no card matches %q", args[0])
		}
		return err
	}
	displayCard(card)
	return nil
}

func runDeck(ctx context.Context, client *api.Client, cfg *config.Config, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: deck <list|create|delete|show|add|remove> ...")
	}

	switch args[0] {
	case "list":
		decks, err := client.GetDecks(ctx)
		if err != nil {
			return err
		}
		displayDecks(decks)
		return nil
	case "create":
		if len(args) < 2 {
			return fmt.Errorf("usage: deck create <name> [description]")
		}
		description := ""
		if len(args) > 2 {
			description = strings.Join(args[2:], " ")
		}
		created, err := client.CreateDeck(ctx, args[1], description)
		if err != nil {
			return err
		}
		fmt.Printf("Created deck %q (id %d).\n", created.Name, created.ID)
		return nil
	case "delete":
		if len(args) != 2 {
			return fmt.Errorf("usage: deck delete <id>")
		}
		deckID, err := parseID(args[1])
		if err != nil {
			return err
		}
		if err := client.DeleteDeck(ctx, deckID); err != nil {
			return err
		}
		fmt.Printf("Deleted deck %d.\n", deckID)
		return nil
	case "show":
		if len(args) != 2 {
			return fmt.Errorf("usage: deck show <id>")
		}
		vm, err := selectDeck(ctx, client, args[1])
		if err != nil {
			return err
		}
		displayDeck(*vm.Deck(), vm.Zones())
		return nil
	case "add", "remove":
		if len(args) < 3 || len(args) > 4 {
			return fmt.Errorf("usage: deck %s <deck-id> <card-id> [count]", args[0])
		}
		vm, err := selectDeck(ctx, client, args[1])
		if err != nil {
			return err
		}
		cardID, err := parseID(args[2])
		if err != nil {
			return err
		}
		count := 1
		if len(args) == 4 {
			count, err = strconv.Atoi(args[3])
			if err != nil || count <= 0 {
				return fmt.Errorf("invalid count %q", args[3])
			}
		}
		if args[0] == "add" {
			err = vm.AddCopies(ctx, cardID, count)
		} else {
			err = vm.RemoveCopies(ctx, cardID, count)
		}
		if err != nil {
			return err
		}
		displayDeck(*vm.Deck(), vm.Zones())
		return nil
	default:
		return fmt.Errorf("unknown deck command: %s", args[0])
	}
}

// selectDeck resolves a deck id argument into a loaded view-model.
func selectDeck(ctx context.Context, client *api.Client, arg string) (*deck.ViewModel, error) {
	deckID, err := parseID(arg)
	if err != nil {
		return nil, err
	}
	decks, err := client.GetDecks(ctx)
	if err != nil {
		return nil, err
	}
	for _, d := range decks {
		if d.ID == deckID {
			vm := deck.NewViewModel(client, nil)
			if err := vm.Select(ctx, d); err != nil {
				return nil, err
			}
			return vm, nil
		}
	}
	return nil, fmt.Errorf("deck %d not found", deckID)
}

func runImport(ctx context.Context, client *api.Client, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: import <deck-id> <file.ydk>")
	}
	vm, err := selectDeck(ctx, client, args[0])
	if err != nil {
		return err
	}
	if err := vm.Import(ctx, args[1]); err != nil {
		return err
	}
	fmt.Printf("Imported %s into deck %q.\n", filepath.Base(args[1]), vm.Deck().Name)
	displayDeck(*vm.Deck(), vm.Zones())
	return nil
}

func runExport(ctx context.Context, client *api.Client, cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: export <deck-id>")
	}
	vm, err := selectDeck(ctx, client, args[0])
	if err != nil {
		return err
	}
	path, err := vm.Export(ctx, cfg.Decks.ExportDir)
	if err != nil {
		return err
	}
	fmt.Printf("Exported deck %q to %s\n", vm.Deck().Name, path)
	return nil
}

func runWatch(ctx context.Context, client *api.Client, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: watch <deck-id> <dir>")
	}
	deckID, err := parseID(args[0])
	if err != nil {
		return err
	}

	watcher := deck.NewWatcher(client, deck.DefaultWatcherConfig(args[1], deckID))
	if err := watcher.Start(ctx); err != nil {
		return err
	}
	defer watcher.Stop()

	fmt.Printf("Watching %s for deck lists (Ctrl+C to stop)...\n", args[1])
	<-ctx.Done()
	fmt.Println("Stopping watcher.")
	return nil
}

func runStats(ctx context.Context, client *api.Client, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: stats <collection|deck> ...")
	}

	var (
		title string
		stats *api.CollectionStats
		err   error
	)
	switch args[0] {
	case "collection":
		title = "Collection Statistics"
		stats, err = client.GetCollectionStats(ctx)
	case "deck":
		if len(args) != 2 {
			return fmt.Errorf("usage: stats deck <id>")
		}
		var deckID uint
		deckID, err = parseID(args[1])
		if err != nil {
			return err
		}
		title = fmt.Sprintf("Deck %d Statistics", deckID)
		stats, err = client.GetDeckStats(ctx, deckID)
	default:
		return fmt.Errorf("unknown stats command: %s", args[0])
	}
	if err != nil {
		return err
	}

	displayStats(title, stats)

	if *chartPath != "" {
		if err := writeAttributeChart(title, stats, *chartPath); err != nil {
			return err
		}
		fmt.Printf("Chart written to %s\n", *chartPath)
	}
	return nil
}

func writeAttributeChart(title string, stats *api.CollectionStats, path string) error {
	chartConfig := charts.DefaultChartConfig()
	chartConfig.Title = title
	chartConfig.Subtitle = fmt.Sprintf("Generated %s", time.Now().Format("2006-01-02 15:04"))

	data := make([]charts.DataPoint, 0, len(stats.Attributes))
	for _, entry := range ygostats.AttributeRanking(stats.Attributes) {
		data = append(data, charts.DataPoint{Label: entry.Name, Value: float64(entry.Count)})
	}
	return charts.RenderBarChart(data, chartConfig, path)
}

func parseID(arg string) (uint, error) {
	id, err := strconv.ParseUint(arg, 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid id %q", arg)
	}
	return uint(id), nil
}

func parseCardQuantity(cardArg, quantityArg string) (uint, int, error) {
	cardID, err := parseID(cardArg)
	if err != nil {
		return 0, 0, err
	}
	quantity, err := strconv.Atoi(quantityArg)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid quantity %q", quantityArg)
	}
	return cardID, quantity, nil
}
