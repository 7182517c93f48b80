// Command alain runs the coaching bot against a local terminal chat.
// Each line typed is one message; slash commands mirror the bot commands.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"

	"github.com/gatsby003/alain-bot/ai/factory"
	"github.com/gatsby003/alain-bot/config"
	"github.com/gatsby003/alain-bot/db"
	"github.com/gatsby003/alain-bot/logger"
	"github.com/gatsby003/alain-bot/services"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath = flag.String("config", config.GetConfigPath(), "Path to config file")
		dbPath     = flag.String("db", "", "Path to SQLite database file (overrides config)")
		logFile    = flag.String("logfile", "alain.log", "Path to log file. If empty, logs to stderr")
		pretty     = flag.Bool("pretty", false, "Use pretty console output (only valid when logfile is empty)")
		provider   = flag.String("provider", "", "Backend provider to use (overrides config)")
		userID     = flag.String("user", "local", "External user id for this chat session")
	)
	flag.Parse()

	if *logFile != "" && *pretty {
		return fmt.Errorf("--logfile and --pretty are mutually exclusive")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}
	if *provider != "" {
		cfg.Provider = *provider
	}

	log, err := logger.Init(*logFile, *pretty)
	if err != nil {
		return err
	}

	conn, err := db.Open(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer conn.Close() //nolint:errcheck // nothing to do about a close error on exit

	if err := db.Migrate(conn, log); err != nil {
		return err
	}
	store := db.NewStore(conn)

	backend, err := factory.New(cfg.AISettings(), log).CreateProvider(cfg.Provider, nil)
	if err != nil {
		return err
	}
	policy, err := cfg.RetryPolicy()
	if err != nil {
		return err
	}

	coach := services.NewCoach(
		store,
		services.NewOnboardingService(store, backend, policy, log),
		services.NewPonderingService(store, backend, policy, log),
		log,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return chat(ctx, coach, store, log, *userID)
}

// chat runs the line-oriented conversation loop until EOF, /quit, or a
// signal.
func chat(ctx context.Context, coach *services.Coach, store *db.Store, log zerolog.Logger, externalUserID string) error {
	// One terminal session maps to one chat.
	chatID := "terminal:" + externalUserID

	fmt.Println("alain ready. /start to begin, /quit to leave.")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		if ctx.Err() != nil {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var (
			reply string
			err   error
		)
		switch line {
		case "/quit", "/exit":
			return nil
		case "/start":
			reply, err = coach.Start(ctx, externalUserID, chatID, externalUserID, externalUserID)
		case "/reset":
			reply, err = coach.Reset(ctx, externalUserID)
		case "/northstar":
			reply, err = coach.Northstar(ctx, externalUserID, chatID)
		case "/profile":
			reply, err = showProfile(ctx, store, externalUserID)
		case "/ponderings":
			reply, err = showPonderings(ctx, store, externalUserID)
		default:
			reply, err = coach.HandleText(ctx, externalUserID, chatID, line)
		}
		if err != nil {
			log.Error().Err(err).Str("input", line).Msg("turn failed")
			fmt.Println("Something went wrong, try again.")
			continue
		}
		fmt.Println(reply)
	}
	return scanner.Err()
}

func showProfile(ctx context.Context, store *db.Store, externalUserID string) (string, error) {
	user, err := store.GetUserByExternalID(ctx, externalUserID)
	if err != nil {
		return "", err
	}
	if user == nil {
		return services.NotStartedReply, nil
	}
	profile, err := store.GetProfile(ctx, user.ID)
	if err != nil {
		return "", err
	}
	if profile == nil {
		return "No profile yet. Finish onboarding first.", nil
	}

	var b strings.Builder
	b.WriteString("Daily intentions:\n")
	for _, it := range profile.DailyIntentions {
		fmt.Fprintf(&b, "  - %s\n", it)
	}
	b.WriteString("Values:\n")
	for _, v := range profile.Values {
		fmt.Fprintf(&b, "  - %s\n", v)
	}
	b.WriteString("Goals:\n")
	for _, g := range profile.Goals {
		fmt.Fprintf(&b, "  - %s\n", g)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func showPonderings(ctx context.Context, store *db.Store, externalUserID string) (string, error) {
	user, err := store.GetUserByExternalID(ctx, externalUserID)
	if err != nil {
		return "", err
	}
	if user == nil {
		return services.NotStartedReply, nil
	}
	ponderings, err := store.RecentPonderings(ctx, user.ID, 10)
	if err != nil {
		return "", err
	}
	if len(ponderings) == 0 {
		return "Nothing pondered yet.", nil
	}

	var b strings.Builder
	for _, p := range ponderings {
		fmt.Fprintf(&b, "[%s] %s\n", p.Category, p.CleanedContent)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}
