package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/sceptre-labs/sceptre/src/auth"
	"github.com/sceptre-labs/sceptre/src/config"
	"github.com/sceptre-labs/sceptre/src/dispatch"
	"github.com/sceptre-labs/sceptre/src/history"
	"github.com/sceptre-labs/sceptre/src/knowledge"
	"github.com/sceptre-labs/sceptre/src/presenter"
	"github.com/sceptre-labs/sceptre/src/risk"
	"github.com/sceptre-labs/sceptre/src/session"
	"github.com/sceptre-labs/sceptre/src/verify"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cfg := config.Load()
	store, err := newStore(cfg)
	if err != nil {
		log.Fatalf("session store: %v", err)
	}

	ctx := context.Background()
	switch os.Args[1] {
	case "signup":
		err = runSignup(ctx, cfg, os.Args[2:])
	case "login":
		err = runLogin(ctx, cfg, store, os.Args[2:])
	case "logout":
		err = store.Clear()
	case "whoami":
		err = runWhoami(store)
	case "verify":
		err = runVerify(ctx, cfg, store, os.Args[2:])
	case "refresh":
		err = runRefresh(ctx, cfg, store, os.Args[2:])
	case "history":
		err = runHistory(ctx, cfg, os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("%s: %v", os.Args[1], err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: sceptre <signup|login|logout|whoami|verify|refresh|history> [flags]")
}

// newStore picks the durable session backend: redis when configured, the
// local file otherwise.
func newStore(cfg config.Config) (auth.Store, error) {
	if cfg.RedisURL != "" {
		return auth.NewRedisStore(cfg.RedisURL)
	}
	return auth.NewFileStore(cfg.SessionFile)
}

func runSignup(ctx context.Context, cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("signup", flag.ExitOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	name := fs.String("name", "", "full name")
	fs.Parse(args)

	if *email == "" || *password == "" {
		return fmt.Errorf("email and password are required")
	}

	client := auth.NewClient(cfg.APIURL)
	if err := client.Signup(ctx, *email, *password, *name); err != nil {
		return err
	}
	fmt.Println("account created, log in with: sceptre login")
	return nil
}

func runLogin(ctx context.Context, cfg config.Config, store auth.Store, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	username := fs.String("username", "", "account email")
	password := fs.String("password", "", "account password")
	fs.Parse(args)

	if *username == "" || *password == "" {
		return fmt.Errorf("username and password are required")
	}

	client := auth.NewClient(cfg.APIURL)
	sess, err := client.Login(ctx, *username, *password)
	if err != nil {
		return err
	}
	if err := store.Save(sess); err != nil {
		return err
	}
	fmt.Printf("logged in as %s\n", sess.User.Email)
	return nil
}

func runWhoami(store auth.Store) error {
	sess, ok, err := store.Bootstrap()
	if err != nil {
		return err
	}
	if !ok {
		fmt.Println("not logged in")
		return nil
	}
	if sess.User.FullName != "" {
		fmt.Printf("%s <%s>\n", sess.User.FullName, sess.User.Email)
	} else {
		fmt.Println(sess.User.Email)
	}
	return nil
}

func runVerify(ctx context.Context, cfg config.Config, store auth.Store, args []string) error {
	fs := flag.NewFlagSet("verify", flag.ExitOnError)
	text := fs.String("text", "", "text to verify")
	link := fs.String("url", "", "url to verify")
	file := fs.String("file", "", "file to verify")
	fs.Parse(args)

	sub, err := buildSubmission(*text, *link, *file)
	if err != nil {
		return err
	}

	sess, ok, err := store.Bootstrap()
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("not logged in, run: sceptre login")
	}

	src, err := session.New()
	if err != nil {
		return err
	}

	dispatcher := verify.NewDispatcher(cfg.APIURL)
	res, err := dispatcher.Submit(ctx, sub, sess.Token, src.ID())
	if err != nil {
		return describeFailure(err)
	}

	presenter.New().Render(os.Stdout, res)

	if cfg.MySQLDSN != "" {
		journal, err := history.Open(cfg.MySQLDSN)
		if err != nil {
			log.Printf("journal unavailable: %v", err)
			return nil
		}
		if err := journal.Record(ctx, sub, res, src.ID()); err != nil {
			log.Printf("journal write: %v", err)
		}
	}
	return nil
}

func buildSubmission(text, link, file string) (verify.Submission, error) {
	set := 0
	for _, v := range []string{text, link, file} {
		if v != "" {
			set++
		}
	}
	if set != 1 {
		return verify.Submission{}, fmt.Errorf("exactly one of -text, -url, -file is required")
	}

	switch {
	case text != "":
		return verify.Text(text), nil
	case link != "":
		return verify.URL(link), nil
	default:
		data, err := os.ReadFile(file)
		if err != nil {
			return verify.Submission{}, fmt.Errorf("read file: %w", err)
		}
		return verify.File(file, data), nil
	}
}

// describeFailure turns the dispatch taxonomy into user-facing messages.
// Transport and parse failures read differently on purpose; neither is
// retried automatically.
func describeFailure(err error) error {
	var transport *dispatch.TransportError
	var response *dispatch.ResponseError
	var parse *dispatch.ParseError
	switch {
	case errors.As(err, &transport):
		return fmt.Errorf("could not reach the verification service, try again: %w", err)
	case errors.As(err, &response):
		if response.Retriable() {
			return fmt.Errorf("the verification service had trouble, try again: %w", err)
		}
		return fmt.Errorf("the verification service rejected the request: %w", err)
	case errors.As(err, &parse):
		return fmt.Errorf("the verification service answered in an unexpected format: %w", err)
	}
	return err
}

func runRefresh(ctx context.Context, cfg config.Config, store auth.Store, args []string) error {
	fs := flag.NewFlagSet("refresh", flag.ExitOnError)
	topic := fs.String("topic", "", "topic to refresh the knowledge base for")
	fs.Parse(args)

	if *topic == "" {
		return fmt.Errorf("topic is required")
	}

	sess, ok, err := store.Bootstrap()
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("not logged in, run: sceptre login")
	}

	src, err := session.New()
	if err != nil {
		return err
	}

	client := knowledge.NewClient(cfg.APIURL)
	res, err := client.Refresh(ctx, *topic, sess.Token, src.ID())
	if err != nil {
		return describeFailure(err)
	}
	fmt.Printf("%s (%d documents for %q)\n", res.Message, res.DocumentCount, res.Topic)
	return nil
}

func runHistory(ctx context.Context, cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	n := fs.Int("n", 10, "number of entries to show")
	fs.Parse(args)

	if cfg.MySQLDSN == "" {
		return fmt.Errorf("history requires SCEPTRE_MYSQL_DSN")
	}
	journal, err := history.Open(cfg.MySQLDSN)
	if err != nil {
		return err
	}
	entries, err := journal.Recent(ctx, *n)
	if err != nil {
		return err
	}
	for _, e := range entries {
		band := risk.Classify(e.Assessment)
		fmt.Printf("%s  %-6s %-20s %.2f  %s\n",
			e.CreatedAt.Format("2006-01-02 15:04"), e.Modality, e.Assessment, e.Score, band.Severity)
	}
	return nil
}
