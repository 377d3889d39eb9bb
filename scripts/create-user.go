package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/mindlog/mindlog/internal/auth"
	"github.com/mindlog/mindlog/internal/repository"
	"github.com/mindlog/mindlog/internal/service"
)

type output struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
}

func main() {
	var (
		databaseURL = flag.String("database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
		username    = flag.String("username", "", "Username to create")
		email       = flag.String("email", "", "Optional email address")
		format      = flag.String("format", "plain", "Output format: plain or json")
	)
	flag.Parse()

	if *databaseURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}
	if strings.TrimSpace(*username) == "" {
		fmt.Fprintln(os.Stderr, "-username is required")
		os.Exit(1)
	}

	password, err := readPassword(os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read password:", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	repo, err := repository.New(ctx, *databaseURL)
	if err != nil {
		fmt.Fprintln(os.Stderr, "connect database:", err)
		os.Exit(1)
	}
	defer repo.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	users := service.NewUserService(repo, auth.NewHasher(auth.DefaultParams), logger)

	user, err := users.Register(ctx, *username, password, *email)
	switch {
	case errors.Is(err, service.ErrUsernameTaken):
		fmt.Fprintf(os.Stderr, "username %s already exists\n", *username)
		os.Exit(1)
	case errors.Is(err, service.ErrEmailTaken):
		fmt.Fprintf(os.Stderr, "email %s already in use\n", *email)
		os.Exit(1)
	case err != nil:
		fmt.Fprintln(os.Stderr, "create user:", err)
		os.Exit(1)
	}

	out := output{UserID: user.ID, Username: user.Username, Email: user.Email}

	switch strings.ToLower(*format) {
	case "plain":
		fmt.Println(out.UserID)
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(out)
	default:
		fmt.Fprintln(os.Stderr, "invalid format; use plain or json")
		os.Exit(1)
	}
}

// readPassword prompts on the terminal without echo. MINDLOG_PASSWORD is
// used instead when stdin is not a terminal.
func readPassword(prompt io.Writer) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		pw := os.Getenv("MINDLOG_PASSWORD")
		if pw == "" {
			return "", errors.New("stdin is not a terminal and MINDLOG_PASSWORD is not set")
		}
		return pw, nil
	}

	fmt.Fprint(prompt, "Password: ")
	pw, err := term.ReadPassword(fd)
	fmt.Fprintln(prompt)
	if err != nil {
		return "", err
	}
	if len(pw) == 0 {
		return "", errors.New("password must not be empty")
	}
	return string(pw), nil
}
