package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/sealdrop/sealdrop/internal/auth"
	"github.com/sealdrop/sealdrop/internal/model"
	"github.com/sealdrop/sealdrop/internal/repository"
)

type output struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Active   bool   `json:"active"`
}

// create-user provisions an account directly in PostgreSQL, e.g. a
// deactivated account for testing or an operator account before the API is
// exposed. The password is read from SEALDROP_PASSWORD or the first line of stdin.
func main() {
	var (
		databaseURL = flag.String("database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
		username    = flag.String("username", "", "Username (required)")
		email       = flag.String("email", "", "Email (required)")
		inactive    = flag.Bool("inactive", false, "Create the account deactivated")
		migrate     = flag.Bool("migrate", true, "Apply migrations first")
		format      = flag.String("format", "plain", "Output format: plain or json")
	)
	flag.Parse()

	if *databaseURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}
	if *username == "" || *email == "" {
		fmt.Fprintln(os.Stderr, "-username and -email are required")
		os.Exit(1)
	}

	password, err := readPassword()
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if *migrate {
		if err := repository.Migrate(ctx, *databaseURL); err != nil {
			fmt.Fprintln(os.Stderr, "migrate:", err)
			os.Exit(1)
		}
	}

	repo, err := repository.New(ctx, *databaseURL)
	if err != nil {
		fmt.Fprintln(os.Stderr, "connect database:", err)
		os.Exit(1)
	}
	defer repo.Close()

	hasher, err := auth.NewPasswordHasher(auth.DefaultHashParams)
	if err != nil {
		fmt.Fprintln(os.Stderr, "create hasher:", err)
		os.Exit(1)
	}
	hash, err := hasher.Hash(password)
	if err != nil {
		fmt.Fprintln(os.Stderr, "hash password:", err)
		os.Exit(1)
	}

	user := &model.User{
		ID:           ulid.Make().String(),
		Username:     *username,
		Email:        strings.ToLower(strings.TrimSpace(*email)),
		PasswordHash: hash,
		Active:       !*inactive,
		CreatedAt:    time.Now().UTC(),
	}
	if err := repo.CreateUser(ctx, user); err != nil {
		fmt.Fprintln(os.Stderr, "create user:", err)
		os.Exit(1)
	}

	out := output{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
		Active:   user.Active,
	}

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

func readPassword() (string, error) {
	if pw := os.Getenv("SEALDROP_PASSWORD"); pw != "" {
		return pw, nil
	}

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read password from stdin: %w", err)
	}
	pw := strings.TrimRight(line, "\r\n")
	if len(pw) < 8 {
		return "", fmt.Errorf("password must be at least 8 characters long")
	}
	return pw, nil
}
