// Command bankdash-stub serves a local stand-in for the banking API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/naveenspark/bankdash/internal/logging"
	"github.com/naveenspark/bankdash/internal/stub"
)

const defaultSecret = "bankdash-stub-secret"

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("bankdash-stub", flag.ContinueOnError)
	listen := fs.String("listen", "127.0.0.1:8000", "address to listen on")
	secret := fs.String("secret", "", "token signing secret (BANKDASH_STUB_SECRET)")
	ttl := fs.Duration("token-ttl", time.Hour, "access token lifetime")
	seed := fs.String("seed", "", "create an account at startup, as email:password[:role]")
	debug := fs.Bool("debug", false, "log at debug level")
	if err := fs.Parse(args); err != nil {
		return err
	}

	log := logging.NewConsole(*debug)
	defer log.Sync() //nolint:errcheck

	key := *secret
	if key == "" {
		key = os.Getenv("BANKDASH_STUB_SECRET")
	}
	if key == "" {
		key = defaultSecret
		log.Warn("using the built-in signing secret; set -secret for anything shared")
	}

	srv := stub.New(stub.Options{Secret: []byte(key), TokenTTL: *ttl, Log: log})
	if *seed != "" {
		email, password, role, err := parseSeed(*seed)
		if err != nil {
			return err
		}
		if err := srv.Seed("Demo User", email, password, role); err != nil {
			return fmt.Errorf("seed account: %w", err)
		}
		log.Info("seeded account", zap.String("email", email), zap.String("role", role))
	}

	app := srv.App()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", *listen))
		errCh <- app.Listen(*listen)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return app.ShutdownWithContext(shutCtx)
}

// parseSeed splits email:password[:role]. The role defaults to customer.
func parseSeed(s string) (email, password, role string, err error) {
	parts := strings.SplitN(s, ":", 3)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", "", errors.New("seed must look like email:password[:role]")
	}
	role = "customer"
	if len(parts) == 3 && parts[2] != "" {
		role = parts[2]
	}
	return parts[0], parts[1], role, nil
}
