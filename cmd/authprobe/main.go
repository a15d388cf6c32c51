// Command authprobe performs a login and validate round trip against a
// running auth server. It is a smoke-test tool for deployments.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	authclient "github.com/ebarkhatov/gatehouse/internal/client/auth"
	"github.com/ebarkhatov/gatehouse/internal/platform/config"
	"github.com/ebarkhatov/gatehouse/internal/platform/otel"
	"github.com/ebarkhatov/gatehouse/internal/platform/timeouts"
)

func main() {
	addr := flag.String("addr", envOrDefault("GATEHOUSE_AUTH_ADDR", "localhost:8083"), "The auth server address")
	user := flag.String("user", "root", "The username to log in with")
	password := flag.String("password", "admin", "The password to log in with")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdown, err := otel.Setup(ctx, "authprobe")
	if err != nil {
		config.Exitf("setup tracing: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		defer cancel()
		_ = shutdown(shutdownCtx)
	}()

	client, err := authclient.Dial(ctx, *addr)
	if err != nil {
		config.Exitf("dial %s: %v", *addr, err)
	}
	defer client.Close()

	callCtx, cancel := context.WithTimeout(ctx, timeouts.GRPCRequest)
	defer cancel()
	token, expireAt, err := client.Login(callCtx, *user, *password)
	if err != nil {
		config.Exitf("login: %v", err)
	}
	fmt.Printf("token: %s\n", token)
	fmt.Printf("expires: %s\n", expireAt.Format(time.RFC3339))

	validateCtx, cancel := context.WithTimeout(ctx, timeouts.GRPCRequest)
	defer cancel()
	if err := client.Validate(validateCtx, token); err != nil {
		config.Exitf("validate: %v", err)
	}
	fmt.Println("token valid")
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
