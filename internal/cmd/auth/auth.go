// Package auth wires configuration parsing and startup for the auth command.
package auth

import (
	"context"
	"flag"
	"log"

	"github.com/ebarkhatov/gatehouse/internal/platform/config"
	"github.com/ebarkhatov/gatehouse/internal/platform/otel"
	"github.com/ebarkhatov/gatehouse/internal/platform/timeouts"
	server "github.com/ebarkhatov/gatehouse/internal/services/auth/app"
)

// Config holds auth command configuration.
type Config struct {
	Port          int
	RedisAddr     string
	RedisPassword string
	RedisPoolSize int
	ServiceName   string
}

type envConfig struct {
	Port          int    `env:"GATEHOUSE_AUTH_PORT" envDefault:"8083"`
	RedisAddr     string `env:"GATEHOUSE_REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"GATEHOUSE_REDIS_PASSWORD"`
	RedisPoolSize int    `env:"GATEHOUSE_REDIS_POOL_SIZE" envDefault:"10"`
	ServiceName   string `env:"GATEHOUSE_SERVICE_NAME" envDefault:"auth"`
}

// ParseConfig parses environment variables and flags into a Config. Flags
// take precedence over environment values.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var envCfg envConfig
	if err := config.ParseEnv(&envCfg); err != nil {
		return Config{}, err
	}

	cfg := Config{
		Port:          envCfg.Port,
		RedisAddr:     envCfg.RedisAddr,
		RedisPassword: envCfg.RedisPassword,
		RedisPoolSize: envCfg.RedisPoolSize,
		ServiceName:   envCfg.ServiceName,
	}

	fs.IntVar(&cfg.Port, "port", cfg.Port, "The auth gRPC server port")
	fs.StringVar(&cfg.RedisAddr, "redis-addr", cfg.RedisAddr, "The session store address")
	fs.IntVar(&cfg.RedisPoolSize, "redis-pool-size", cfg.RedisPoolSize, "The session store connection pool size")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts tracing and serves the auth server until the context ends.
func Run(ctx context.Context, cfg Config) error {
	shutdown, err := otel.Setup(ctx, cfg.ServiceName)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown tracing: %v", err)
		}
	}()

	return server.Run(ctx, server.Config{
		Port:          cfg.Port,
		RedisAddr:     cfg.RedisAddr,
		RedisPassword: cfg.RedisPassword,
		RedisPoolSize: cfg.RedisPoolSize,
	})
}
