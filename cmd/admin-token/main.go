package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/angelmondragon/storefront/pkg/auth"
	"github.com/angelmondragon/storefront/pkg/config"
	"github.com/angelmondragon/storefront/pkg/enums"
	"github.com/angelmondragon/storefront/pkg/logger"
)

// admin-token mints a signed JWT for the admin API. Only the JWT settings are
// read from the environment, so it runs without database or redis access.
func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "admin-token", Output: os.Stderr})

	_ = godotenv.Load()

	subject := flag.String("subject", "", "token subject, usually the operator's email")
	role := flag.String("role", enums.AdminRoleAdmin.String(), "admin role: admin|viewer")
	ttl := flag.Int("ttl-minutes", 0, "override STOREFRONT_JWT_EXPIRATION_MINUTES")
	flag.Parse()

	var cfg config.JWTConfig
	if err := envconfig.Process(config.EnvPrefix, &cfg); err != nil {
		logg.Error(ctx, "failed to load jwt config", err)
		os.Exit(1)
	}
	if *ttl > 0 {
		cfg.ExpirationMinutes = *ttl
	}

	parsedRole, err := enums.ParseAdminRole(*role)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid -role: %v\n", err)
		os.Exit(1)
	}

	token, err := auth.MintAccessToken(cfg, time.Now(), auth.AccessTokenPayload{
		Subject: *subject,
		Role:    parsedRole,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to mint token: %v\n", err)
		os.Exit(1)
	}

	logg.Info(logg.WithFields(ctx, map[string]any{
		"subject":     *subject,
		"role":        parsedRole.String(),
		"ttl_minutes": cfg.ExpirationMinutes,
	}), "admin token minted")
	fmt.Println(token)
}
