package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/bokettoo/Riad-al-Hout-backend/config"
	"github.com/bokettoo/Riad-al-Hout-backend/database"
	"github.com/bokettoo/Riad-al-Hout-backend/kds"
	"github.com/bokettoo/Riad-al-Hout-backend/middlewares"
	"github.com/bokettoo/Riad-al-Hout-backend/router"
	"github.com/bokettoo/Riad-al-Hout-backend/services"
	"github.com/bokettoo/Riad-al-Hout-backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const appName = "riad-al-hout"

func main() {
	command := "serve"
	args := os.Args[1:]
	if len(args) > 0 {
		command, args = args[0], args[1:]
	}

	cfg, err := config.Load()
	if err != nil {
		utils.ErrorLogger.Fatalf("Cannot load config: %v", err)
	}
	utils.InitLogger(cfg.LogLevel)

	if command == "help" || command == "-h" || command == "--help" {
		printUsage()
		return
	}

	db, err := config.InitDB(cfg)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}

	ctx := context.Background()
	switch command {
	case "serve":
		err = serve(ctx, cfg, db)
	case "migrate":
		err = database.Migrate(db)
	case "seed":
		err = seedAdmin(ctx, cfg, db)
	case "seed-demo":
		err = seedDemo(ctx, cfg, db, args)
	case "clear":
		err = database.ClearData(ctx, db)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		utils.ErrorLogger.Fatalf("%s failed: %v", command, err)
	}
}

func serve(ctx context.Context, cfg *config.Config, db *gorm.DB) error {
	if err := database.Migrate(db); err != nil {
		return err
	}
	if err := seedAdmin(ctx, cfg, db); err != nil {
		return err
	}

	revoked, err := tokenBlacklist(ctx, cfg)
	if err != nil {
		return err
	}

	if cfg.GinMode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	r := router.SetupRouter(router.Deps{
		DB:           db,
		Tokens:       utils.NewTokenManager(cfg.SecretKey, cfg.AccessTokenTTL),
		Revoked:      revoked,
		Hub:          kds.NewHub(cfg.CORSOrigins),
		CORSOrigins:  cfg.CORSOrigins,
		LoginLimiter: middlewares.NewRateLimiter(cfg.LoginRatePerMinute),
	})
	if err := r.SetTrustedProxies(nil); err != nil {
		return err
	}

	utils.InfoLogger.Printf("Listening on port %s", cfg.Port)
	return r.Run(":" + cfg.Port)
}

// tokenBlacklist uses Redis when REDIS_URL is set so revocations survive a
// restart and are shared between instances.
func tokenBlacklist(ctx context.Context, cfg *config.Config) (utils.TokenBlacklist, error) {
	if cfg.RedisURL == "" {
		utils.InfoLogger.Info("REDIS_URL not set, revoked tokens are kept in memory")
		return utils.NewMemoryBlacklist(), nil
	}
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	utils.InfoLogger.WithField("addr", opts.Addr).Info("redis token blacklist enabled")
	return utils.NewRedisBlacklist(client), nil
}

func seedAdmin(ctx context.Context, cfg *config.Config, db *gorm.DB) error {
	if cfg.AdminPassword == "" {
		utils.InfoLogger.Warn("ADMIN_PASSWORD not set, skipping admin seed")
		return nil
	}
	return database.SeedAdmin(ctx, services.NewUserService(db), cfg.AdminUsername, cfg.AdminPassword)
}

func seedDemo(ctx context.Context, cfg *config.Config, db *gorm.DB, args []string) error {
	fs := flag.NewFlagSet("seed-demo", flag.ContinueOnError)
	days := fs.Int("days", 26, "number of days of history to generate, ending yesterday")
	wipe := fs.Bool("clear", false, "delete existing reservations, orders and revenue first")
	seed := fs.Int64("seed", time.Now().UnixNano(), "random seed")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *days <= 0 {
		return fmt.Errorf("-days must be positive")
	}

	if err := database.Migrate(db); err != nil {
		return err
	}
	if *wipe {
		if err := database.ClearData(ctx, db); err != nil {
			return err
		}
	}
	if err := seedAdmin(ctx, cfg, db); err != nil {
		return err
	}

	to := time.Now().UTC().Truncate(24*time.Hour).AddDate(0, 0, -1)
	from := to.AddDate(0, 0, -(*days - 1))
	_, err := database.SeedDemo(ctx, db, from, to, rand.New(rand.NewSource(*seed)))
	return err
}

func printUsage() {
	fmt.Printf(`%s - restaurant back-office API

Usage:
  %s [command] [options]

Commands:
  serve        Run the HTTP API (default)
  migrate      Create or update the database schema
  seed         Create the admin user from ADMIN_USERNAME / ADMIN_PASSWORD
  seed-demo    Generate historical reservations, orders and revenue
               (-days N, -clear, -seed N)
  clear        Delete reservations, orders, revenue and non-admin users
`, appName, appName)
}
