package main

import (
	"context"
	"net/http"
	"os"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/solaris-soft/Party-games/config"
	"github.com/solaris-soft/Party-games/game"
	"github.com/solaris-soft/Party-games/store"
)

func CreateServer(allowedOrigins []string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/health", func(ctx *gin.Context) { ctx.String(200, "healthy") })

	r.Use(func(ctx *gin.Context) {
		origin := ctx.Request.Header.Get("Origin")

		// Non-browser clients send no Origin header; let them through.
		if origin == "" || slices.Contains(allowedOrigins, origin) {
			ctx.Next()
			return
		}
		ctx.String(http.StatusForbidden, "forbidden origin")
		ctx.Abort()
	})

	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowCredentials: true,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{
			"Content-Type",
			"Authorization",
			"Upgrade",
			"Connection",
			"Sec-WebSocket-Key",
			"Sec-WebSocket-Version",
			"Sec-WebSocket-Extensions",
			"Sec-WebSocket-Protocol",
		},
	}))

	return r
}

func newStore(cfg *config.Config) (store.Store, error) {
	switch cfg.Store.Backend {
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: cfg.Store.RedisAddr})
		return store.NewRedis(&store.RedisConfig{RedisClient: client})
	case "postgres":
		return store.NewPostgres(context.Background(), cfg.Store.PostgresURL)
	default:
		return store.NewMemory(), nil
	}
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load("config")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	gin.SetMode(cfg.Server.GinMode)

	st, err := newStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize store")
	}
	log.Info().Str("backend", cfg.Store.Backend).Msg("Store initialized")

	registry := game.NewRegistry()
	rulesets := []game.Ruleset{
		game.NewParanoia(),
		game.NewMurder(),
		game.NewOddsOn(),
		game.NewUltimateCup(),
	}
	for _, rs := range rulesets {
		eng, err := game.NewEngine(&game.Config{
			Ruleset:    rs,
			Store:      st,
			Seed:       cfg.Games.Seed,
			Logger:     log.Logger,
			DebugDrops: cfg.Games.DebugDrops,
		})
		if err != nil {
			log.Fatal().Err(err).Str("game", rs.Kind()).Msg("Failed to create engine")
		}
		if err := registry.Register(eng); err != nil {
			log.Fatal().Err(err).Str("game", rs.Kind()).Msg("Failed to register engine")
		}
	}
	log.Info().Strs("games", registry.Kinds()).Msg("Game engines registered")

	r := CreateServer(cfg.Server.AllowedOrigins)
	game.NewHandler(registry).RegisterRoutes(r)

	log.Info().Str("addr", cfg.Server.Addr).Msg("Server starting")
	if err := r.Run(cfg.Server.Addr); err != nil {
		log.Fatal().Err(err).Msg("Server stopped")
	}
}
