// cmd/server/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/gaolinyi828/mahjong-pro/internal/auth"
	"github.com/gaolinyi828/mahjong-pro/internal/cache"
	"github.com/gaolinyi828/mahjong-pro/internal/database"
	"github.com/gaolinyi828/mahjong-pro/internal/handlers"
	"github.com/gaolinyi828/mahjong-pro/internal/middleware"
	"github.com/gaolinyi828/mahjong-pro/internal/watch"
)

func main() {
	auth.Init()

	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)

	ctx := context.Background()
	pool, err := database.Connect(ctx)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer pool.Close()
	if err := database.EnsureSchema(ctx, pool); err != nil {
		log.Fatalf("schema: %v", err)
	}
	if err := cache.ConnectRedis(); err != nil {
		log.Fatalf("redis: %v", err)
	}

	store := database.NewStore(pool)
	hub := watch.NewHub(func(ctx context.Context) (*watch.Snapshot, error) {
		players, sessions, rounds, err := store.Snapshot(ctx)
		if err != nil {
			return nil, err
		}
		return &watch.Snapshot{Players: players, Sessions: sessions, Rounds: rounds}, nil
	}, logger)
	srv := handlers.NewClubServer(store, hub, logger)

	go func() {
		if err := hub.Run(ctx); err != nil && ctx.Err() == nil {
			logger.Errorf("watch hub stopped: %v", err)
		}
	}()

	mux := http.NewServeMux()
	logged := middleware.LogMiddleware(logger)

	// roster endpoints
	mux.Handle("/players/create", logged(handlers.CreatePlayerHandler(srv)))
	mux.Handle("/players/update", logged(handlers.UpdatePlayerHandler(srv)))
	mux.Handle("/players/list", logged(handlers.ListPlayersHandler(srv)))

	// session endpoints
	mux.Handle("/session/open", logged(handlers.OpenSessionHandler(srv)))
	mux.Handle("/session/close", logged(handlers.CloseSessionHandler(srv)))
	mux.Handle("/session/delete", logged(handlers.DeleteSessionHandler(srv)))
	mux.Handle("/session/active", logged(handlers.ActiveSessionHandler(srv)))
	mux.Handle("/session/list", logged(handlers.ListSessionsHandler(srv)))

	// round endpoints
	mux.Handle("/round/commit", logged(handlers.CommitRoundHandler(srv)))
	mux.Handle("/round/delete", logged(handlers.DeleteRoundHandler(srv)))

	// lifetime leaderboard
	mux.Handle("/stats", logged(handlers.StatsHandler(srv)))

	// admin endpoints
	mux.Handle("/admin/login", logged(handlers.AdminLoginHandler(srv)))
	mux.Handle("/admin/clear", logged(handlers.ClearDataHandler(srv)))

	// live snapshot stream
	mux.Handle("/club/ws", logged(handlers.ClubWSHandler(logger, srv)))

	addr := ":8080"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}
	logger.Infof("Running on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
