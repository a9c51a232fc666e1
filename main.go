package main

import (
	"auctionsearchgo/internal/config"
	"auctionsearchgo/internal/database/db_client"
	"auctionsearchgo/internal/database/migrations"
	"auctionsearchgo/internal/events"
	"auctionsearchgo/internal/http/http_server"
	"auctionsearchgo/internal/http/identity"
	"auctionsearchgo/internal/redis/redis_client"
	"auctionsearchgo/internal/searchindex"
	"auctionsearchgo/internal/services/auction"
	"auctionsearchgo/internal/services/search"
	"auctionsearchgo/internal/ws"
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
)

var (
	Log, _ = zap.NewDevelopment()
)

//	@title						Auction search API
//	@version					1.0
//	@BasePath					/
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
func main() {
	defer Log.Sync()
	zap.ReplaceGlobals(Log)

	// 1. Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		Log.Fatal("Failed to load configuration", zap.Error(err))
	}
	Log.Debug("Configuration loaded successfully",
		zap.Uint16("http_port", cfg.HttpServerPort),
		zap.String("postgres_host", cfg.PostgresHost),
		zap.String("redis_host", cfg.RedisHost))

	// 2. Context with signal handling
	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGINT, syscall.SIGTERM,
	)
	defer stop()

	// 3. Redis
	redisClient, err := redis_client.NewRedisClient(cfg.RedisHost, int(cfg.RedisPort), cfg.RedisPass, cfg.RedisDb)
	if err != nil {
		Log.Fatal("Failed to create Redis client", zap.Error(err))
	}
	defer redisClient.Close()

	// 4. Postgres db client + schema
	pgDb, err := db_client.Open(cfg.PostgresHost, cfg.PostgresPort, cfg.PostgresUser, cfg.PostgresPassword, cfg.PostgresDb)
	if err != nil {
		Log.Fatal("pg-open", zap.Error(err))
	}
	defer pgDb.Close()

	if err := migrations.Apply(ctx, pgDb); err != nil {
		Log.Fatal("pg-migrate", zap.Error(err))
	}

	// 5. Services
	publisher := events.NewPublisher(redisClient, cfg.EventsStreamMaxLen)
	auctionService := auction.NewAuctionService(pgDb, publisher)

	index := search.NewPgIndex(pgDb)
	searchService := search.NewSearchService(index, search.Limits{
		DefaultPageSize: cfg.SearchDefaultPageSize,
		MaxPageSize:     cfg.SearchMaxPageSize,
	})

	// 6. Background: search projection fed by the event stream + periodic resync
	indexer := searchindex.New(redisClient, index, auctionService)
	if _, err := indexer.Resync(ctx); err != nil {
		Log.Error("searchindex-initial-resync", zap.Error(err))
	}
	indexer.Run(ctx)
	if _, err := indexer.Schedule(ctx, cfg.SearchResyncSchedule); err != nil {
		Log.Fatal("searchindex-schedule", zap.Error(err))
	}

	// 7. WebSockets hub + Redis fan-out
	hub := ws.NewHub()
	go ws.SubscribeRedisAuctionEvents(ctx, redisClient, hub)
	wsSrv := ws.NewWsServer(hub)

	// 8. HTTP + WS server
	httpServer := http_server.NewHttpServer(ctx, cfg.HttpServerPort, http_server.Deps{
		AuctionService: auctionService,
		SearchService:  searchService,
		Verifier:       identity.NewVerifier(cfg.AuthSecret),
		WsSrv:          wsSrv,
		Store:          pgDb,
	})
	go func() {
		<-ctx.Done()
		_ = httpServer.Dispose()
	}()
	if err := httpServer.Start(); err != nil {
		Log.Fatal("Failed to start HTTP server", zap.Error(err))
	}
}
