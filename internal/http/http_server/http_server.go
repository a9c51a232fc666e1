package http_server

import (
	"auctionsearchgo/internal/http/auctionhandler"
	"auctionsearchgo/internal/http/identity"
	"auctionsearchgo/internal/http/searchhandler"
	"auctionsearchgo/internal/services/auction"
	"auctionsearchgo/internal/services/search"
	"auctionsearchgo/internal/ws"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/abrar71/swaggerfilesv2" // swagger embed files
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Deps struct {
	AuctionService auction.IAuctionService
	SearchService  search.ISearchService
	Verifier       *identity.Verifier
	WsSrv          *ws.WsServer
	Store          Pinger
}

type httpServer struct {
	listenPort uint16
	srv        http.Server
	ln         net.Listener
	deps       Deps
	ctx        context.Context
}

func NewHttpServer(ctx context.Context, listenPort uint16, deps Deps) *httpServer {
	return &httpServer{
		listenPort: listenPort,
		deps:       deps,
		ctx:        ctx,
	}
}

// Routes builds the gin engine with every endpoint mounted.
func Routes(deps Deps) *gin.Engine {
	routerEngine := gin.New()

	routerEngine.Use(ginzap.Ginzap(zap.L(), time.RFC3339, true))
	routerEngine.Use(ginzap.RecoveryWithZap(zap.L(), true))

	// Swagger UI and API specs
	routerEngine.StaticFS("/swagger-apis", http.FS(swaggerfilesv2.FS))
	routerEngine.Static("/api-specs", "api_specs")

	routerEngine.GET("/healthz", healthz(deps.Store))

	// websocket endpoint
	if deps.WsSrv != nil {
		routerEngine.GET("/ws", deps.WsSrv.Handle)
	}

	// REST API
	api := routerEngine.Group("/api")
	api.Use(deps.Verifier.Middleware())
	auctionhandler.New(deps.AuctionService).Register(api)
	searchhandler.New(deps.SearchService).Register(api)

	return routerEngine
}

func healthz(store Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := store.PingContext(ctx); err != nil {
			zap.L().Warn("healthz_store_down", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

func (h *httpServer) Start() error {
	var err error
	listenAddr := fmt.Sprintf(":%d", h.listenPort)
	h.ln, err = net.Listen("tcp", listenAddr)
	if err != nil {
		return err
	}

	h.srv = http.Server{
		Handler:           Routes(h.deps),
		ReadHeaderTimeout: 5 * time.Second,
	}

	zap.L().Info("http_listening", zap.String("addr", listenAddr))
	if err := h.srv.Serve(h.ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Dispose gracefully shuts the HTTP server down.
// It waits up to 10 s for in-flight requests to finish.
func (h *httpServer) Dispose() error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(h.ctx), 10*time.Second)
	defer cancel()

	if err := h.srv.Shutdown(ctx); err != nil {
		zap.L().Error("http_dispose", zap.Error(err))
		return err // e.g. active conns didn't finish in time
	}
	return nil
}
