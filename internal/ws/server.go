package ws

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 12 * time.Second
	pingPeriod = 3 * time.Second // must be < pongWait
)

type WsServer struct {
	hub      *Hub
	upgrader websocket.Upgrader
}

func NewWsServer(h *Hub) *WsServer {
	return &WsServer{
		hub: h,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true }, // dev-only
		},
	}
}

// Handle upgrades the request and subscribes it to auction_id, or to every
// auction when no id is given. Listeners only receive; inbound frames other
// than control frames are discarded.
func (s *WsServer) Handle(ginCtx *gin.Context) {
	topic := ginCtx.Query("auction_id")
	if topic == "" {
		topic = AllAuctions
	}

	rawConn, err := s.upgrader.Upgrade(ginCtx.Writer, ginCtx.Request, nil)
	if err != nil {
		zap.L().Warn("ws.accept", zap.Error(err))
		return
	}
	rawConn.SetReadLimit(512)

	conn := &clientConn{rawConn: rawConn}
	s.hub.Join(topic, conn)
	zap.L().Debug("ws.joined", zap.String("topic", topic), zap.Int("listeners", s.hub.Count(topic)))

	go s.reader(topic, conn)
	go s.pinger(conn)
}

func (s *WsServer) reader(topic string, conn *clientConn) {
	defer s.hub.Leave(topic, conn)

	_ = conn.rawConn.SetReadDeadline(time.Now().Add(pongWait))
	conn.rawConn.SetPongHandler(func(string) error {
		return conn.rawConn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.rawConn.ReadMessage(); err != nil {
			return // client closed or errored
		}
	}
}

func (s *WsServer) pinger(conn *clientConn) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for range ticker.C {
		if err := conn.ping(); err != nil {
			return
		}
	}
}
