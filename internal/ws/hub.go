package ws

import (
	"sync"
)

// AllAuctions is the topic of listeners interested in every auction.
const AllAuctions = "*"

// Hub keeps client sets per topic (an auction id or AllAuctions).
type Hub struct {
	rooms sync.Map // topic -> *room
}

func NewHub() *Hub { return &Hub{} }

func (h *Hub) Broadcast(topic string, msg []byte) {
	if v, ok := h.rooms.Load(topic); ok {
		v.(*room).broadcast(msg)
	}
}

func (h *Hub) Join(topic string, c *clientConn) {
	r, _ := h.rooms.LoadOrStore(topic, newRoom())
	r.(*room).add(c)
}

func (h *Hub) Leave(topic string, c *clientConn) {
	if v, ok := h.rooms.Load(topic); ok {
		v.(*room).remove(c)
	}
}

// Count reports how many listeners a topic has.
func (h *Hub) Count(topic string) int {
	if v, ok := h.rooms.Load(topic); ok {
		return v.(*room).size()
	}
	return 0
}
