// handlers/live.go - websocket score stream for match pages
package handlers

import (
	"strconv"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// wsWriter is the slice of websocket.Conn the broadcaster needs.
type wsWriter interface {
	WriteJSON(v interface{}) error
}

// liveViewer wraps a connection with a write lock. The websocket library
// allows only one concurrent writer per connection, and callbacks for the
// same match can broadcast from separate request goroutines.
type liveViewer struct {
	conn    wsWriter
	writeMu sync.Mutex
}

func (v *liveViewer) send(payload fiber.Map) error {
	v.writeMu.Lock()
	defer v.writeMu.Unlock()
	return v.conn.WriteJSON(payload)
}

var (
	liveMu      sync.RWMutex
	liveViewers = make(map[uint]map[*liveViewer]bool)
)

// WebsocketUpgrade gates /ws routes to real upgrade requests.
func WebsocketUpgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// MatchLive holds a viewer connection open and feeds it score events until
// the client goes away. The read loop only exists to notice disconnects.
func MatchLive(conn *websocket.Conn) {
	id, err := strconv.ParseUint(conn.Params("id"), 10, 32)
	if err != nil {
		conn.Close()
		return
	}
	matchID := uint(id)
	viewer := &liveViewer{conn: conn}

	liveMu.Lock()
	if liveViewers[matchID] == nil {
		liveViewers[matchID] = make(map[*liveViewer]bool)
	}
	liveViewers[matchID][viewer] = true
	liveMu.Unlock()

	defer func() {
		liveMu.Lock()
		delete(liveViewers[matchID], viewer)
		if len(liveViewers[matchID]) == 0 {
			delete(liveViewers, matchID)
		}
		liveMu.Unlock()
		conn.Close()
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// broadcastMatchUpdate pushes an event to every viewer of a match.
// Writes that fail are left for the read loop to clean up.
func broadcastMatchUpdate(matchID uint, payload fiber.Map) {
	liveMu.RLock()
	viewers := make([]*liveViewer, 0, len(liveViewers[matchID]))
	for v := range liveViewers[matchID] {
		viewers = append(viewers, v)
	}
	liveMu.RUnlock()

	for _, v := range viewers {
		_ = v.send(payload)
	}
}
