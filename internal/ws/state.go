package ws

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/ASCCJR/matriz5x5/internal/layout"
)

// State broadcasts rendered frames to websocket clients so the matrix can be
// previewed in a browser while (or instead of) driving hardware.
type State struct {
	mu      sync.RWMutex
	Layout  layout.Layout
	FPS     int
	DrvName string

	frameID   uint64
	startTime time.Time
	// One write mutex per connection: the websocket allows a single
	// concurrent writer, and the topology hello can land while a frame
	// broadcast is in flight.
	clients map[*websocket.Conn]*sync.Mutex
}

func NewState(l layout.Layout, fps int, drvName string) *State {
	return &State{
		Layout:    l,
		FPS:       fps,
		DrvName:   drvName,
		startTime: time.Now(),
		clients:   map[*websocket.Conn]*sync.Mutex{},
	}
}

// Publish sends one RGB frame (3 bytes per LED, logical row-major order) to
// every connected client.
func (s *State) Publish(rgb []byte) {
	s.mu.Lock()
	s.frameID++
	id := s.frameID
	buf := append([]byte{}, rgb...)
	s.mu.Unlock()
	s.broadcastFrame(id, buf)
}

func (s *State) HandleFramesWS(w http.ResponseWriter, r *http.Request) {
	up := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	conn, err := up.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	wmu := &sync.Mutex{}
	s.mu.Lock()
	s.clients[conn] = wmu
	s.mu.Unlock()
	s.sendTopology(conn, wmu)

	go func() {
		defer func() {
			s.mu.Lock()
			delete(s.clients, conn)
			s.mu.Unlock()
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (s *State) HandleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	resp := map[string]any{
		"frame_id": s.frameID,
		"uptime_s": time.Since(s.startTime).Seconds(),
		"count":    s.Layout.Count(),
		"fps":      s.FPS,
		"driver":   s.DrvName,
	}
	_ = json.NewEncoder(w).Encode(resp)
}

func (s *State) sendTopology(conn *websocket.Conn, wmu *sync.Mutex) {
	s.mu.RLock()
	top := map[string]any{
		"dim":    map[string]int{"x": s.Layout.Dim.X, "y": s.Layout.Dim.Y},
		"order":  map[string]bool{"xFlipOddRows": s.Layout.Order.XFlipOddRows, "yMirror": s.Layout.Order.YMirror},
		"driver": s.DrvName,
	}
	s.mu.RUnlock()
	b, _ := json.Marshal(top)

	wmu.Lock()
	defer wmu.Unlock()
	_ = conn.WriteMessage(websocket.TextMessage, b)
}

func (s *State) broadcastFrame(id uint64, rgb []byte) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	type frame struct {
		T       int64  `json:"t"`
		FrameID uint64 `json:"frame_id"`
		RGB     []byte `json:"rgb"`
	}
	b, _ := json.Marshal(frame{T: time.Now().UnixNano(), FrameID: id, RGB: rgb})
	for c, wmu := range s.clients {
		wmu.Lock()
		c.SetWriteDeadline(time.Now().Add(200 * time.Millisecond))
		if err := c.WriteMessage(websocket.TextMessage, b); err != nil {
			log.Debug().Err(err).Msg("write frame")
		}
		wmu.Unlock()
	}
}
