package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/zeusync/handarena/internal/core/arena"
	"github.com/zeusync/handarena/internal/core/observability/log"
	"github.com/zeusync/handarena/internal/core/protocol"
)

type viewer struct {
	conn *Connection
	send chan []byte
}

// hub fans encoded frames out to viewers. Frames identical to the previous
// one are skipped.
type hub struct {
	logger log.Log
	best   BestTimes

	mu      sync.Mutex
	viewers map[string]*viewer
	last    []byte
	digest  uint64
	dropped uint64
}

func newHub(logger log.Log, best BestTimes) *hub {
	return &hub{logger: logger, best: best, viewers: make(map[string]*viewer)}
}

func (h *hub) publish(snap arena.Snapshot) {
	best := 0
	if h.best != nil {
		best = h.best.Best()
	}
	frame := protocol.NewFrame(snap, best)
	data, err := protocol.EncodeFrame(&frame)
	if err != nil {
		h.logger.Warn("Frame encoding failed", log.Error(err))
		return
	}
	digest := protocol.Digest(data)

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.last != nil && digest == h.digest {
		return
	}
	h.last, h.digest = data, digest
	for _, v := range h.viewers {
		select {
		case v.send <- data:
		default:
			h.dropped++
		}
	}
}

func (h *hub) add(v *viewer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.viewers[v.conn.ID()] = v
	if h.last != nil {
		v.send <- h.last
	}
}

func (h *hub) remove(v *viewer) {
	h.mu.Lock()
	delete(h.viewers, v.conn.ID())
	h.mu.Unlock()
}

func (h *hub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.viewers)
}

func (h *hub) closeAll(reason string) {
	h.mu.Lock()
	viewers := make([]*viewer, 0, len(h.viewers))
	for _, v := range h.viewers {
		viewers = append(viewers, v)
	}
	h.mu.Unlock()
	for _, v := range viewers {
		_ = v.conn.Close(reason)
	}
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("View upgrade failed", log.Error(err))
		return
	}
	conn := newConnection(ws, s.cfg)
	v := &viewer{conn: conn, send: make(chan []byte, s.cfg.ViewerBuffer)}
	s.hub.add(v)
	logger := s.logger.With(log.String("viewer", conn.ID()))
	logger.Info("Viewer connected", log.String("remote", conn.RemoteAddr().String()))

	// Viewers never send data; the read loop only processes pongs and close.
	readDone := make(chan struct{})
	go func() {
		defer close(readDone)
		for {
			if _, err := conn.Receive(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(s.cfg.PingPeriod)
	defer ping.Stop()
	defer func() {
		s.hub.remove(v)
		_ = conn.Close("bye")
		st := conn.Stats()
		logger.Info("Viewer disconnected",
			log.Uint64("frames", st.MessagesSent),
			log.Uint64("bytes", st.BytesSent),
			log.Duration("uptime", st.Uptime))
	}()

	for {
		select {
		case <-readDone:
			return
		case <-r.Context().Done():
			return
		case data := <-v.send:
			if err := conn.Send(data); err != nil {
				logger.Debug("Frame write failed", log.Error(err))
				return
			}
		case <-ping.C:
			if err := conn.Ping(); err != nil {
				return
			}
		}
	}
}
