package server

import (
	"context"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"github.com/zeusync/handarena/internal/core/observability/log"
	"github.com/zeusync/handarena/internal/core/protocol"
	"github.com/zeusync/handarena/internal/driver"
)

// handleInput accepts the single hand-tracker connection.
func (s *Server) handleInput(w http.ResponseWriter, r *http.Request) {
	if !s.inputBusy.CompareAndSwap(false, true) {
		s.logger.Warn("Rejected second input source", log.String("remote", r.RemoteAddr))
		http.Error(w, ErrInputBusy.Error(), http.StatusConflict)
		return
	}
	defer s.inputBusy.Store(false)

	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("Input upgrade failed", log.Error(err))
		return
	}
	conn := newConnection(ws, s.cfg)
	logger := s.logger.With(log.String("input", conn.ID()))
	logger.Info("Input source connected", log.String("remote", conn.RemoteAddr().String()))

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	stop := context.AfterFunc(ctx, func() { _ = conn.Close("server shutting down") })
	defer stop()
	go s.pingLoop(ctx, conn)

	defer func() {
		_ = conn.Close("bye")
		// The hand is gone with its tracker.
		lostCtx, lostCancel := context.WithTimeout(context.Background(), s.cfg.WriteTimeout)
		defer lostCancel()
		if err := s.engine.HandLost(lostCtx); err != nil && !errors.Is(err, driver.ErrStopped) {
			logger.Warn("Hand loss not delivered", log.Error(err))
		}
		st := conn.Stats()
		logger.Info("Input source disconnected",
			log.Uint64("messages", st.MessagesReceived),
			log.Duration("uptime", st.Uptime))
	}()

	for {
		data, err := conn.Receive()
		if err != nil {
			if !isExpectedClose(err) {
				logger.Debug("Input read ended", log.Error(err))
			}
			return
		}
		if err = s.dispatch(ctx, conn, data); err != nil {
			if errors.Is(err, driver.ErrStopped) || errors.Is(err, ErrConnectionClosed) {
				return
			}
			logger.Debug("Input message rejected", log.Error(err))
		}
	}
}

func (s *Server) dispatch(ctx context.Context, conn *Connection, data []byte) error {
	in, err := protocol.DecodeInput(data)
	if err != nil {
		return s.replyError(conn, err)
	}
	switch in.Type {
	case protocol.TypeSample:
		err = s.engine.Sample(in.Sample.X, in.Sample.Y, in.Gesture)
		if errors.Is(err, driver.ErrInboxFull) {
			// Stale samples are worthless; the next one supersedes this.
			return nil
		}
		return err
	case protocol.TypeHandLost:
		return s.engine.HandLost(ctx)
	case protocol.TypeControl:
		action, _ := driver.ParseAction(in.Control.Action)
		state, err := s.engine.Control(ctx, action, in.Control.Speed)
		if err != nil {
			return err
		}
		reply, err := protocol.Encode(protocol.TypeAck, protocol.Ack{Action: in.Control.Action, State: state.String()})
		if err != nil {
			return err
		}
		return conn.SendText(reply)
	}
	return nil
}

func (s *Server) replyError(conn *Connection, cause error) error {
	reply, err := protocol.Encode(protocol.TypeError, protocol.ErrorMessage{Message: cause.Error()})
	if err != nil {
		return err
	}
	if err = conn.SendText(reply); err != nil {
		return err
	}
	return cause
}

func (s *Server) pingLoop(ctx context.Context, conn *Connection) {
	t := time.NewTicker(s.cfg.PingPeriod)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if err := conn.Ping(); err != nil {
				return
			}
		}
	}
}
