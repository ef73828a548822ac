package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/followbot/gofollow/pkg/logger"
)

const (
	activityWSURL = "wss://ws-live-data.polymarket.com/"

	activityReconnectDelay    = 2 * time.Second
	activityMaxReconnectDelay = 30 * time.Second
	activityPingInterval      = 30 * time.Second
	// Trades can be minutes apart on quiet accounts; allow long idle reads.
	activityReadTimeout = 90 * time.Second
)

// activityMessage is the WebSocket envelope around an ActivityTrade.
type activityMessage struct {
	ConnectionID string        `json:"connection_id"`
	Topic        string        `json:"topic"`
	Type         string        `json:"type"`
	Timestamp    int64         `json:"timestamp"`
	Payload      ActivityTrade `json:"payload"`
}

// ActivityHandler is called for every trade notification on the stream.
type ActivityHandler func(trade ActivityTrade)

// ActivityStream maintains a subscription to the activity/trades topic of
// ws-live-data.polymarket.com. It reconnects automatically and re-issues
// the subscription on every reconnect; missed notifications during downtime
// are not replayed.
type ActivityStream struct {
	conn   *websocket.Conn
	connMu sync.Mutex

	handler ActivityHandler
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}

	reconnectAttempts int
	// Unix nanos of the last pong; written on the read goroutine,
	// checked by pingLoop.
	lastPong atomic.Int64

	log *logrus.Entry
}

// NewActivityStream creates a stream that feeds trade notifications to the
// handler.
func NewActivityStream(handler ActivityHandler) *ActivityStream {
	return &ActivityStream{
		handler: handler,
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
		log:     logger.WithField("component", "activity-ws"),
	}
}

// Start connects and begins dispatching notifications.
func (s *ActivityStream) Start(ctx context.Context) error {
	if s.running {
		return fmt.Errorf("activity stream already running")
	}

	if err := s.connect(); err != nil {
		return fmt.Errorf("initial connection failed: %w", err)
	}
	if err := s.subscribe(); err != nil {
		return fmt.Errorf("initial subscription failed: %w", err)
	}

	s.running = true
	go s.readLoop(ctx)
	go s.pingLoop(ctx)

	s.log.Infof("connected to %s", activityWSURL)
	return nil
}

// Stop closes the connection and waits for the read loop to exit.
func (s *ActivityStream) Stop() {
	if !s.running {
		return
	}
	s.running = false
	close(s.stopCh)

	s.connMu.Lock()
	if s.conn != nil {
		s.conn.Close()
	}
	s.connMu.Unlock()

	select {
	case <-s.doneCh:
	case <-time.After(5 * time.Second):
		s.log.Warn("shutdown timeout")
	}
}

func (s *ActivityStream) connect() error {
	s.connMu.Lock()
	defer s.connMu.Unlock()

	if s.conn != nil {
		s.conn.Close()
	}

	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}

	// Required Origin header.
	headers := http.Header{}
	headers.Set("Origin", "https://polymarket.com")

	conn, _, err := dialer.Dial(activityWSURL, headers)
	if err != nil {
		return fmt.Errorf("dial failed: %w", err)
	}

	s.conn = conn
	s.touchPong()
	s.reconnectAttempts = 0

	conn.SetPongHandler(func(string) error {
		s.touchPong()
		return nil
	})
	return nil
}

func (s *ActivityStream) touchPong() {
	s.lastPong.Store(time.Now().UnixNano())
}

func (s *ActivityStream) sincePong() time.Duration {
	return time.Since(time.Unix(0, s.lastPong.Load()))
}

// subscribe requests all trade activity; addressing is filtered locally by
// wallet in the consumer.
func (s *ActivityStream) subscribe() error {
	s.connMu.Lock()
	defer s.connMu.Unlock()

	if s.conn == nil {
		return fmt.Errorf("not connected")
	}

	msg := map[string]interface{}{
		"action": "subscribe",
		"subscriptions": []map[string]interface{}{
			{"topic": "activity", "type": "trades"},
		},
	}
	if err := s.conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("send subscription failed: %w", err)
	}
	return nil
}

func (s *ActivityStream) readLoop(ctx context.Context) {
	defer close(s.doneCh)

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		default:
		}

		s.connMu.Lock()
		conn := s.conn
		s.connMu.Unlock()

		if conn == nil {
			s.reconnect(ctx)
			continue
		}

		conn.SetReadDeadline(time.Now().Add(activityReadTimeout))
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.Info("connection closed normally")
				return
			}
			if s.reconnectAttempts == 0 {
				s.log.Info("idle timeout, reconnecting")
			}
			s.reconnect(ctx)
			continue
		}

		s.handleMessage(message)
	}
}

func (s *ActivityStream) pingLoop(ctx context.Context) {
	ticker := time.NewTicker(activityPingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.connMu.Lock()
			conn := s.conn
			s.connMu.Unlock()
			if conn == nil {
				continue
			}
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.log.Warnf("ping failed: %v", err)
			}
			if s.sincePong() > activityReadTimeout {
				s.log.Warnf("pong timeout (no response in %v), reconnecting", activityReadTimeout)
				s.reconnect(ctx)
			}
		}
	}
}

func (s *ActivityStream) reconnect(ctx context.Context) {
	s.reconnectAttempts++
	delay := activityReconnectDelay * time.Duration(s.reconnectAttempts)
	if delay > activityMaxReconnectDelay {
		delay = activityMaxReconnectDelay
	}

	s.log.Infof("reconnecting in %v (attempt %d)", delay, s.reconnectAttempts)

	select {
	case <-ctx.Done():
		return
	case <-s.stopCh:
		return
	case <-time.After(delay):
	}

	if err := s.connect(); err != nil {
		s.log.Warnf("reconnection failed: %v", err)
		return
	}
	if err := s.subscribe(); err != nil {
		s.log.Warnf("resubscription failed: %v", err)
	}
}

func (s *ActivityStream) handleMessage(data []byte) {
	var msg activityMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		// Ignore non-JSON frames such as connection confirmations.
		return
	}
	if msg.Topic != "activity" || msg.Type != "trades" {
		return
	}
	if s.handler != nil {
		s.handler(msg.Payload)
	}
}
