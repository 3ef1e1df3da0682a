package hyperliquid

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"time"

	"CorrNet/internal/domain/models"
	drepo "CorrNet/internal/domain/repository"

	"github.com/gorilla/websocket"
)

// Stream implements a CandleStream backed by the Hyperliquid WebSocket.
type Stream struct {
	websocketURL   string
	symbols        []string
	interval       string
	reconnectDelay time.Duration
	pingInterval   time.Duration

	conn        *websocket.Conn
	connected   bool
	pingStarted bool
}

// NewStream creates a new Hyperliquid CandleStream.
func NewStream(websocketURL string, symbols []string, interval string, reconnectDelay, pingInterval time.Duration) drepo.CandleStream {
	return &Stream{
		websocketURL:   websocketURL,
		symbols:        symbols,
		interval:       interval,
		reconnectDelay: reconnectDelay,
		pingInterval:   pingInterval,
	}
}

// Connect establishes the WebSocket connection.
func (s *Stream) Connect(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.websocketURL, nil)
	if err != nil {
		return fmt.Errorf("hyperliquid connect: %w", err)
	}
	s.conn = conn
	s.connected = true
	log.Printf("hyperliquid: connected")
	return nil
}

// Subscribe subscribes to candle updates for configured symbols.
func (s *Stream) Subscribe(ctx context.Context) error {
	if s.conn == nil || !s.connected {
		return fmt.Errorf("hyperliquid not connected")
	}
	for _, sym := range s.symbols {
		msg := map[string]any{
			"method": "subscribe",
			"subscription": map[string]string{
				"type":     "candle",
				"coin":     sym,
				"interval": s.interval,
			},
		}
		if err := s.conn.WriteJSON(msg); err != nil {
			return fmt.Errorf("subscribe %s: %w", sym, err)
		}
		log.Printf("hyperliquid: subscribed %s %s", sym, s.interval)
	}
	return nil
}

type wsCandle struct {
	T int64  `json:"t"` // open time, ms
	S string `json:"s"` // coin
	O string `json:"o"`
	C string `json:"c"`
	H string `json:"h"`
	L string `json:"l"`
	V string `json:"v"`
	I string `json:"i"` // interval
}

type wsMessage struct {
	Channel string          `json:"channel"`
	Data    json.RawMessage `json:"data"`
}

// Read streams Candle events and errors.
func (s *Stream) Read(ctx context.Context) (<-chan *models.Candle, <-chan error) {
	candles := make(chan *models.Candle, 1024)
	errs := make(chan error, 1)

	// ping loop; Read is called again after every reconnect, so start it once
	if !s.pingStarted {
		s.pingStarted = true
		go func() {
			ticker := time.NewTicker(s.pingInterval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					if s.conn != nil {
						_ = s.conn.WriteJSON(map[string]string{"method": "ping"})
					}
				}
			}
		}()
	}

	// read loop
	go func() {
		defer close(candles)
		defer close(errs)
		for {
			select {
			case <-ctx.Done():
				return
			default:
				if s.conn == nil {
					errs <- fmt.Errorf("hyperliquid conn nil")
					return
				}
				_, b, err := s.conn.ReadMessage()
				if err != nil {
					errs <- fmt.Errorf("hyperliquid read: %w", err)
					return
				}
				var m wsMessage
				if err := json.Unmarshal(b, &m); err != nil {
					// ignore non-JSON frames
					continue
				}
				if m.Channel != "candle" {
					continue
				}
				var wc wsCandle
				if err := json.Unmarshal(m.Data, &wc); err != nil {
					continue
				}
				candle := parseCandle(wc)
				if candle == nil {
					continue
				}
				select {
				case candles <- candle:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return candles, errs
}

func parseCandle(wc wsCandle) *models.Candle {
	open, err1 := strconv.ParseFloat(wc.O, 64)
	high, err2 := strconv.ParseFloat(wc.H, 64)
	low, err3 := strconv.ParseFloat(wc.L, 64)
	closep, err4 := strconv.ParseFloat(wc.C, 64)
	vol, err5 := strconv.ParseFloat(wc.V, 64)
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil || err5 != nil {
		return nil
	}
	return &models.Candle{
		Symbol:    wc.S,
		Interval:  wc.I,
		Timestamp: wc.T / 1000,
		Open:      open,
		High:      high,
		Low:       low,
		Close:     closep,
		Volume:    vol,
	}
}

// Reconnect closes the current connection and dials again after the
// configured delay.
func (s *Stream) Reconnect(ctx context.Context) error {
	s.connected = false
	if s.conn != nil {
		_ = s.conn.Close()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(s.reconnectDelay):
	}
	if err := s.Connect(ctx); err != nil {
		return err
	}
	return s.Subscribe(ctx)
}

// Close closes the WebSocket connection.
func (s *Stream) Close() error {
	s.connected = false
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

// IsConnected returns connection status.
func (s *Stream) IsConnected() bool { return s.connected }
