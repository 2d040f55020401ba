package tracking

import (
	"context"
	"errors"
	"time"

	"github.com/gorilla/websocket"

	"github.com/polkiloo/foodbridge/internal/domain/model"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 30 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// Update is the JSON frame sent to tracking clients.
type Update struct {
	DeliveryID  int64      `json:"delivery_id"`
	OrderID     int64      `json:"order_id"`
	Status      string     `json:"status"`
	LiveLat     *float64   `json:"live_lat,omitempty"`
	LiveLng     *float64   `json:"live_lng,omitempty"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// NewUpdate converts a delivery snapshot into a frame.
func NewUpdate(d model.Delivery) Update {
	return Update{
		DeliveryID:  d.ID,
		OrderID:     d.OrderID,
		Status:      string(d.Status),
		LiveLat:     d.LiveLat,
		LiveLng:     d.LiveLng,
		DeliveredAt: d.DeliveredAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

// ErrSubscriptionClosed is returned when the hub shuts the feed down.
var ErrSubscriptionClosed = errors.New("tracking subscription closed")

// Stream writes the initial snapshot and every update to conn until the client leaves,
// the delivery completes or ctx ends. Client frames are read only to notice the close.
func Stream(ctx context.Context, conn *websocket.Conn, initial *model.Delivery, updates <-chan model.Delivery) error {
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	if initial != nil {
		if err := write(conn, *initial); err != nil {
			return err
		}
		if initial.Status == model.DeliveryStatusDelivered {
			return closeNormally(conn)
		}
	}

	for {
		select {
		case <-ctx.Done():
			_ = closeNormally(conn)
			return ctx.Err()
		case <-gone:
			return nil
		case d, ok := <-updates:
			if !ok {
				_ = closeNormally(conn)
				return ErrSubscriptionClosed
			}
			if err := write(conn, d); err != nil {
				return err
			}
			if d.Status == model.DeliveryStatusDelivered {
				return closeNormally(conn)
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return err
			}
		}
	}
}

func write(conn *websocket.Conn, d model.Delivery) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return conn.WriteJSON(NewUpdate(d))
}

func closeNormally(conn *websocket.Conn) error {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	err := conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
	if errors.Is(err, websocket.ErrCloseSent) {
		return nil
	}
	return err
}
