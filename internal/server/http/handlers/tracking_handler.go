package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/polkiloo/foodbridge/internal/tracking"
)

// TrackingHandler streams live delivery updates of an order over a websocket.
type TrackingHandler struct {
	orders   OrderFacade
	feed     DeliveryFeed
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewTrackingHandler constructs TrackingHandler.
func NewTrackingHandler(orders OrderFacade, feed DeliveryFeed, logger *slog.Logger) *TrackingHandler {
	return &TrackingHandler{
		orders: orders,
		feed:   feed,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Origin is not checked: the token query parameter authenticates the caller.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		logger: logger,
	}
}

// Track handles GET /api/orders/:id/tracking.
func (h *TrackingHandler) Track(c *gin.Context) {
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}

	// Subscribe before the snapshot so no update falls between the two.
	updates, cancel := h.feed.Subscribe(orderID)
	defer cancel()

	details, err := h.orders.Order(c.Request.Context(), orderID)
	if err != nil {
		writeError(c, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("tracking upgrade failed", slog.Int64("order_id", orderID), slog.String("error", err.Error()))
		return
	}
	defer conn.Close()

	if err := tracking.Stream(c.Request.Context(), conn, details.Delivery, updates); err != nil {
		h.logger.Info("tracking stream ended", slog.Int64("order_id", orderID), slog.String("error", err.Error()))
	}
}
