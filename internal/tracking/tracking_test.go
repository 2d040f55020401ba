package tracking

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/polkiloo/foodbridge/internal/domain/model"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestHubPublishesToOrderWatchers(t *testing.T) {
	hub := NewHub(testLogger())
	first, cancelFirst := hub.Subscribe(5)
	second, cancelSecond := hub.Subscribe(5)
	other, cancelOther := hub.Subscribe(6)
	defer cancelOther()

	if got := hub.Subscribers(5); got != 2 {
		t.Fatalf("expected 2 watchers, got %d", got)
	}

	hub.Publish(5, model.Delivery{ID: 3, OrderID: 5, Status: model.DeliveryStatusInTransit})
	for _, ch := range []<-chan model.Delivery{first, second} {
		select {
		case d := <-ch:
			if d.Status != model.DeliveryStatusInTransit {
				t.Fatalf("unexpected delivery %+v", d)
			}
		default:
			t.Fatal("expected update")
		}
	}
	select {
	case d := <-other:
		t.Fatalf("unexpected update for other order %+v", d)
	default:
	}

	cancelFirst()
	cancelFirst()
	if _, ok := <-first; ok {
		t.Fatal("expected closed channel after cancel")
	}
	cancelSecond()
	if got := hub.Subscribers(5); got != 0 {
		t.Fatalf("expected no watchers, got %d", got)
	}
}

func TestHubDropsWhenLagging(t *testing.T) {
	hub := NewHub(testLogger())
	ch, cancel := hub.Subscribe(1)
	defer cancel()

	for i := 0; i < subscriberBuffer+3; i++ {
		hub.Publish(1, model.Delivery{ID: int64(i)})
	}
	if len(ch) != subscriberBuffer {
		t.Fatalf("expected full buffer of %d, got %d", subscriberBuffer, len(ch))
	}
}

func TestHubClose(t *testing.T) {
	hub := NewHub(testLogger())
	ch, cancel := hub.Subscribe(1)
	hub.Close()
	hub.Close()
	if _, ok := <-ch; ok {
		t.Fatal("expected closed channel")
	}
	cancel()

	late, lateCancel := hub.Subscribe(1)
	defer lateCancel()
	if _, ok := <-late; ok {
		t.Fatal("expected closed channel after hub close")
	}
	hub.Publish(1, model.Delivery{})
}

func TestModuleClosesHubOnStop(t *testing.T) {
	var hub *Hub
	app := fxtest.New(t, fx.Supply(testLogger()), Module, fx.Populate(&hub))
	app.RequireStart()
	ch, _ := hub.Subscribe(1)
	app.RequireStop()
	if _, ok := <-ch; ok {
		t.Fatal("expected hub closed on stop")
	}
}

func streamServer(t *testing.T, initial *model.Delivery, updates <-chan model.Delivery, result chan<- error) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			result <- err
			return
		}
		defer conn.Close()
		result <- Stream(r.Context(), conn, initial, updates)
	}))
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return conn
}

func TestStreamSendsUpdatesUntilDelivered(t *testing.T) {
	lat, lng := 28.61, 77.2
	updates := make(chan model.Delivery, 2)
	result := make(chan error, 1)
	initial := &model.Delivery{ID: 3, OrderID: 5, Status: model.DeliveryStatusPickedUp}
	srv := streamServer(t, initial, updates, result)
	defer srv.Close()

	conn := dial(t, srv)
	defer conn.Close()

	var first Update
	if err := conn.ReadJSON(&first); err != nil {
		t.Fatalf("read initial: %v", err)
	}
	if first.Status != "PICKED_UP" || first.DeliveryID != 3 {
		t.Fatalf("unexpected initial frame %+v", first)
	}

	updates <- model.Delivery{ID: 3, OrderID: 5, Status: model.DeliveryStatusInTransit, LiveLat: &lat, LiveLng: &lng}
	var moving Update
	if err := conn.ReadJSON(&moving); err != nil {
		t.Fatalf("read update: %v", err)
	}
	if moving.LiveLat == nil || *moving.LiveLat != lat {
		t.Fatalf("expected live position, got %+v", moving)
	}

	updates <- model.Delivery{ID: 3, OrderID: 5, Status: model.DeliveryStatusDelivered}
	var done Update
	if err := conn.ReadJSON(&done); err != nil {
		t.Fatalf("read final: %v", err)
	}
	if done.Status != "DELIVERED" {
		t.Fatalf("unexpected final frame %+v", done)
	}

	_, _, err := conn.ReadMessage()
	if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
		t.Fatalf("expected normal close, got %v", err)
	}
	select {
	case err := <-result:
		if err != nil {
			t.Fatalf("unexpected stream error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("stream did not finish")
	}
}

func TestStreamEndsWhenSubscriptionCloses(t *testing.T) {
	updates := make(chan model.Delivery)
	result := make(chan error, 1)
	srv := streamServer(t, nil, updates, result)
	defer srv.Close()

	conn := dial(t, srv)
	defer conn.Close()
	close(updates)

	select {
	case err := <-result:
		if !errors.Is(err, ErrSubscriptionClosed) {
			t.Fatalf("expected closed subscription, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("stream did not finish")
	}
}

func TestStreamEndsWhenClientLeaves(t *testing.T) {
	updates := make(chan model.Delivery)
	result := make(chan error, 1)
	srv := streamServer(t, nil, updates, result)
	defer srv.Close()

	conn := dial(t, srv)
	_ = conn.Close()

	select {
	case err := <-result:
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("stream did not notice the client leaving")
	}
}

func TestStreamDeliveredInitialClosesImmediately(t *testing.T) {
	result := make(chan error, 1)
	srv := streamServer(t, &model.Delivery{ID: 1, Status: model.DeliveryStatusDelivered}, nil, result)
	defer srv.Close()

	conn := dial(t, srv)
	defer conn.Close()
	var frame Update
	if err := conn.ReadJSON(&frame); err != nil || frame.Status != "DELIVERED" {
		t.Fatalf("unexpected frame %+v err=%v", frame, err)
	}
	select {
	case err := <-result:
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("stream did not finish")
	}
}
