package queue

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/fawad-mazhar/shopfloor/internal/config"
	"github.com/fawad-mazhar/shopfloor/internal/models"
	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
)

func runServer(t *testing.T) string {
	t.Helper()

	ns, err := server.NewServer(&server.Options{
		Host:   "127.0.0.1",
		Port:   server.RANDOM_PORT,
		NoLog:  true,
		NoSigs: true,
	})
	if err != nil {
		t.Fatalf("create nats server: %v", err)
	}
	go ns.Start()
	if !ns.ReadyForConnections(5 * time.Second) {
		t.Fatal("nats server not ready")
	}
	t.Cleanup(ns.Shutdown)

	return ns.ClientURL()
}

func testConfig(url string) config.NATSConfig {
	return config.NATSConfig{
		URL:           url,
		EventsSubject: config.DefaultEventsSubject,
		MovesSubject:  config.DefaultMovesSubject,
		QueueGroup:    config.DefaultQueueGroup,
	}
}

func connect(t *testing.T, url string) *nats.Conn {
	t.Helper()
	nc, err := nats.Connect(url)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(nc.Close)
	return nc
}

func newTestNATS(t *testing.T, url string) *NATS {
	t.Helper()
	n, err := NewNATS(testConfig(url))
	if err != nil {
		t.Fatalf("new nats: %v", err)
	}
	t.Cleanup(func() { n.Close() })
	return n
}

func receive(t *testing.T, moves <-chan models.MoveRequest) models.MoveRequest {
	t.Helper()
	select {
	case move, ok := <-moves:
		if !ok {
			t.Fatal("moves channel closed early")
		}
		return move
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a move")
	}
	return models.MoveRequest{}
}

func TestPublishEvent(t *testing.T) {
	url := runServer(t)
	n := newTestNATS(t, url)

	nc := connect(t, url)
	sub, err := nc.SubscribeSync(config.DefaultEventsSubject + ".>")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	nc.Flush()

	session := models.NewSession(nil, models.Schedule{MachineCount: 2})
	event := models.NewScheduleEvent(models.EventScheduleBuilt, session, models.Metrics{Makespan: 12})
	if err := n.PublishEvent(context.Background(), event); err != nil {
		t.Fatalf("publish: %v", err)
	}

	msg, err := sub.NextMsg(5 * time.Second)
	if err != nil {
		t.Fatalf("next message: %v", err)
	}

	if msg.Subject != "shopfloor.events.schedule_built" {
		t.Errorf("expected subject shopfloor.events.schedule_built, got %s", msg.Subject)
	}
	if got := msg.Header.Get("Session-Id"); got != session.ID {
		t.Errorf("expected Session-Id %s, got %s", session.ID, got)
	}
	if got := msg.Header.Get("Content-Type"); got != "application/json" {
		t.Errorf("expected application/json, got %s", got)
	}

	var decoded models.ScheduleEvent
	if err := json.Unmarshal(msg.Data, &decoded); err != nil {
		t.Fatalf("decode event: %v", err)
	}
	if decoded.ID != event.ID || decoded.Makespan != 12 || decoded.Version != 1 {
		t.Errorf("unexpected event %+v", decoded)
	}
}

func TestPublishEvent_CanceledContext(t *testing.T) {
	n := newTestNATS(t, runServer(t))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	event := models.NewScheduleEvent(models.EventTaskMoved, &models.Session{ID: "abc"}, models.Metrics{})
	if err := n.PublishEvent(ctx, event); err == nil {
		t.Error("expected error for a canceled context")
	}
}

func TestConsumeMoves_DropsMalformedAndClosesOnCancel(t *testing.T) {
	url := runServer(t)
	n := newTestNATS(t, url)
	pub := connect(t, url)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	moves, err := n.ConsumeMoves(ctx)
	if err != nil {
		t.Fatalf("consume: %v", err)
	}

	pub.Publish(config.DefaultMovesSubject, []byte(`not json`))
	pub.Publish(config.DefaultMovesSubject, []byte(`{"sessionId":"abc","taskIndex":"1","start":2}`))
	pub.Publish(config.DefaultMovesSubject, []byte(`{"sessionId":"abc","taskIndex":2,"start":6.5}`))
	pub.Flush()

	want := models.MoveRequest{SessionID: "abc", TaskIndex: 2, Start: 6.5}
	if got := receive(t, moves); got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}

	cancel()

	select {
	case move, ok := <-moves:
		if ok {
			t.Errorf("expected closed channel, got %+v", move)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for the moves channel to close")
	}

	// late messages after close must not panic or be delivered
	pub.Publish(config.DefaultMovesSubject, []byte(`{"sessionId":"abc","taskIndex":3,"start":1}`))
	pub.Flush()
}

func TestConsumeMoves_QueueGroupDeliversOnce(t *testing.T) {
	url := runServer(t)
	first := newTestNATS(t, url)
	second := newTestNATS(t, url)
	pub := connect(t, url)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := first.ConsumeMoves(ctx)
	if err != nil {
		t.Fatalf("consume: %v", err)
	}
	b, err := second.ConsumeMoves(ctx)
	if err != nil {
		t.Fatalf("consume: %v", err)
	}

	const total = 20
	for i := 0; i < total; i++ {
		data, _ := json.Marshal(models.MoveRequest{SessionID: "abc", TaskIndex: i, Start: 1})
		pub.Publish(config.DefaultMovesSubject, data)
	}
	pub.Flush()

	seen := make(map[int]int)
	deadline := time.After(5 * time.Second)
	for len(seen) < total {
		select {
		case move := <-a:
			seen[move.TaskIndex]++
		case move := <-b:
			seen[move.TaskIndex]++
		case <-deadline:
			t.Fatalf("timed out with %d of %d moves", len(seen), total)
		}
	}

	// give a duplicate delivery the chance to show up
	select {
	case move := <-a:
		seen[move.TaskIndex]++
	case move := <-b:
		seen[move.TaskIndex]++
	case <-time.After(200 * time.Millisecond):
	}

	for i := 0; i < total; i++ {
		if seen[i] != 1 {
			t.Errorf("expected move %d delivered once, got %d", i, seen[i])
		}
	}
}
