// internal/queue/nats.go
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/fawad-mazhar/shopfloor/internal/config"
	"github.com/fawad-mazhar/shopfloor/internal/models"
	"github.com/nats-io/nats.go"
	"github.com/tidwall/gjson"
)

// ErrMalformedMove is returned for edit events that cannot be applied
var ErrMalformedMove = errors.New("malformed move request")

type NATS struct {
	conn   *nats.Conn
	config config.NATSConfig
}

func NewNATS(cfg config.NATSConfig) (*NATS, error) {
	conn, err := nats.Connect(cfg.URL,
		nats.Name("shopfloor"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Printf("NATS disconnected: %v", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Printf("NATS reconnected to %s", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &NATS{
		conn:   conn,
		config: cfg,
	}, nil
}

// EventSubject returns the subject an event type is published on,
// e.g. shopfloor.events.task_moved
func EventSubject(prefix string, eventType models.EventType) string {
	return prefix + "." + strings.ToLower(string(eventType))
}

// PublishEvent publishes a schedule change
func (n *NATS) PublishEvent(ctx context.Context, event *models.ScheduleEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := &nats.Msg{
		Subject: EventSubject(n.config.EventsSubject, event.Type),
		Data:    data,
		Header:  nats.Header{},
	}
	msg.Header.Set("Content-Type", "application/json")
	msg.Header.Set("Session-Id", event.SessionID)

	return n.conn.PublishMsg(msg)
}

// ConsumeMoves subscribes to edit events in the configured queue group.
// Malformed messages are logged and dropped. The channel closes when ctx ends.
func (n *NATS) ConsumeMoves(ctx context.Context) (<-chan models.MoveRequest, error) {
	moves := make(chan models.MoveRequest, 64)

	// guards moves against sends from in-flight handlers after close
	var mu sync.Mutex
	closed := false

	sub, err := n.conn.QueueSubscribe(n.config.MovesSubject, n.config.QueueGroup, func(msg *nats.Msg) {
		move, err := DecodeMove(msg.Data)
		if err != nil {
			log.Printf("Dropping move on %s: %v", msg.Subject, err)
			return
		}

		mu.Lock()
		defer mu.Unlock()
		if closed {
			return
		}
		select {
		case moves <- move:
		case <-ctx.Done():
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", n.config.MovesSubject, err)
	}
	// make sure the server has registered the subscription before returning
	if err := n.conn.Flush(); err != nil {
		sub.Unsubscribe()
		return nil, fmt.Errorf("failed to flush subscription to %s: %w", n.config.MovesSubject, err)
	}

	go func() {
		<-ctx.Done()
		if err := sub.Unsubscribe(); err != nil && !errors.Is(err, nats.ErrConnectionClosed) {
			log.Printf("Failed to unsubscribe from %s: %v", n.config.MovesSubject, err)
		}
		mu.Lock()
		closed = true
		close(moves)
		mu.Unlock()
	}()

	return moves, nil
}

// DecodeMove extracts a move request from a JSON payload
func DecodeMove(data []byte) (models.MoveRequest, error) {
	if !gjson.ValidBytes(data) {
		return models.MoveRequest{}, fmt.Errorf("%w: invalid JSON", ErrMalformedMove)
	}

	fields := gjson.GetManyBytes(data, "sessionId", "taskIndex", "start")
	sessionID, taskIndex, start := fields[0], fields[1], fields[2]

	if sessionID.Type != gjson.String || sessionID.String() == "" {
		return models.MoveRequest{}, fmt.Errorf("%w: sessionId is required", ErrMalformedMove)
	}
	if taskIndex.Type != gjson.Number || taskIndex.Num != float64(taskIndex.Int()) {
		return models.MoveRequest{}, fmt.Errorf("%w: taskIndex must be an integer", ErrMalformedMove)
	}
	if start.Type != gjson.Number {
		return models.MoveRequest{}, fmt.Errorf("%w: start must be a number", ErrMalformedMove)
	}

	return models.MoveRequest{
		SessionID: sessionID.String(),
		TaskIndex: int(taskIndex.Int()),
		Start:     start.Float(),
	}, nil
}

func (n *NATS) Close() error {
	return n.conn.Drain()
}
