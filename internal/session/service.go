// internal/session/service.go
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/fawad-mazhar/shopfloor/internal/models"
	"github.com/fawad-mazhar/shopfloor/internal/report"
	"github.com/fawad-mazhar/shopfloor/internal/scheduler"
	"github.com/fawad-mazhar/shopfloor/internal/storage/postgres"
	"github.com/fawad-mazhar/shopfloor/internal/worker"
)

// ErrNotFound is returned for unknown session ids
var ErrNotFound = postgres.ErrSessionNotFound

// Store persists sessions durably
type Store interface {
	SaveSession(ctx context.Context, session *models.Session) error
	GetSession(ctx context.Context, id string) (*models.Session, error)
	DeleteSession(ctx context.Context, id string) error
	CountSessions(ctx context.Context) (int, error)
}

// Cache keeps hot sessions close; a miss is (nil, nil)
type Cache interface {
	PutSession(session *models.Session) error
	GetSession(id string) (*models.Session, error)
	DeleteSession(id string) error
}

// Publisher announces schedule changes
type Publisher interface {
	PublishEvent(ctx context.Context, event *models.ScheduleEvent) error
}

// Service owns the live schedule of every session.
// Changes to one session are serialized; different sessions never share state.
type Service struct {
	store     Store
	cache     Cache
	publisher Publisher
	pool      *worker.Pool
	locks     sync.Map // session id -> *sync.Mutex
}

// NewService wires the service. cache and publisher may be nil.
func NewService(store Store, cache Cache, publisher Publisher, pool *worker.Pool) *Service {
	return &Service{
		store:     store,
		cache:     cache,
		publisher: publisher,
		pool:      pool,
	}
}

func (s *Service) lock(id string) func() {
	m, _ := s.locks.LoadOrStore(id, &sync.Mutex{})
	mu := m.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// Create validates and builds a schedule, then stores it as a new session
func (s *Service) Create(ctx context.Context, jobs []models.JobDefinition, machineCount int) (*models.Session, error) {
	if len(jobs) == 0 {
		log.Printf("Warning: %v, creating session with an empty schedule", scheduler.ErrEmptyInput)
	}

	schedule, err := scheduler.Build(jobs, machineCount)
	if err != nil {
		return nil, err
	}

	session := models.NewSession(jobs, schedule)
	if err := s.save(ctx, session); err != nil {
		return nil, err
	}

	s.publish(ctx, models.EventScheduleBuilt, session, nil)
	return session, nil
}

// Get returns a session, trying the cache before the store
func (s *Service) Get(ctx context.Context, id string) (*models.Session, error) {
	if s.cache != nil {
		cached, err := s.cache.GetSession(id)
		if err == nil && cached != nil {
			return cached, nil
		}
		if err != nil {
			log.Printf("Warning: failed to read session %s from cache: %v", id, err)
		}
	}

	session, err := s.store.GetSession(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get session from database: %w", err)
	}

	s.cacheSession(session)
	return session, nil
}

// Metrics analyzes the session's current schedule
func (s *Service) Metrics(ctx context.Context, id string) (models.Metrics, error) {
	session, err := s.Get(ctx, id)
	if err != nil {
		return models.Metrics{}, err
	}
	return scheduler.Analyze(session.Schedule), nil
}

// Move applies a free-form edit to one task. The schedule is not repaired.
func (s *Service) Move(ctx context.Context, id string, taskIndex int, start float64) (*models.Session, error) {
	unlock := s.lock(id)
	defer unlock()

	session, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	moved, err := scheduler.MoveTask(session.Schedule, taskIndex, start)
	if err != nil {
		return nil, err
	}

	session.Schedule = moved
	session.Touch()
	if err := s.save(ctx, session); err != nil {
		return nil, err
	}

	s.publish(ctx, models.EventTaskMoved, session, func(e *models.ScheduleEvent) {
		applied := moved.Tasks[taskIndex].Start
		e.TaskIndex = &taskIndex
		e.Start = &applied
	})
	return session, nil
}

// Rebuild discards all edits and rebuilds the schedule from the session's jobs
func (s *Service) Rebuild(ctx context.Context, id string) (*models.Session, error) {
	unlock := s.lock(id)
	defer unlock()

	session, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	schedule, err := scheduler.Build(session.Jobs, session.Schedule.MachineCount)
	if err != nil {
		return nil, err
	}

	session.Schedule = schedule
	session.Touch()
	if err := s.save(ctx, session); err != nil {
		return nil, err
	}

	s.publish(ctx, models.EventScheduleRebuilt, session, nil)
	return session, nil
}

// Delete removes a session
func (s *Service) Delete(ctx context.Context, id string) error {
	unlock := s.lock(id)
	defer unlock()

	if err := s.store.DeleteSession(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete session: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.DeleteSession(id); err != nil {
			log.Printf("Warning: failed to evict session %s: %v", id, err)
		}
	}
	s.locks.Delete(id)

	s.publish(ctx, models.EventSessionDeleted, &models.Session{ID: id}, nil)
	return nil
}

// Report writes the plain-text report of a session's schedule
func (s *Service) Report(ctx context.Context, id string, w io.Writer) error {
	session, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	return report.Write(w, session.Schedule, scheduler.Analyze(session.Schedule))
}

// Count returns the number of stored sessions
func (s *Service) Count(ctx context.Context) (int, error) {
	return s.store.CountSessions(ctx)
}

// Listen applies move requests until the channel closes or ctx ends.
// Requests are applied in arrival order.
func (s *Service) Listen(ctx context.Context, moves <-chan models.MoveRequest) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case move, ok := <-moves:
			if !ok {
				return nil
			}
			if _, err := s.Move(ctx, move.SessionID, move.TaskIndex, move.Start); err != nil {
				log.Printf("Error applying move to session %s task %d: %v", move.SessionID, move.TaskIndex, err)
				continue
			}
			log.Printf("Applied move to session %s task %d", move.SessionID, move.TaskIndex)
		}
	}
}

func (s *Service) save(ctx context.Context, session *models.Session) error {
	if err := s.store.SaveSession(ctx, session); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	s.cacheSession(session)
	return nil
}

func (s *Service) cacheSession(session *models.Session) {
	if s.cache == nil {
		return
	}
	if err := s.cache.PutSession(session); err != nil {
		log.Printf("Warning: failed to cache session %s: %v", session.ID, err)
	}
}

func (s *Service) publish(ctx context.Context, eventType models.EventType, session *models.Session, decorate func(*models.ScheduleEvent)) {
	if s.publisher == nil {
		return
	}

	event := models.NewScheduleEvent(eventType, session, scheduler.Analyze(session.Schedule))
	if decorate != nil {
		decorate(event)
	}

	pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.publisher.PublishEvent(pubCtx, event); err != nil {
		log.Printf("Failed to publish %s for session %s: %v", eventType, session.ID, err)
	}
}
