package handlers

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/pocketbase/pocketbase/core"

	"floorestimate/services"
)

type session struct {
	ctrl     *services.Controller
	lastUsed time.Time
}

// Sessions keeps one floor lifecycle controller per open estimation.
// Sessions idle for longer than the configured duration are closed.
type Sessions struct {
	mu          sync.Mutex
	store       *services.PocketBaseStore
	settleDelay time.Duration
	idle        time.Duration
	items       map[string]*session
	now         func() time.Time
	open        func(ctx context.Context, estimationID string) (*services.Controller, error)
}

// NewSessions creates an empty registry backed by app.
func NewSessions(app core.App, settleDelay, idle time.Duration) *Sessions {
	s := &Sessions{
		store:       services.NewPocketBaseStore(app),
		settleDelay: settleDelay,
		idle:        idle,
		items:       make(map[string]*session),
		now:         time.Now,
	}
	s.open = s.openSession
	return s
}

func (s *Sessions) openSession(ctx context.Context, estimationID string) (*services.Controller, error) {
	ctrl, err := s.store.NewEstimationSession(s.settleDelay)
	if err != nil {
		return nil, err
	}
	if err := ctrl.LoadInitial(ctx, estimationID); err != nil {
		ctrl.Close()
		return nil, err
	}
	return ctrl, nil
}

// Get returns the controller for estimationID, loading its caches on first
// use. Loading runs outside the registry lock; when two requests race to
// open the same estimation the first one registered wins.
func (s *Sessions) Get(ctx context.Context, estimationID string) (*services.Controller, error) {
	s.mu.Lock()
	s.evictIdleLocked()
	if sess, ok := s.items[estimationID]; ok {
		sess.lastUsed = s.now()
		s.mu.Unlock()
		return sess.ctrl, nil
	}
	s.mu.Unlock()

	ctrl, err := s.open(ctx, estimationID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.items[estimationID]; ok {
		ctrl.Close()
		sess.lastUsed = s.now()
		return sess.ctrl, nil
	}
	s.items[estimationID] = &session{ctrl: ctrl, lastUsed: s.now()}
	log.Printf("sessions: opened estimation %s", estimationID)
	return ctrl, nil
}

// Drop closes the session of estimationID, discarding unsaved edits.
func (s *Sessions) Drop(estimationID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.items[estimationID]; ok {
		sess.ctrl.Close()
		delete(s.items, estimationID)
	}
}

// Len reports the number of open sessions.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *Sessions) evictIdleLocked() {
	if s.idle <= 0 {
		return
	}
	cutoff := s.now().Add(-s.idle)
	for id, sess := range s.items {
		if sess.lastUsed.Before(cutoff) {
			sess.ctrl.Close()
			delete(s.items, id)
			log.Printf("sessions: closed idle estimation %s", id)
		}
	}
}
