package reactive

import (
	"slices"
	"sync"

	"github.com/code-100-precent/LingRx/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ListenerID identifies one listener registration on an EventTarget
type ListenerID = uuid.UUID

// EventTarget is anything that can deliver named events to callbacks
type EventTarget[E any] interface {
	AddEventListener(name string, listener func(E)) ListenerID
	RemoveEventListener(name string, id ListenerID)
}

type eventListener[E any] struct {
	id ListenerID
	fn func(E)
}

// Emitter is an in-process EventTarget. Dispatch calls listeners
// synchronously on the caller's goroutine, in registration order.
type Emitter[E any] struct {
	mu        sync.RWMutex
	listeners map[string][]eventListener[E]
}

func NewEmitter[E any]() *Emitter[E] {
	return &Emitter[E]{listeners: make(map[string][]eventListener[E])}
}

func (e *Emitter[E]) AddEventListener(name string, listener func(E)) ListenerID {
	id := uuid.New()
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listeners[name] = append(e.listeners[name], eventListener[E]{id: id, fn: listener})
	return id
}

func (e *Emitter[E]) RemoveEventListener(name string, id ListenerID) {
	e.mu.Lock()
	defer e.mu.Unlock()
	ls := e.listeners[name]
	for i, l := range ls {
		if l.id == id {
			ls = slices.Delete(slices.Clone(ls), i, i+1)
			break
		}
	}
	if len(ls) == 0 {
		delete(e.listeners, name)
		return
	}
	e.listeners[name] = ls
}

// Dispatch delivers event to every listener of name and returns how many were called
func (e *Emitter[E]) Dispatch(name string, event E) int {
	e.mu.RLock()
	ls := e.listeners[name]
	e.mu.RUnlock()

	if len(ls) == 0 {
		logger.Debug("event dropped, no listeners", zap.String("event", name))
	}
	for _, l := range ls {
		l.fn(event)
	}
	return len(ls)
}

// ListenerCount returns the number of listeners registered for name
func (e *Emitter[E]) ListenerCount(name string) int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.listeners[name])
}

// FromEvent is a hot source of the events named name on target. All
// subscribers of the returned Observable share one listener registration:
// the first subscriber adds it and the last unsubscribe removes it. It
// never completes on its own.
func FromEvent[E any](target EventTarget[E], name string) Observable[E] {
	b := &broadcaster[E]{target: target, name: name}
	return New(b.attach)
}

type broadcastEntry[E any] struct {
	id  uint64
	dst *Subscriber[E]
}

// broadcaster fans one listener out to the current subscribers of a FromEvent source
type broadcaster[E any] struct {
	mu         sync.Mutex
	target     EventTarget[E]
	name       string
	nextID     uint64
	entries    []broadcastEntry[E]
	registered bool
	listener   ListenerID
}

func (b *broadcaster[E]) attach(dst *Subscriber[E]) TeardownFunc {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.entries = append(b.entries, broadcastEntry[E]{id: id, dst: dst})
	register := !b.registered
	b.registered = true
	b.mu.Unlock()

	if register {
		lid := b.target.AddEventListener(b.name, b.emit)
		b.mu.Lock()
		b.listener = lid
		b.mu.Unlock()
	}
	return func() { b.detach(id) }
}

func (b *broadcaster[E]) detach(id uint64) {
	b.mu.Lock()
	b.entries = slices.DeleteFunc(slices.Clone(b.entries), func(e broadcastEntry[E]) bool {
		return e.id == id
	})
	if len(b.entries) > 0 || !b.registered {
		b.mu.Unlock()
		return
	}
	b.registered = false
	lid := b.listener
	b.mu.Unlock()

	b.target.RemoveEventListener(b.name, lid)
}

func (b *broadcaster[E]) emit(event E) {
	b.mu.Lock()
	entries := b.entries
	b.mu.Unlock()
	for _, e := range entries {
		e.dst.Next(event)
	}
}

