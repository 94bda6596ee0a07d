// Package game holds the application's state store and its error channel.
//
// A Game is constructed once at startup and injected into every component
// that reads or writes chapter state.
package game

import (
	"log"
	"sync"

	"github.com/mrlokans/bookar/internal/entities"
	"github.com/mrlokans/bookar/internal/store"
)

// Property names of State, for store.SubscribeProperty.
const (
	PropertyCurrentChapter = "CurrentChapter"
	PropertyChapters       = "Chapters"
)

// ErrorListener receives notifications pushed on the error channel.
type ErrorListener func(info entities.ErrorInfo)

type errorEntry struct {
	fn ErrorListener
}

type Game struct {
	Store *store.Store[State]

	mu             sync.RWMutex
	errorListeners []*errorEntry
}

func New() *Game {
	return &Game{
		Store: store.New(State{Chapters: map[string]*entities.Chapter{}}),
	}
}

// State is a shortcut for g.Store.State().
func (g *Game) State() State {
	return g.Store.State()
}

// OnError registers a listener on the error channel. The returned function
// removes it.
func (g *Game) OnError(fn ErrorListener) func() {
	entry := &errorEntry{fn: fn}

	g.mu.Lock()
	g.errorListeners = append(g.errorListeners, entry)
	g.mu.Unlock()

	return func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		for i, l := range g.errorListeners {
			if l == entry {
				g.errorListeners = append(g.errorListeners[:i:i], g.errorListeners[i+1:]...)
				return
			}
		}
	}
}

// NotifyError pushes info to every error listener in registration order.
func (g *Game) NotifyError(info entities.ErrorInfo) {
	log.Printf("[GAME] Error %s from %s: %s", info.Code, info.Source, info.Msg)

	g.mu.RLock()
	listeners := append([]*errorEntry(nil), g.errorListeners...)
	g.mu.RUnlock()

	for _, l := range listeners {
		func() {
			defer func() {
				if r := recover(); r != nil {
					log.Printf("[GAME] Error listener panicked: %v", r)
				}
			}()
			l.fn(info)
		}()
	}
}
