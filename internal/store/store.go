// Package store holds one immutable state value and publishes fine-grained
// change notifications.
//
// # Updates
//
// Update hands the recipe a shallow copy of the current state. The recipe
// replaces top-level fields; nested values must be replaced rather than mutated
// (use copy-on-write builders) so that the previous state stays intact and
// unchanged branches are shared between the old and the new value.
//
//	s := store.New(State{})
//	s.Update(func(draft *State) {
//	    draft.CurrentChapter = chapter.WithStatus(entities.StatusLoading, nil)
//	})
//
// # Notifications
//
// After every update the store compares each exported field of the old and
// new state with go-cmp, falling back to reference equality when a deep
// comparison is not possible. Property listeners of every changed field run
// first, then whole-state listeners, in subscription order. A panicking
// listener is recovered and logged; the remaining listeners still run.
//
// Notifications are delivered in commit order. Committed changes are queued
// under the write lock and drained by one goroutine at a time, outside the
// lock. An Update made while no delivery is in progress notifies
// synchronously; one made while another goroutine (or a listener) is
// delivering returns after queueing, and its notification follows the ones
// committed before it.
package store

import (
	"errors"
	"fmt"
	"log"
	"reflect"
	"sync"

	"github.com/google/go-cmp/cmp"
)

// ErrUnknownProperty is returned when subscribing to or setting a field the
// state type does not have.
var ErrUnknownProperty = errors.New("unknown state property")

// Listener receives the full new state after any change.
type Listener[T any] func(state T)

// PropertyListener receives the new and previous value of one property.
type PropertyListener func(value, prev any)

type listenerEntry[T any] struct {
	fn Listener[T]
}

type propertyEntry struct {
	fn PropertyListener
}

type change[T any] struct {
	prev, next T
	changed    []string
}

// Store is a single-writer container for an immutable state value.
type Store[T any] struct {
	mu    sync.Mutex
	state T

	// pending holds committed changes awaiting delivery; draining is set
	// while a goroutine is delivering them. Both are guarded by mu.
	pending  []change[T]
	draining bool

	typ    reflect.Type
	fields map[string]int
	order  []string

	listenersMu       sync.RWMutex
	listeners         []*listenerEntry[T]
	propertyListeners map[string][]*propertyEntry
}

// New creates a store holding initial. T must be a struct type; its exported
// fields are the store's properties.
func New[T any](initial T) *Store[T] {
	typ := reflect.TypeOf(initial)
	if typ == nil || typ.Kind() != reflect.Struct {
		panic(fmt.Sprintf("store: state must be a struct, got %v", typ))
	}

	s := &Store[T]{
		state:             initial,
		typ:               typ,
		fields:            make(map[string]int),
		propertyListeners: make(map[string][]*propertyEntry),
	}
	for i := 0; i < typ.NumField(); i++ {
		f := typ.Field(i)
		if !f.IsExported() {
			continue
		}
		s.fields[f.Name] = i
		s.order = append(s.order, f.Name)
	}
	return s
}

// State returns the current state value.
func (s *Store[T]) State() T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Properties lists the state's property names in declaration order.
func (s *Store[T]) Properties() []string {
	return append([]string(nil), s.order...)
}

// Update applies recipe to a draft of the current state, installs the result
// and notifies listeners of the properties that changed. It returns the names
// of the changed properties.
func (s *Store[T]) Update(recipe func(draft *T)) []string {
	changed, deliver := s.apply(recipe)
	if deliver {
		s.drain()
	}
	return changed
}

// Set assigns the given top-level properties in a single update.
func (s *Store[T]) Set(values map[string]any) error {
	for name, value := range values {
		idx, ok := s.fields[name]
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownProperty, name)
		}
		fieldType := s.typ.Field(idx).Type
		if value != nil && !reflect.TypeOf(value).AssignableTo(fieldType) {
			return fmt.Errorf("property %s: cannot assign %T to %s", name, value, fieldType)
		}
	}

	s.Update(func(draft *T) {
		v := reflect.ValueOf(draft).Elem()
		for name, value := range values {
			field := v.Field(s.fields[name])
			if value == nil {
				field.Set(reflect.Zero(field.Type()))
				continue
			}
			field.Set(reflect.ValueOf(value))
		}
	})
	return nil
}

// Subscribe registers a listener for any change. The returned function
// removes it.
func (s *Store[T]) Subscribe(fn Listener[T]) func() {
	entry := &listenerEntry[T]{fn: fn}

	s.listenersMu.Lock()
	s.listeners = append(s.listeners, entry)
	s.listenersMu.Unlock()

	return func() {
		s.listenersMu.Lock()
		defer s.listenersMu.Unlock()
		for i, l := range s.listeners {
			if l == entry {
				s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

// SubscribeProperty registers a listener invoked only when the named property
// changes. The returned function removes it.
func (s *Store[T]) SubscribeProperty(property string, fn PropertyListener) (func(), error) {
	if _, ok := s.fields[property]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProperty, property)
	}

	entry := &propertyEntry{fn: fn}

	s.listenersMu.Lock()
	s.propertyListeners[property] = append(s.propertyListeners[property], entry)
	s.listenersMu.Unlock()

	return func() {
		s.listenersMu.Lock()
		defer s.listenersMu.Unlock()
		entries := s.propertyListeners[property]
		for i, l := range entries {
			if l == entry {
				s.propertyListeners[property] = append(entries[:i:i], entries[i+1:]...)
				return
			}
		}
	}, nil
}

// SubscribeTo is a typed wrapper around SubscribeProperty.
func SubscribeTo[T, V any](s *Store[T], property string, fn func(value, prev V)) (func(), error) {
	return s.SubscribeProperty(property, func(value, prev any) {
		v, _ := value.(V)
		p, _ := prev.(V)
		fn(v, p)
	})
}

// apply commits the recipe and queues the resulting change. deliver reports
// whether the caller became the goroutine responsible for draining the queue.
func (s *Store[T]) apply(recipe func(draft *T)) (changed []string, deliver bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.state
	next := prev
	recipe(&next)
	s.state = next

	changed = s.diff(prev, next)
	if len(changed) == 0 {
		return nil, false
	}
	s.pending = append(s.pending, change[T]{prev: prev, next: next, changed: changed})
	if s.draining {
		return changed, false
	}
	s.draining = true
	return changed, true
}

// drain delivers queued changes in commit order until the queue is empty.
func (s *Store[T]) drain() {
	for {
		s.mu.Lock()
		if len(s.pending) == 0 {
			s.pending = nil
			s.draining = false
			s.mu.Unlock()
			return
		}
		c := s.pending[0]
		s.pending = s.pending[1:]
		s.mu.Unlock()

		s.notify(c.prev, c.next, c.changed)
	}
}

func (s *Store[T]) diff(prev, next T) []string {
	pv := reflect.ValueOf(prev)
	nv := reflect.ValueOf(next)

	var changed []string
	for _, name := range s.order {
		idx := s.fields[name]
		if !equal(pv.Field(idx).Interface(), nv.Field(idx).Interface()) {
			changed = append(changed, name)
		}
	}
	return changed
}

func (s *Store[T]) notify(prev, next T, changed []string) {
	s.listenersMu.RLock()
	listeners := append([]*listenerEntry[T](nil), s.listeners...)
	props := make(map[string][]*propertyEntry, len(changed))
	for _, name := range changed {
		props[name] = append([]*propertyEntry(nil), s.propertyListeners[name]...)
	}
	s.listenersMu.RUnlock()

	pv := reflect.ValueOf(prev)
	nv := reflect.ValueOf(next)
	for _, name := range changed {
		idx := s.fields[name]
		value := nv.Field(idx).Interface()
		old := pv.Field(idx).Interface()
		for _, l := range props[name] {
			safeCall(name, func() { l.fn(value, old) })
		}
	}

	for _, l := range listeners {
		safeCall("state", func() { l.fn(next) })
	}
}

func safeCall(name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[STORE] listener for %s panicked: %v", name, r)
		}
	}()
	fn()
}

// equal compares two property values deeply. When cmp cannot compare them
// (unexported fields, functions) it falls back to reference equality.
func equal(a, b any) (eq bool) {
	defer func() {
		if r := recover(); r != nil {
			eq = sameReference(a, b)
		}
	}()
	return cmp.Equal(a, b)
}

func sameReference(a, b any) (same bool) {
	defer func() {
		if recover() != nil {
			same = false
		}
	}()

	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if !va.IsValid() || !vb.IsValid() {
		return va.IsValid() == vb.IsValid()
	}
	if va.Type() != vb.Type() {
		return false
	}
	switch va.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return va.Pointer() == vb.Pointer()
	case reflect.Slice:
		return va.Pointer() == vb.Pointer() && va.Len() == vb.Len()
	}
	if va.Type().Comparable() {
		return a == b
	}
	return false
}
