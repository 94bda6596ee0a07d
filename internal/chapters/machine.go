package chapters

import (
	"context"
	"errors"
	"log"

	"github.com/looplab/fsm"
)

// States of a chapter switch.
const (
	StateIdle         = "idle"
	StateResolving    = "resolving"
	StateCacheHit     = "cache_hit"
	StateInitializing = "initializing"
	StateLoading      = "loading"
	StateCommitted    = "committed"
	StateFailed       = "failed"
)

const (
	eventResolve = "resolve"
	eventHit     = "hit"
	eventMiss    = "miss"
	eventLoad    = "load"
	eventCommit  = "commit"
	eventFail    = "fail"
)

// switchMachine tracks one switch request and the states it went through.
type switchMachine struct {
	chapterID string
	fsm       *fsm.FSM
	path      []string
}

func newSwitchMachine(chapterID string) *switchMachine {
	m := &switchMachine{chapterID: chapterID, path: []string{StateIdle}}
	m.fsm = fsm.NewFSM(
		StateIdle,
		fsm.Events{
			{Name: eventResolve, Src: []string{StateIdle}, Dst: StateResolving},
			{Name: eventHit, Src: []string{StateResolving}, Dst: StateCacheHit},
			{Name: eventMiss, Src: []string{StateResolving}, Dst: StateInitializing},
			{Name: eventLoad, Src: []string{StateInitializing}, Dst: StateLoading},
			{Name: eventCommit, Src: []string{StateResolving, StateCacheHit, StateLoading}, Dst: StateCommitted},
			{Name: eventFail, Src: []string{StateIdle, StateResolving, StateCacheHit, StateInitializing, StateLoading}, Dst: StateFailed},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				m.path = append(m.path, e.Dst)
			},
		},
	)
	return m
}

func (m *switchMachine) fire(event string) {
	err := m.fsm.Event(context.Background(), event)
	var noTransition fsm.NoTransitionError
	if err != nil && !errors.As(err, &noTransition) {
		log.Printf("[CHAPTER] Switch to %s: %s from %s: %v", m.chapterID, event, m.fsm.Current(), err)
	}
}

func (m *switchMachine) current() string {
	return m.fsm.Current()
}

func (m *switchMachine) history() []string {
	return append([]string(nil), m.path...)
}
