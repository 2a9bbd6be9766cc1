package dialog

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// InputKind names the piece of input a chat is expected to supply next.
type InputKind string

const (
	KindNone            InputKind = ""
	KindTokenMint       InputKind = "token_mint"
	KindWithdrawAddress InputKind = "withdraw_address"
	KindCustomSetting   InputKind = "custom_setting"
	KindConfirmOnboard  InputKind = "confirm_onboard"
)

// ErrNotAwaiting is returned when input arrives for a chat that is idle.
var ErrNotAwaiting = errors.New("no input awaited for this chat")

// Machine tracks the per-chat prompt state: Idle, or awaiting exactly one
// kind of input. Prompting a chat that is already awaiting replaces the
// pending prompt, last write wins.
type Machine struct {
	mu     sync.Mutex
	states map[int64]InputKind
}

func NewMachine() *Machine {
	return &Machine{states: make(map[int64]InputKind)}
}

// Await moves the chat into the awaiting state for kind.
func (m *Machine) Await(chatID int64, kind InputKind) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[chatID] = kind
}

// Clear returns the chat to idle.
func (m *Machine) Clear(chatID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, chatID)
}

// Current reports what the chat is awaiting; KindNone means idle.
func (m *Machine) Current(chatID int64) InputKind {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.states[chatID]
}

// Handler consumes one piece of awaited input.
type Handler func(ctx context.Context, chatID int64, input string) error

// Dispatcher routes inbound messages by the chat's current prompt state.
// There is exactly one inbound path: the dispatcher checks state, resets it
// to idle, then runs the matching handler, so a handler can safely prompt
// for the next input without racing its own delivery.
type Dispatcher struct {
	machine  *Machine
	mu       sync.Mutex
	handlers map[InputKind]Handler
}

func NewDispatcher(machine *Machine) *Dispatcher {
	return &Dispatcher{
		machine:  machine,
		handlers: make(map[InputKind]Handler),
	}
}

// Register binds a handler to an input kind. Last registration wins.
func (d *Dispatcher) Register(kind InputKind, h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[kind] = h
}

// Dispatch delivers one inbound message. Returns ErrNotAwaiting when the
// chat is idle, so the caller can fall back to menu routing.
func (d *Dispatcher) Dispatch(ctx context.Context, chatID int64, input string) error {
	kind := d.machine.Current(chatID)
	if kind == KindNone {
		return ErrNotAwaiting
	}

	d.mu.Lock()
	h := d.handlers[kind]
	d.mu.Unlock()
	if h == nil {
		d.machine.Clear(chatID)
		return fmt.Errorf("no handler registered for input kind %q", kind)
	}

	d.machine.Clear(chatID)
	return h(ctx, chatID, input)
}
