package bot

import (
	"context"
	"sync"

	"knife-atelier/internal/cart"
	"knife-atelier/internal/configurator"
)

// sessionCart resolves the chat's store on every commit, so a wizard left open
// for a long time still writes to the live cart.
type sessionCart struct {
	carts   *cart.Sessions
	session string
}

func (c sessionCart) AddItem(ctx context.Context, item cart.Candidate) {
	c.carts.Get(ctx, c.session).AddItem(ctx, item)
}

// chatState is the configurator run of one chat.
type chatState struct {
	wizard *configurator.Wizard
	// field is the index in configurator.PersonalizeFields awaiting input.
	field int
}

type chatStates struct {
	mu    sync.Mutex
	chats map[int64]*chatState
}

func newChatStates() *chatStates {
	return &chatStates{chats: make(map[int64]*chatState)}
}

func (s *chatStates) get(chatID int64) (*chatState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.chats[chatID]
	return state, ok
}

// start replaces any running configurator of the chat.
func (s *chatStates) start(chatID int64, w *configurator.Wizard) *chatState {
	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.chats[chatID]; ok {
		old.wizard.Close()
	}
	state := &chatState{wizard: w}
	s.chats[chatID] = state
	return state
}

func (s *chatStates) end(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if state, ok := s.chats[chatID]; ok {
		state.wizard.Close()
		delete(s.chats, chatID)
	}
}

func (s *chatStates) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for chatID, state := range s.chats {
		state.wizard.Close()
		delete(s.chats, chatID)
	}
}
