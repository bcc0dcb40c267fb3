// Package view holds the render surfaces an ask cycle drives: a shared
// state model and the HTML and terminal renderings of it.
package view

import (
	"sync"

	"github.com/ternarybob/policyqa/internal/interfaces"
	"github.com/ternarybob/policyqa/internal/models"
)

// State is a point-in-time copy of everything a surface displays
type State struct {
	Question           string
	Alert              string
	LoadingVisible     bool
	ResponseVisible    bool
	SubmitEnabled      bool
	AnswerText         string
	Sources            []models.SourceBlock
	SourcesPlaceholder string

	// Version increases with every display change; later states have higher versions
	Version uint64
}

// ChangeListener receives a snapshot after every display change.
// It is called outside the model lock.
type ChangeListener func(state State)

// Model is the thread-safe surface state shared by a controller and the
// host rendering it.
type Model struct {
	mu       sync.Mutex
	state    State
	listener ChangeListener
}

// Compile-time assertion: Model implements Surface
var _ interfaces.Surface = (*Model)(nil)

// NewModel creates a model in its initial state: submit enabled, loading
// and response hidden.
func NewModel() *Model {
	return &Model{
		state: State{SubmitEnabled: true},
	}
}

// SetListener replaces the change listener. Nil disables notifications.
func (m *Model) SetListener(listener ChangeListener) {
	m.mu.Lock()
	m.listener = listener
	m.mu.Unlock()
}

// SetQuestionText replaces the content of the question input.
// Typing is not a display change, so listeners are not notified.
func (m *Model) SetQuestionText(text string) {
	m.mu.Lock()
	m.state.Question = text
	m.mu.Unlock()
}

func (m *Model) QuestionText() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Question
}

// Alert records a notice for the host to show. Only the latest is kept.
func (m *Model) Alert(message string) {
	m.mu.Lock()
	m.state.Alert = message
	m.mu.Unlock()
}

// TakeAlert returns the pending notice and clears it
func (m *Model) TakeAlert() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	message := m.state.Alert
	m.state.Alert = ""
	return message
}

func (m *Model) SetLoadingVisible(visible bool) {
	m.update(func(s *State) { s.LoadingVisible = visible })
}

func (m *Model) SetResponseVisible(visible bool) {
	m.update(func(s *State) { s.ResponseVisible = visible })
}

func (m *Model) SetSubmitEnabled(enabled bool) {
	m.update(func(s *State) { s.SubmitEnabled = enabled })
}

func (m *Model) SetAnswerText(text string) {
	m.update(func(s *State) { s.AnswerText = text })
}

func (m *Model) ClearSources() {
	m.update(func(s *State) {
		s.Sources = nil
		s.SourcesPlaceholder = ""
	})
}

func (m *Model) AppendSource(block models.SourceBlock) {
	m.update(func(s *State) {
		s.Sources = append(s.Sources, block)
		s.SourcesPlaceholder = ""
	})
}

func (m *Model) ShowSourcesPlaceholder(text string) {
	m.update(func(s *State) {
		s.Sources = nil
		s.SourcesPlaceholder = text
	})
}

// Snapshot returns a copy of the current state
func (m *Model) Snapshot() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.copy()
}

func (m *Model) update(mutate func(s *State)) {
	m.mu.Lock()
	mutate(&m.state)
	m.state.Version++
	snapshot := m.state.copy()
	listener := m.listener
	m.mu.Unlock()

	if listener != nil {
		listener(snapshot)
	}
}

func (s State) copy() State {
	if s.Sources != nil {
		s.Sources = append([]models.SourceBlock(nil), s.Sources...)
	}
	return s
}
