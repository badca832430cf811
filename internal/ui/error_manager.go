package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// ErrorManager handles error display and auto-clearing
type ErrorManager struct {
	currentError    error
	errorClearDelay time.Duration
}

// NewErrorManager creates a new ErrorManager with the specified auto-clear delay
func NewErrorManager(errorClearDelay time.Duration) *ErrorManager {
	return &ErrorManager{
		errorClearDelay: errorClearDelay,
	}
}

// SetError sets the current error and returns the command that clears it later
func (em *ErrorManager) SetError(err error) tea.Cmd {
	em.currentError = err
	return em.ClearAfterDelay()
}

// ClearError clears the current error
func (em *ErrorManager) ClearError() {
	em.currentError = nil
}

// GetError returns the current error
func (em *ErrorManager) GetError() error {
	return em.currentError
}

// HasError returns true if there is a current error
func (em *ErrorManager) HasError() bool {
	return em.currentError != nil
}

// ClearAfterDelay returns a tea.Cmd that sends clearErrorMsg after the configured delay
func (em *ErrorManager) ClearAfterDelay() tea.Cmd {
	if em.errorClearDelay <= 0 {
		return nil
	}
	return tea.Tick(em.errorClearDelay, func(time.Time) tea.Msg {
		return clearErrorMsg{}
	})
}
