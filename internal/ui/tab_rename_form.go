package ui

import (
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/renato0307/sqldesk/internal/domain"
	"github.com/renato0307/sqldesk/internal/logging"
	"github.com/renato0307/sqldesk/internal/state"
)

// TabRenameFormResult contains the result of the rename operation
type TabRenameFormResult struct {
	Cancelled bool
	Error     error
	NewTitle  string
	TabID     string
}

// TabRenameForm is a Bubble Tea component for renaming a query tab
type TabRenameForm struct {
	Completed bool
	form      *huh.Form
	result    TabRenameFormResult
	store     *state.Store
}

// NewTabRenameForm creates a rename form for the tab with the given ID
func NewTabRenameForm(store *state.Store, tabID, currentTitle string) *TabRenameForm {
	rf := &TabRenameForm{
		result: TabRenameFormResult{
			NewTitle: currentTitle,
			TabID:    tabID,
		},
		store: store,
	}

	rf.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Tab title").
				Description("Renaming: " + currentTitle).
				Value(&rf.result.NewTitle).
				Placeholder(currentTitle).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("title required")
					}
					return nil
				}),
		),
	)

	return rf
}

func (rf *TabRenameForm) Init() tea.Cmd {
	return rf.form.Init()
}

func (rf *TabRenameForm) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.String() == "esc" || keyMsg.String() == "ctrl+c" {
			rf.result.Cancelled = true
			rf.Completed = true
			return rf, nil
		}
	}

	form, cmd := rf.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		rf.form = f
	}

	if rf.form.State == huh.StateCompleted {
		rf.Completed = true
		rf.rename()
		return rf, nil
	}

	return rf, cmd
}

func (rf *TabRenameForm) View() string {
	if rf.form != nil {
		return rf.form.View()
	}
	return ""
}

// Result returns the form result
func (rf *TabRenameForm) Result() TabRenameFormResult {
	return rf.result
}

// rename applies the new title; the tab may have been closed meanwhile
func (rf *TabRenameForm) rename() {
	if !rf.store.RenameTab(rf.result.TabID, rf.result.NewTitle) {
		rf.result.Error = domain.ErrTabNotFound
		logging.Logger.Warn("Rename target is gone", "tab_id", rf.result.TabID)
		return
	}
	logging.Logger.Info("Tab renamed", "tab_id", rf.result.TabID, "title", strings.TrimSpace(rf.result.NewTitle))
}
