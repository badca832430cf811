package ui

import (
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/key"

	"github.com/renato0307/sqldesk/internal/theme"
)

// Tip holds a tip format string and the keys to highlight
type Tip struct {
	Format string
	Keys   []string
}

var (
	tips   []Tip
	tipsMu sync.Mutex
)

// newTip registers a tip with format string and keys to highlight.
// Format uses %s placeholders for keys, e.g. newTip("press %s to run", "f5").
func newTip(format string, keys ...string) string {
	tipsMu.Lock()
	defer tipsMu.Unlock()

	tip := Tip{Format: format, Keys: keys}
	for i, t := range tips {
		if t.Format == format {
			tips[i] = tip
			return renderTipText(tip)
		}
	}
	tips = append(tips, tip)
	return renderTipText(tip)
}

func renderTipText(tip Tip) string {
	args := make([]any, len(tip.Keys))
	for i, k := range tip.Keys {
		args[i] = k
	}
	return fmt.Sprintf(tip.Format, args...)
}

// GetTips returns all registered tips
func GetTips() []Tip {
	tipsMu.Lock()
	defer tipsMu.Unlock()
	return append([]Tip(nil), tips...)
}

// RenderTip formats a tip with highlighted keys and gray text
func RenderTip(tip Tip) string {
	parts := strings.Split(tip.Format, "%s")
	var b strings.Builder
	b.WriteString(theme.TipTextStyle.Render("tip: "))
	for i, part := range parts {
		b.WriteString(theme.TipTextStyle.Render(part))
		if i < len(tip.Keys) {
			b.WriteString(theme.TipKeyStyle.Render(tip.Keys[i]))
		}
	}
	return b.String()
}

// KeyWithTip wraps a key.Binding with an optional tip
type KeyWithTip struct {
	Binding key.Binding
	Tip     string
}
