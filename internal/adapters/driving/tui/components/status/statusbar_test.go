package status

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-library/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/sercha-library/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/sercha-library/internal/core/domain"
)

func TestNewBar(t *testing.T) {
	bar := NewBar(styles.DefaultStyles(), keymap.DefaultKeyMap())

	require.NotNil(t, bar)
	assert.Equal(t, ModeLibrary, bar.Mode())
	assert.Nil(t, bar.Notification())
}

func TestNewBar_NilStyles(t *testing.T) {
	bar := NewBar(nil, nil)

	require.NotNil(t, bar)
	assert.NotNil(t, bar.styles)
	assert.NotNil(t, bar.keymap)
}

func TestBar_View_Connection(t *testing.T) {
	tests := []struct {
		name     string
		state    domain.ConnectionState
		expected string
	}{
		{"online", domain.ConnectionState{Connected: true}, "online"},
		{"degraded", domain.ConnectionState{Connected: true, ConsecutiveFailures: 3}, "degraded (3)"},
		{"offline", domain.ConnectionState{}, "offline"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bar := NewBar(nil, nil)
			bar.SetWidth(160)
			bar.SetConnection(tt.state)

			assert.Contains(t, bar.View(), tt.expected)
		})
	}
}

func TestBar_View_Notification(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetWidth(160)
	bar.SetNotification(domain.Notification{Severity: domain.SeveritySuccess, Message: "Deleted 3 records"})

	assert.Contains(t, bar.View(), "Deleted 3 records")

	bar.Clear()
	assert.Nil(t, bar.Notification())
	assert.NotContains(t, bar.View(), "Deleted 3 records")
}

func TestBar_View_BusyHidesNotification(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetWidth(160)
	bar.SetNotification(domain.Notification{Message: "older"})
	bar.SetBusy("Loading more...")

	view := bar.View()
	assert.Equal(t, ModeBusy, bar.Mode())
	assert.Contains(t, view, "Loading more...")
	assert.NotContains(t, view, "older")
}

func TestBar_View_HintsFollowMode(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetWidth(200)

	assert.Contains(t, bar.View(), "load more")

	bar.SetMode(ModeGroup)
	assert.Contains(t, bar.View(), "summarise")

	bar.SetMode(ModeConfirm)
	view := bar.View()
	assert.Contains(t, view, "y: confirm")
	assert.Contains(t, view, "n: cancel")
}
