package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContentAreaAccountsForChrome(t *testing.T) {
	l := NewLayout(80, 24)

	assert.Equal(t, 80, l.ContentWidth())
	assert.Equal(t, 22, l.ContentHeight(), "header and status bar each take one row")
}

func TestHeaderShowsUnreadBadgeOnlyWhenPending(t *testing.T) {
	l := NewLayout(80, 24)

	with := l.RenderHeader("Stockwatch", 3, "live")
	without := l.RenderHeader("Stockwatch", 0, "live")

	assert.Contains(t, with, "3 unread")
	assert.Contains(t, with, "live")
	assert.NotContains(t, without, "unread")
}

func TestFrameIncludesToastOnlyWhenPresent(t *testing.T) {
	l := NewLayout(80, 24)

	framed := l.RenderFrame("header", "AAPL above 150", "content", "status")
	assert.Contains(t, framed, "AAPL above 150")

	plain := l.RenderFrame("header", "", "content", "status")
	assert.NotContains(t, plain, "⚠")
}
