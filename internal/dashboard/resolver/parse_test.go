package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultParse(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		want   int64
		wantOK bool
	}{
		{"count", `{"count": 7}`, 7, true},
		{"data count", `{"data": {"count": 3}}`, 3, true},
		{"data unread", `{"data": {"unread": 12}}`, 12, true},
		{"data total", `{"data": {"total": 5}}`, 5, true},
		{"unread items summed", `{"data": [{"unreadCount": 2}, {"unreadCount": 4}, {}]}`, 6, true},
		{"empty unread list", `{"data": []}`, 0, true},
		{"bare number", `42`, 42, true},
		{"integral float", `{"count": 9.0}`, 9, true},
		{"negative", `{"count": -1}`, 0, false},
		{"fractional", `{"count": 1.5}`, 0, false},
		{"malformed", `{"count":`, 0, false},
		{"html error page", `<html>502</html>`, 0, false},
		{"unknown shape", `{"messages": 4}`, 0, false},
		{"null count", `{"count": null}`, 0, false},
		{"empty body", ``, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := DefaultParse([]byte(tt.raw))
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDefaultParse_FirstShapeWins(t *testing.T) {
	got, ok := DefaultParse([]byte(`{"count": 1, "data": {"count": 2}}`))
	assert.True(t, ok)
	assert.Equal(t, int64(1), got)
}

func TestShapeParser(t *testing.T) {
	parse, ok := ShapeParser(ShapeDataUnread)
	assert.True(t, ok)

	_, ok = parse([]byte(`{"count": 7}`))
	assert.False(t, ok, "a pinned shape must not fall back to other shapes")

	v, ok := parse([]byte(`{"data": {"unread": 8}}`))
	assert.True(t, ok)
	assert.Equal(t, int64(8), v)

	_, ok = ShapeParser("xml")
	assert.False(t, ok)
}
