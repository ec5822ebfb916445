package resolver

import (
	"encoding/json"
	"math"
)

// ParseFunc extracts a count from a raw response body. ok is false when the
// body does not have the shape the function understands.
type ParseFunc func(raw []byte) (value int64, ok bool)

// Shape names accepted in the sources file.
const (
	ShapeCount       = "count"
	ShapeDataCount   = "data.count"
	ShapeDataUnread  = "data.unread"
	ShapeDataTotal   = "data.total"
	ShapeUnreadItems = "data.unreadCount[]"
	ShapeNumber      = "number"
)

var shapes = map[string]ParseFunc{
	ShapeCount:       ParseCount,
	ShapeDataCount:   ParseDataField("count"),
	ShapeDataUnread:  ParseDataField("unread"),
	ShapeDataTotal:   ParseDataField("total"),
	ShapeUnreadItems: ParseUnreadItems,
	ShapeNumber:      ParseNumber,
}

// DefaultParse tries every known shape in order.
var DefaultParse = Chain(
	ParseCount,
	ParseDataField("count"),
	ParseDataField("unread"),
	ParseDataField("total"),
	ParseUnreadItems,
	ParseNumber,
)

// ShapeParser returns the parser registered for name.
func ShapeParser(name string) (ParseFunc, bool) {
	fn, ok := shapes[name]
	return fn, ok
}

// Chain returns the first successful result of fns, in order.
func Chain(fns ...ParseFunc) ParseFunc {
	return func(raw []byte) (int64, bool) {
		for _, fn := range fns {
			if v, ok := fn(raw); ok {
				return v, true
			}
		}
		return 0, false
	}
}

// ParseCount reads {"count": n}.
func ParseCount(raw []byte) (int64, bool) {
	var body struct {
		Count *json.Number `json:"count"`
	}
	if err := json.Unmarshal(raw, &body); err != nil || body.Count == nil {
		return 0, false
	}
	return toCount(*body.Count)
}

// ParseDataField reads {"data": {"<field>": n}}.
func ParseDataField(field string) ParseFunc {
	return func(raw []byte) (int64, bool) {
		var body struct {
			Data map[string]json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			return 0, false
		}
		v, found := body.Data[field]
		if !found {
			return 0, false
		}
		return ParseNumber(v)
	}
}

// ParseUnreadItems sums unreadCount over {"data": [{"unreadCount": n}, ...]}.
// An empty list is a valid zero.
func ParseUnreadItems(raw []byte) (int64, bool) {
	var body struct {
		Data *[]struct {
			UnreadCount json.Number `json:"unreadCount"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &body); err != nil || body.Data == nil {
		return 0, false
	}

	var total int64
	for _, item := range *body.Data {
		if item.UnreadCount == "" {
			continue
		}
		v, ok := toCount(item.UnreadCount)
		if !ok {
			return 0, false
		}
		total += v
	}
	return total, true
}

// ParseNumber reads a bare JSON number.
func ParseNumber(raw []byte) (int64, bool) {
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, false
	}
	return toCount(n)
}

func toCount(n json.Number) (int64, bool) {
	if i, err := n.Int64(); err == nil {
		return i, i >= 0
	}
	f, err := n.Float64()
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 || f != math.Trunc(f) || f > math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}
