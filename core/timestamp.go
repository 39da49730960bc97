package core

import (
	"encoding/json"
	"math"
	"time"

	"google.golang.org/protobuf/types/known/timestamppb"
)

// NormalizeTimestamp resolves the timestamp representations found in stored
// documents into a single point in time.
//
// Supported: time.Time, *time.Time, *timestamppb.Timestamp and maps carrying
// "seconds" or "_seconds" (with optional "nanoseconds"/"_nanoseconds").
// A zero or unrecognised value reports false.
func NormalizeTimestamp(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		if t.IsZero() {
			return time.Time{}, false
		}
		return t, true
	case *time.Time:
		if t == nil || t.IsZero() {
			return time.Time{}, false
		}
		return *t, true
	case *timestamppb.Timestamp:
		if t == nil || t.CheckValid() != nil {
			return time.Time{}, false
		}
		return t.AsTime(), true
	case map[string]any:
		return secondsPair(t)
	case map[string]int64:
		m := make(map[string]any, len(t))
		for k, val := range t {
			m[k] = val
		}
		return secondsPair(m)
	default:
		return time.Time{}, false
	}
}

// TimestampPtr is NormalizeTimestamp for optional model fields.
func TimestampPtr(v any) *time.Time {
	t, ok := NormalizeTimestamp(v)
	if !ok {
		return nil
	}
	return &t
}

func secondsPair(m map[string]any) (time.Time, bool) {
	secs, ok := number(m["_seconds"])
	if !ok || secs == 0 {
		secs, ok = number(m["seconds"])
	}
	if !ok || secs == 0 {
		return time.Time{}, false
	}

	nanos, ok := number(m["_nanoseconds"])
	if !ok {
		nanos, _ = number(m["nanoseconds"])
	}

	return time.Unix(int64(secs), int64(nanos)).UTC(), true
}

func number(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case int:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case float32:
		f = float64(n)
	case float64:
		f = n
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
