package core

import (
	"testing"
	"time"

	"google.golang.org/protobuf/types/known/timestamppb"
)

func TestNormalizeTimestamp(t *testing.T) {
	want := time.Date(2024, 6, 15, 12, 0, 0, 500, time.UTC)
	ptr := want

	tests := []struct {
		name   string
		value  any
		wantOK bool
	}{
		{name: "time.Time", value: want, wantOK: true},
		{name: "*time.Time", value: &ptr, wantOK: true},
		{name: "timestamppb", value: timestamppb.New(want), wantOK: true},
		{name: "seconds map", value: map[string]any{"seconds": want.Unix(), "nanoseconds": 500}, wantOK: true},
		{name: "underscore seconds map", value: map[string]any{"_seconds": float64(want.Unix()), "_nanoseconds": float64(500)}, wantOK: true},
		{name: "int64 map", value: map[string]int64{"seconds": want.Unix(), "nanoseconds": 500}, wantOK: true},
		{name: "zero time", value: time.Time{}, wantOK: false},
		{name: "nil pointer", value: (*time.Time)(nil), wantOK: false},
		{name: "empty map", value: map[string]any{}, wantOK: false},
		{name: "string", value: "2024-06-15", wantOK: false},
		{name: "nil", value: nil, wantOK: false},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			// Act
			got, ok := NormalizeTimestamp(test.value)

			// Assert
			if ok != test.wantOK {
				t.Fatalf("NormalizeTimestamp(%v) ok = %v, want %v", test.value, ok, test.wantOK)
			}
			if ok && !got.Equal(want) {
				t.Errorf("NormalizeTimestamp(%v) = %v, want %v", test.value, got, want)
			}
		})
	}
}

func TestTimestampPtr(t *testing.T) {
	if TimestampPtr(nil) != nil {
		t.Error("TimestampPtr(nil) should be nil")
	}

	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	got := TimestampPtr(at)
	if got == nil || !got.Equal(at) {
		t.Errorf("TimestampPtr(%v) = %v", at, got)
	}
}
