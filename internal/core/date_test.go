package core

import (
	"errors"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	cases := []struct {
		in   string
		want time.Time
	}{
		{"2024-02-01", NewDate(2024, 2, 1)},
		{"02/01/2024", NewDate(2024, 2, 1)}, // MM/dd wins over dd/MM
		{"25/12/2024", NewDate(2024, 12, 25)},
		{"2024/03/04", NewDate(2024, 3, 4)},
		{"03-04-2024", NewDate(2024, 3, 4)},
		{"31-01-2024", NewDate(2024, 1, 31)},
	}
	for _, tc := range cases {
		got, err := ParseDate(tc.in)
		if err != nil || got == nil || !got.Equal(tc.want) {
			t.Fatalf("ParseDate(%q) = %v, %v; want %v", tc.in, got, err, tc.want)
		}
	}

	if got, err := ParseDate("  "); got != nil || err != nil {
		t.Fatalf("empty date should be absent, got %v, %v", got, err)
	}
	if _, err := ParseDate("yesterday"); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
}

func TestWindowContains(t *testing.T) {
	day := NewDate(2024, 1, 5)
	same := NewWindow(day, day)

	afternoon := day.Add(15 * time.Hour)
	if !same.Contains(afternoon) {
		t.Fatal("start == end must keep records of that day")
	}
	if same.Contains(day.AddDate(0, 0, 1)) || same.Contains(day.Add(-time.Second)) {
		t.Fatal("start == end must exclude other days")
	}
	if same.ContainsDate(nil) {
		t.Fatal("absent date must be outside a bounded window")
	}
	if !AllTime.ContainsDate(nil) {
		t.Fatal("absent date must be inside the all-time window")
	}

	half := Window{Start: day}
	if half.Bounded() || !half.Contains(NewDate(1999, 1, 1)) {
		t.Fatal("a window with a single end must not filter")
	}
}
