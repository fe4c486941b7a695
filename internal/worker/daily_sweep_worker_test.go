package worker

import (
	"testing"
	"time"
)

func TestNextRun(t *testing.T) {
	loc, err := time.LoadLocation("Africa/Johannesburg")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	w := NewDailySweepWorker(nil, "02:00", loc)

	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{
			name: "before the slot fires today",
			now:  time.Date(2026, 3, 10, 1, 30, 0, 0, loc),
			want: time.Date(2026, 3, 10, 2, 0, 0, 0, loc),
		},
		{
			name: "after the slot fires tomorrow",
			now:  time.Date(2026, 3, 10, 9, 0, 0, 0, loc),
			want: time.Date(2026, 3, 11, 2, 0, 0, 0, loc),
		},
		{
			name: "exactly at the slot fires tomorrow",
			now:  time.Date(2026, 3, 10, 2, 0, 0, 0, loc),
			want: time.Date(2026, 3, 11, 2, 0, 0, 0, loc),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := w.nextRun(tt.now)
			if !got.Equal(tt.want) {
				t.Errorf("nextRun(%v) = %v, want %v", tt.now, got, tt.want)
			}
		})
	}
}

func TestNextRunInvalidTimeFallsBack(t *testing.T) {
	w := NewDailySweepWorker(nil, "not-a-time", time.UTC)

	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	got := w.nextRun(now)
	if got.Hour() != 2 || got.Minute() != 0 {
		t.Errorf("fallback slot = %02d:%02d, want 02:00", got.Hour(), got.Minute())
	}
	if !got.After(now) {
		t.Error("next run must be in the future")
	}
}
