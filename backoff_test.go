package offsync_test

import (
	"testing"
	"time"

	"github.com/zhCaiCode/offsync"
)

func TestConstantBackoff(t *testing.T) {
	t.Parallel()
	backoff := offsync.Constant(5 * time.Second)
	for _, attempt := range []int{0, 1, 2, 10} {
		if got := backoff(attempt); got != 5*time.Second {
			t.Fatalf("attempt %d: got %s, want 5s", attempt, got)
		}
	}
}

func TestExponentialBackoff(t *testing.T) {
	t.Parallel()
	backoff := offsync.Exponential(100*time.Millisecond, 2.0, time.Second)

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{attempt: 0, want: 100 * time.Millisecond},
		{attempt: 1, want: 100 * time.Millisecond},
		{attempt: 2, want: 200 * time.Millisecond},
		{attempt: 3, want: 400 * time.Millisecond},
		{attempt: 4, want: 800 * time.Millisecond},
		{attempt: 5, want: time.Second},
		{attempt: 10, want: time.Second},
	}
	for _, tc := range tests {
		if got := backoff(tc.attempt); got != tc.want {
			t.Fatalf("attempt %d: got %s, want %s", tc.attempt, got, tc.want)
		}
	}
}
