package main

// Notes:
// - notifyContext: only observable context behavior is covered: it starts
//   live, stop() and parent cancellation both end it. Real SIGINT/SIGTERM
//   delivery is left out; it would signal the whole test binary.

import (
	"context"
	"testing"
	"time"
)

// ---------------------------------------------------------------------------
// TestNotifyContext - Serve shutdown context
// ---------------------------------------------------------------------------

func TestNotifyContext(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		cancel   func(stop context.CancelFunc, parentCancel context.CancelFunc)
		wantDone bool
	}{
		{
			name:     "live until stopped",
			cancel:   func(context.CancelFunc, context.CancelFunc) {},
			wantDone: false,
		},
		{
			name:     "stop ends context",
			cancel:   func(stop, _ context.CancelFunc) { stop() },
			wantDone: true,
		},
		{
			name:     "parent cancellation propagates",
			cancel:   func(_, parentCancel context.CancelFunc) { parentCancel() },
			wantDone: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			parent, parentCancel := context.WithCancel(context.Background())
			defer parentCancel()

			ctx, stop := notifyContext(parent)
			defer stop()
			if ctx == nil {
				t.Fatal("notifyContext returned nil context")
			}

			tt.cancel(stop, parentCancel)

			select {
			case <-ctx.Done():
				if !tt.wantDone {
					t.Fatal("context done, want live")
				}
			case <-time.After(50 * time.Millisecond):
				if tt.wantDone {
					t.Fatal("context live, want done")
				}
			}
		})
	}
}
