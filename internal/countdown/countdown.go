// Package countdown derives the remaining-time view for a pending
// order. The backend auto-cancels unpaid orders after a fixed timeout;
// this model only mirrors that deadline for display and for gating
// pay/cancel actions client-side. It performs no I/O and may be called
// at any frequency.
package countdown

import (
	"fmt"
	"math"
	"time"
)

// Timeout is how long the backend keeps a pending order before
// auto-cancelling it.
const Timeout = 15 * time.Minute

// View is the derived countdown state for a single order at a single
// instant. It is recomputed from its inputs on every tick and never
// mutated.
type View struct {
	Remaining      time.Duration
	Minutes        int
	Seconds        int
	PercentElapsed int
	Expired        bool
}

// At computes the countdown view for an order created at createdAt as
// observed at now. Negative elapsed time (client clock behind the
// server) clamps to zero rather than reporting premature expiry, and
// Remaining never goes negative. Expired becomes true at the exact
// instant Remaining reaches zero.
func At(createdAt, now time.Time) View {
	elapsed := now.Sub(createdAt)
	if elapsed < 0 {
		elapsed = 0
	}
	remaining := Timeout - elapsed
	if remaining < 0 {
		remaining = 0
	}

	frac := float64(Timeout-remaining) / float64(Timeout)
	if frac > 1 {
		frac = 1
	}

	return View{
		Remaining:      remaining,
		Minutes:        int(remaining / time.Minute),
		Seconds:        int((remaining % time.Minute) / time.Second),
		PercentElapsed: int(math.Round(frac * 100)),
		Expired:        remaining == 0,
	}
}

// Clock renders the remaining time as a zero-padded MM:SS string.
func (v View) Clock() string {
	return fmt.Sprintf("%02d:%02d", v.Minutes, v.Seconds)
}
