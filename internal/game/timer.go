// internal/game/timer.go
//
// Round Timer: countdown in whole units, armed per round generation.
// Ticks carrying an older generation are ignored, so a stale ticker can
// never expire the next round.

package game

// TimerLevel is the presentational urgency of the round countdown.
type TimerLevel string

const (
	TimerCalm     TimerLevel = "calm"
	TimerLow      TimerLevel = "low"      // ≤ 10 units left
	TimerCritical TimerLevel = "critical" // ≤ 5 units left
)

// Timer is the per-round countdown. The session owns it; the shell only
// delivers ticks. Each start is tagged with a generation and ticks from any
// other generation are ignored.
type Timer struct {
	remaining int
	running   bool
	gen       uint64
}

// Start arms the countdown with units remaining.
func (t *Timer) Start(units int, gen uint64) {
	t.remaining = units
	t.running = true
	t.gen = gen
}

// Stop disarms the countdown; Remaining keeps its last value.
func (t *Timer) Stop() { t.running = false }

// Tick decrements the countdown once and reports whether it reached zero.
func (t *Timer) Tick(gen uint64) (expired bool) {
	if !t.running || gen != t.gen {
		return false
	}
	t.remaining--
	if t.remaining <= 0 {
		t.remaining = 0
		t.running = false
		return true
	}
	return false
}

// Remaining returns the units left.
func (t *Timer) Remaining() int { return t.remaining }

// Running reports whether the countdown is armed.
func (t *Timer) Running() bool { return t.running }

// Level maps the remaining time to its warning state.
func (t *Timer) Level() TimerLevel {
	switch {
	case !t.running:
		return TimerCalm
	case t.remaining <= 5:
		return TimerCritical
	case t.remaining <= 10:
		return TimerLow
	default:
		return TimerCalm
	}
}
