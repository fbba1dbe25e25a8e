// internal/play/runner.go
//
// Session shell: runs one game.Session on its own goroutine.
// Responsibilities:
//   - Serialise player commands, countdown ticks and delayed advances onto
//     one event loop, so the session is never mutated concurrently.
//   - Perform the effects the session asks for: arm/cancel the ticker and the
//     advance timer (clockwork, so tests drive time), read and write the
//     leaderboard, and notify the relay.
//   - Publish read-only Snapshots for the HTTP layer.
//
// The relay notification runs on its own goroutine; its failure comes back
// to the loop as a notice on the snapshot and never affects game state.

package play

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/basfurolhi/unscramble/internal/game"
	"github.com/basfurolhi/unscramble/internal/leaderboard"
	"github.com/basfurolhi/unscramble/internal/relay"
	"github.com/basfurolhi/unscramble/internal/words"
)

// ErrClosed is returned by calls on a Runner whose loop has stopped.
var ErrClosed = errors.New("play: session closed")

// RelayFailedNotice is shown when the final score could not be relayed.
const RelayFailedNotice = "Score could not be sent to Telegram."

const notifyTimeout = 15 * time.Second

// Options configures a Runner.
type Options struct {
	Game     game.Config
	Unit     time.Duration // length of one countdown unit
	Clock    clockwork.Clock
	Rand     *rand.Rand
	Board    *leaderboard.Board // nil disables the leaderboard
	Scope    string             // leaderboard key
	Notifier relay.Notifier
	UserID   int64 // Telegram user credited by the relay; 0 for guests
}

// Snapshot is what a client renders.
type Snapshot struct {
	game.View
	Highscores  []leaderboard.Entry `json:"highscores"`
	RelayNotice string              `json:"relayNotice,omitempty"`
}

type command struct {
	ev    game.Event // nil: snapshot only
	reply chan Snapshot
}

// Runner owns a session and its event loop.
type Runner struct {
	opts    Options
	session *game.Session
	cmds    chan command
	notices chan error
	cancel  context.CancelFunc
	done    chan struct{}
	active  atomic.Int64 // unix nanos of last command, on opts.Clock

	// loop-owned
	ticker     clockwork.Ticker
	tickGen    uint64
	advance    clockwork.Timer
	advanceGen uint64
	highscores []leaderboard.Entry
	notice     string
}

// Start boots a session with the outcome of the word list load (list or
// loadErr) and starts its loop. The loop stops when ctx is cancelled or
// Close is called.
func Start(ctx context.Context, opts Options, list *words.List, loadErr error) *Runner {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Unit <= 0 {
		opts.Unit = time.Second
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if opts.Notifier == nil {
		opts.Notifier = relay.Nop{}
	}

	ctx, cancel := context.WithCancel(ctx)
	r := &Runner{
		opts:    opts,
		session: game.NewSession(opts.Game, opts.Rand),
		cmds:    make(chan command),
		notices: make(chan error, 1),
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	r.touch()

	var boot game.Event = game.PoolLoaded{Words: list}
	if loadErr != nil {
		boot = game.PoolFailed{Err: loadErr}
	}
	r.apply(ctx, boot)

	go r.loop(ctx)
	return r
}

// Dispatch applies ev and returns the resulting snapshot.
func (r *Runner) Dispatch(ctx context.Context, ev game.Event) (Snapshot, error) {
	return r.call(ctx, ev)
}

// Snapshot returns the current snapshot.
func (r *Runner) Snapshot(ctx context.Context) (Snapshot, error) {
	return r.call(ctx, nil)
}

func (r *Runner) call(ctx context.Context, ev game.Event) (Snapshot, error) {
	c := command{ev: ev, reply: make(chan Snapshot, 1)}
	select {
	case r.cmds <- c:
	case <-r.done:
		return Snapshot{}, ErrClosed
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	}
	r.touch()
	select {
	case s := <-c.reply:
		return s, nil
	case <-r.done:
		return Snapshot{}, ErrClosed
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	}
}

// Close stops the loop and waits for it to exit.
func (r *Runner) Close() {
	r.cancel()
	<-r.done
}

// Done is closed once the loop has exited.
func (r *Runner) Done() <-chan struct{} { return r.done }

// LastActive returns when a command was last received.
func (r *Runner) LastActive() time.Time {
	return time.Unix(0, r.active.Load())
}

func (r *Runner) touch() { r.active.Store(r.opts.Clock.Now().UnixNano()) }

// ---------------------------------------------------------------------------
// loop

func (r *Runner) loop(ctx context.Context) {
	defer close(r.done)
	defer r.stopTimers()

	for {
		var tickC, advanceC <-chan time.Time
		if r.ticker != nil {
			tickC = r.ticker.Chan()
		}
		if r.advance != nil {
			advanceC = r.advance.Chan()
		}

		select {
		case <-ctx.Done():
			return
		case c := <-r.cmds:
			if c.ev != nil {
				r.apply(ctx, c.ev)
			}
			c.reply <- r.snapshot()
		case <-tickC:
			r.apply(ctx, game.Tick{Gen: r.tickGen})
		case <-advanceC:
			r.advance = nil
			r.apply(ctx, game.AdvanceRound{Gen: r.advanceGen})
		case err := <-r.notices:
			log.Warn().Err(err).Int64("userId", r.opts.UserID).Msg("relay notify failed")
			r.notice = RelayFailedNotice
		}
	}
}

func (r *Runner) apply(ctx context.Context, ev game.Event) {
	for _, eff := range r.session.Apply(ev) {
		switch e := eff.(type) {
		case game.CancelTimers:
			r.stopTimers()
		case game.StartTimer:
			r.ticker = r.opts.Clock.NewTicker(r.opts.Unit)
			r.tickGen = e.Gen
		case game.ScheduleAdvance:
			r.advance = r.opts.Clock.NewTimer(e.Delay)
			r.advanceGen = e.Gen
		case game.LoadLeaderboard:
			r.loadHighscores(ctx)
		case game.PersistScore:
			r.persist(ctx, e)
		case game.NotifyRelay:
			r.notify(ctx, e.Score)
		}
	}
}

func (r *Runner) stopTimers() {
	if r.ticker != nil {
		r.ticker.Stop()
		r.ticker = nil
	}
	if r.advance != nil {
		r.advance.Stop()
		r.advance = nil
	}
}

func (r *Runner) loadHighscores(ctx context.Context) {
	if r.opts.Board == nil {
		return
	}
	entries, err := r.opts.Board.Load(ctx, r.opts.Scope)
	if err != nil {
		log.Warn().Err(err).Str("scope", r.opts.Scope).Msg("load leaderboard")
		return
	}
	r.highscores = entries
}

func (r *Runner) persist(ctx context.Context, e game.PersistScore) {
	if r.opts.Board == nil {
		return
	}
	entries, err := r.opts.Board.Record(ctx, r.opts.Scope, leaderboard.Entry{Name: e.Name, Score: e.Score})
	if err != nil {
		log.Error().Err(err).Str("scope", r.opts.Scope).Msg("save leaderboard")
		return
	}
	r.highscores = entries
}

// notify hands the score to the relay without waiting for it.
func (r *Runner) notify(ctx context.Context, score int) {
	r.notice = ""
	n, userID := r.opts.Notifier, r.opts.UserID
	go func() {
		nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
		defer cancel()
		if err := n.Notify(nctx, userID, relay.Report{Score: score}); err != nil {
			select {
			case r.notices <- err:
			case <-r.done:
			}
		}
	}()
}

func (r *Runner) snapshot() Snapshot {
	return Snapshot{
		View:        r.session.View(),
		Highscores:  append([]leaderboard.Entry{}, r.highscores...),
		RelayNotice: r.notice,
	}
}
