package play

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/basfurolhi/unscramble/internal/game"
	"github.com/basfurolhi/unscramble/internal/leaderboard"
	"github.com/basfurolhi/unscramble/internal/relay"
	"github.com/basfurolhi/unscramble/internal/words"
)

type recordingNotifier struct {
	mu     sync.Mutex
	scores []int
	err    error
}

func (n *recordingNotifier) Notify(_ context.Context, _ int64, r relay.Report) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.scores = append(n.scores, r.Score)
	return n.err
}

func (n *recordingNotifier) got() []int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]int(nil), n.scores...)
}

type fixture struct {
	runner   *Runner
	clock    *clockwork.FakeClock
	notifier *recordingNotifier
	board    *leaderboard.Board
}

func newFixture(t *testing.T, list string, units int) *fixture {
	t.Helper()
	l, err := words.Parse([]byte(list))
	require.NoError(t, err)

	cfg := game.DefaultConfig()
	cfg.RoundUnits = units
	cfg.PlayerName = "tester"

	f := &fixture{
		clock:    clockwork.NewFakeClock(),
		notifier: &recordingNotifier{},
		board:    leaderboard.NewBoard(leaderboard.NewMemoryKV()),
	}
	f.runner = Start(context.Background(), Options{
		Game:     cfg,
		Unit:     time.Second,
		Clock:    f.clock,
		Rand:     rand.New(rand.NewPCG(1, 2)),
		Board:    f.board,
		Scope:    leaderboard.ScopeFor(7),
		Notifier: f.notifier,
		UserID:   7,
	}, l, nil)
	t.Cleanup(f.runner.Close)
	return f
}

func (f *fixture) dispatch(t *testing.T, ev game.Event) Snapshot {
	t.Helper()
	s, err := f.runner.Dispatch(context.Background(), ev)
	require.NoError(t, err)
	return s
}

func (f *fixture) snapshot(t *testing.T) Snapshot {
	t.Helper()
	s, err := f.runner.Snapshot(context.Background())
	require.NoError(t, err)
	return s
}

// solve places the scrambled tiles so they spell want.
func (f *fixture) solve(t *testing.T, s Snapshot, want []string) Snapshot {
	t.Helper()
	for _, g := range want {
		idx := -1
		for i, tile := range s.Scrambled {
			if !tile.Used && tile.Grapheme == g {
				idx = i
				break
			}
		}
		require.GreaterOrEqual(t, idx, 0, "grapheme %q not available", g)
		s = f.dispatch(t, game.PlaceGrapheme{Slot: idx})
	}
	return s
}

func TestRunner_BootsToStart(t *testing.T) {
	f := newFixture(t, `["ab"]`, 20)
	s := f.snapshot(t)
	assert.Equal(t, game.ScreenStart, s.Screen)
	assert.Empty(t, s.Highscores)
}

func TestRunner_LoadFailureIsDeadEnd(t *testing.T) {
	r := Start(context.Background(), Options{Clock: clockwork.NewFakeClock()}, nil,
		&words.LoadError{Reason: "fetch word list: HTTP status 404"})
	defer r.Close()

	s, err := r.Dispatch(context.Background(), game.StartGame{})
	require.NoError(t, err)
	assert.Equal(t, game.ScreenLoading, s.Screen)
	assert.Contains(t, s.LoadError, "404")
}

func TestRunner_CountdownTimesOut(t *testing.T) {
	f := newFixture(t, `["abc"]`, 3)
	s := f.dispatch(t, game.StartGame{})
	require.Equal(t, game.ScreenPlaying, s.Screen)
	require.Equal(t, 3, s.TimeLeft)

	for left := 2; left >= 1; left-- {
		f.clock.Advance(time.Second)
		want := left
		require.Eventually(t, func() bool { return f.snapshot(t).TimeLeft == want }, time.Second, 5*time.Millisecond)
	}
	f.clock.Advance(time.Second)
	require.Eventually(t, func() bool { return f.snapshot(t).Screen == game.ScreenGameOver }, time.Second, 5*time.Millisecond)

	s = f.snapshot(t)
	assert.Equal(t, game.MissedWordMessage("abc"), s.GameOver.Text)
	assert.Equal(t, []leaderboard.Entry{{Name: "tester", Score: 0}}, s.Highscores)
	require.Eventually(t, func() bool { return len(f.notifier.got()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []int{0}, f.notifier.got())
}

func TestRunner_CorrectAnswerAdvancesAfterDelay(t *testing.T) {
	f := newFixture(t, `["ab"]`, 20)
	s := f.dispatch(t, game.StartGame{})
	s = f.solve(t, s, []string{"a", "b"})
	assert.Equal(t, 1, s.Score)
	assert.Equal(t, game.MsgCorrect, s.Message.Text)

	// Input is inert while waiting to advance.
	s = f.dispatch(t, game.RetractSlot{Slot: 0})
	assert.True(t, s.Answer[0].Filled)

	f.clock.Advance(game.DefaultConfig().AdvanceDelay)
	require.Eventually(t, func() bool { return f.snapshot(t).Screen == game.ScreenGameOver }, time.Second, 5*time.Millisecond)

	s = f.snapshot(t)
	assert.Equal(t, game.MsgCompleted, s.GameOver.Text)
	assert.Equal(t, 1, s.FinalScore)
	require.Eventually(t, func() bool { return len(f.notifier.got()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []int{1}, f.notifier.got())

	stored, err := f.board.Load(context.Background(), leaderboard.ScopeFor(7))
	require.NoError(t, err)
	assert.Equal(t, []leaderboard.Entry{{Name: "tester", Score: 1}}, stored)
}

func TestRunner_TicksStopWhileAdvancing(t *testing.T) {
	f := newFixture(t, `["ab", "cd"]`, 20)
	s := f.dispatch(t, game.StartGame{})

	word := []string{s.Scrambled[0].Grapheme, s.Scrambled[1].Grapheme}
	if word[0] == "b" || word[0] == "d" {
		word[0], word[1] = word[1], word[0]
	}
	s = f.solve(t, s, word)
	require.Equal(t, 1, s.Score)
	left := s.TimeLeft

	f.clock.Advance(time.Second)
	assert.Equal(t, left, f.snapshot(t).TimeLeft)

	f.clock.Advance(game.DefaultConfig().AdvanceDelay)
	require.Eventually(t, func() bool {
		s := f.snapshot(t)
		return s.Screen == game.ScreenPlaying && s.TimeLeft == 20 && s.Message.Text == ""
	}, time.Second, 5*time.Millisecond)
}

func TestRunner_RelayFailureIsNotice(t *testing.T) {
	f := newFixture(t, `["abc"]`, 1)
	f.notifier.err = errors.New("telegram down")

	f.dispatch(t, game.StartGame{})
	f.clock.Advance(time.Second)

	require.Eventually(t, func() bool { return f.snapshot(t).RelayNotice == RelayFailedNotice }, time.Second, 5*time.Millisecond)
	s := f.snapshot(t)
	assert.Equal(t, game.ScreenGameOver, s.Screen)
	assert.Len(t, s.Highscores, 1)

	s = f.dispatch(t, game.GoToStart{})
	assert.Equal(t, game.ScreenStart, s.Screen)
	assert.Equal(t, 0, s.LastScore)
}

func TestRunner_Close(t *testing.T) {
	f := newFixture(t, `["ab"]`, 20)
	f.runner.Close()

	_, err := f.runner.Dispatch(context.Background(), game.StartGame{})
	assert.ErrorIs(t, err, ErrClosed)
	select {
	case <-f.runner.Done():
	default:
		t.Fatal("loop still running")
	}
}

func TestRunner_LastActive(t *testing.T) {
	f := newFixture(t, `["ab"]`, 20)
	before := f.runner.LastActive()
	f.clock.Advance(time.Minute)
	f.snapshot(t)
	assert.Equal(t, time.Minute, f.runner.LastActive().Sub(before))
}
