// internal/game/types.go
//
// Core type definitions for the unscramble game engine.
// Defines:
//   - Screen: which UI screen is active.
//   - Outcome: result of evaluating an answer.
//   - Event: inputs to Session.Apply (user actions, ticks, load results).
//   - Effect: side effects Session.Apply asks the shell to perform.
//   - View: read-only snapshot for rendering.

package game

import (
	"time"

	"github.com/basfurolhi/unscramble/internal/words"
)

// Screen is one of the mini-app screens. Exactly one is active.
type Screen string

const (
	ScreenLoading  Screen = "loading"
	ScreenStart    Screen = "start"
	ScreenPlaying  Screen = "playing"
	ScreenGameOver Screen = "game_over"
)

// Outcome is the result of Round.Place / Round.Evaluate.
type Outcome int

const (
	OutcomePending Outcome = iota // answer not complete, or nothing happened
	OutcomeCorrect
	OutcomeIncorrect
)

// MessageKind classifies feedback for styling.
type MessageKind string

const (
	KindNone      MessageKind = ""
	KindCorrect   MessageKind = "correct"
	KindIncorrect MessageKind = "incorrect"
)

// Feedback is a message shown to the player.
type Feedback struct {
	Text string      `json:"text,omitempty"`
	Kind MessageKind `json:"kind,omitempty"`
}

// ----------------------------------------------------------------------------
// Events

// Event is an input to Session.Apply.
type Event interface{ isEvent() }

// PoolLoaded delivers the word list fetched at boot.
type PoolLoaded struct{ Words *words.List }

// PoolFailed reports that the word list could not be loaded.
type PoolFailed struct{ Err error }

// StartGame starts a new game (from Start, or "play again" from GameOver).
type StartGame struct{}

// GoToStart returns from GameOver to the Start screen.
type GoToStart struct{}

// PlaceGrapheme moves a scrambled grapheme into the next empty slot.
type PlaceGrapheme struct{ Slot int }

// RetractSlot takes a grapheme out of an answer slot.
type RetractSlot struct{ Slot int }

// ClearAnswer retracts every answer slot.
type ClearAnswer struct{}

// Tick is one unit of the round countdown for generation Gen.
type Tick struct{ Gen uint64 }

// AdvanceRound fires after the post-solve delay for generation Gen.
type AdvanceRound struct{ Gen uint64 }

func (PoolLoaded) isEvent()    {}
func (PoolFailed) isEvent()    {}
func (StartGame) isEvent()     {}
func (GoToStart) isEvent()     {}
func (PlaceGrapheme) isEvent() {}
func (RetractSlot) isEvent()   {}
func (ClearAnswer) isEvent()   {}
func (Tick) isEvent()          {}
func (AdvanceRound) isEvent()  {}

// ----------------------------------------------------------------------------
// Effects

// Effect is a side effect requested by Session.Apply.
type Effect interface{ isEffect() }

// CancelTimers stops the round ticker and any pending AdvanceRound.
type CancelTimers struct{}

// StartTimer arms a ticker delivering Tick{Gen} once per unit.
type StartTimer struct {
	Gen   uint64
	Units int
}

// ScheduleAdvance delivers AdvanceRound{Gen} after Delay.
type ScheduleAdvance struct {
	Gen   uint64
	Delay time.Duration
}

// PersistScore appends an entry to the player's leaderboard.
type PersistScore struct {
	Name  string
	Score int
}

// NotifyRelay sends the final score to the host messaging channel.
type NotifyRelay struct{ Score int }

// LoadLeaderboard asks the shell to read the leaderboard for display.
type LoadLeaderboard struct{}

func (CancelTimers) isEffect()    {}
func (StartTimer) isEffect()      {}
func (ScheduleAdvance) isEffect() {}
func (PersistScore) isEffect()    {}
func (NotifyRelay) isEffect()     {}
func (LoadLeaderboard) isEffect() {}

// ----------------------------------------------------------------------------
// View

// Tile is one grapheme box in the scrambled row or the answer row.
type Tile struct {
	Grapheme string `json:"grapheme"`
	Used     bool   `json:"used,omitempty"`   // scrambled row: placed in a slot
	Filled   bool   `json:"filled,omitempty"` // answer row: holds a grapheme
}

// View is a rendering snapshot of a Session.
type View struct {
	Screen       Screen     `json:"screen"`
	LoadError    string     `json:"loadError,omitempty"`
	Score        int        `json:"score"`
	LastScore    int        `json:"lastScore"`
	FinalScore   int        `json:"finalScore"`
	TimeLeft     int        `json:"timeLeft"`
	TimerLevel   TimerLevel `json:"timerLevel"`
	TimerRunning bool       `json:"timerRunning"` // false while a solved round waits
	Scrambled    []Tile     `json:"scrambled,omitempty"`
	Answer       []Tile     `json:"answer,omitempty"`
	Message      Feedback   `json:"message"`
	GameOver     Feedback   `json:"gameOver"`
}
