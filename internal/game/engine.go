// internal/game/engine.go
//
// Game session engine: the screen state machine plus everything a single
// player's session mutates (pool consumption, round, score, difficulty,
// countdown). Session.Apply is a pure transition function over events; all
// I/O (timers, persistence, relay) is returned as Effects for the shell.
//
// Screens:
//   loading  → start      word list loaded and playable
//   loading  (dead end)   load failed, or no word fits the first tier
//   start    → playing    StartGame
//   playing  → game_over  countdown expired, or pool exhausted
//   game_over → playing   StartGame ("play again")
//   game_over → start     GoToStart
//
// Every new round and every screen change bumps the generation counter;
// Tick and AdvanceRound events carrying an older generation are ignored, so
// nothing scheduled for a previous round can fire into the next one.

package game

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/basfurolhi/unscramble/internal/words"
)

// ErrNoInitialWords means no loaded word fits the first difficulty tier.
var ErrNoInitialWords = errors.New("game: no word fits the first difficulty tier")

const (
	defaultRoundUnits   = 20
	defaultAdvanceDelay = 1200 * time.Millisecond
)

// Config holds per-session game settings.
type Config struct {
	Difficulty   Table
	RoundUnits   int           // countdown length per round
	AdvanceDelay time.Duration // pause after a correct answer
	PlayerName   string        // leaderboard display name
}

// DefaultConfig returns the shipped game settings.
func DefaultConfig() Config {
	return Config{
		Difficulty:   DefaultTable,
		RoundUnits:   defaultRoundUnits,
		AdvanceDelay: defaultAdvanceDelay,
		PlayerName:   DefaultPlayerName,
	}
}

// Session is the game session aggregate.
type Session struct {
	cfg Config
	rng *rand.Rand

	screen  Screen
	loadErr error
	pool    *words.Pool

	round     *Round
	score     int
	maxLength int
	timer     Timer
	gen       uint64
	advancing bool // solved, waiting for AdvanceRound

	message    Feedback
	gameOver   Feedback
	lastScore  int
	finalScore int
}

// NewSession returns a session on the Loading screen.
func NewSession(cfg Config, rng *rand.Rand) *Session {
	if len(cfg.Difficulty) == 0 {
		cfg.Difficulty = DefaultTable
	}
	if cfg.RoundUnits <= 0 {
		cfg.RoundUnits = defaultRoundUnits
	}
	if cfg.PlayerName == "" {
		cfg.PlayerName = DefaultPlayerName
	}
	return &Session{
		cfg:       cfg,
		rng:       rng,
		screen:    ScreenLoading,
		maxLength: cfg.Difficulty.Initial(),
	}
}

// Apply feeds one event through the state machine and returns the effects
// the shell must perform, in order. Events the current screen does not
// accept are ignored.
func (s *Session) Apply(ev Event) []Effect {
	switch e := ev.(type) {
	case PoolLoaded:
		if s.booting() {
			return s.onLoaded(e.Words)
		}
	case PoolFailed:
		if s.booting() {
			s.loadErr = e.Err
			if s.loadErr == nil {
				s.loadErr = errors.New("word list failed to load")
			}
			log.Error().Err(s.loadErr).Msg("word list load failed")
		}
	case StartGame:
		if s.screen == ScreenStart || s.screen == ScreenGameOver {
			return s.enterPlaying()
		}
	case GoToStart:
		if s.screen == ScreenGameOver {
			return s.enterStart(s.finalScore)
		}
	case PlaceGrapheme:
		if s.acceptsInput() {
			return s.onPlace(e.Slot)
		}
	case RetractSlot:
		if s.acceptsInput() && s.round.Retract(e.Slot) {
			s.message = Feedback{}
		}
	case ClearAnswer:
		if s.acceptsInput() {
			s.round.Clear()
			s.message = Feedback{}
		}
	case Tick:
		if s.screen == ScreenPlaying && s.timer.Tick(e.Gen) {
			return s.onTimeout()
		}
	case AdvanceRound:
		if s.screen == ScreenPlaying && s.advancing && e.Gen == s.gen {
			return s.nextRound()
		}
	}
	return nil
}

func (s *Session) booting() bool {
	return s.screen == ScreenLoading && s.loadErr == nil && s.pool == nil
}

func (s *Session) acceptsInput() bool {
	return s.screen == ScreenPlaying && s.round != nil && !s.advancing
}

// ---------------------------------------------------------------------------
// transitions

func (s *Session) onLoaded(list *words.List) []Effect {
	if list == nil || list.Len() == 0 {
		s.loadErr = &words.LoadError{Reason: "word list is empty"}
		return nil
	}
	first := s.cfg.Difficulty.Initial()
	if list.CountWithin(first) == 0 {
		s.loadErr = fmt.Errorf("%w (max %d graphemes)", ErrNoInitialWords, first)
		log.Error().Int("maxLength", first).Int("words", list.Len()).Msg("no word fits the first difficulty tier")
		return nil
	}
	s.pool = words.NewPool(list)
	log.Debug().Int("words", list.Len()).Msg("word list ready")
	return s.enterStart(0)
}

func (s *Session) enterStart(lastScore int) []Effect {
	s.screen = ScreenStart
	s.stopRound()
	s.lastScore = lastScore
	return []Effect{CancelTimers{}, LoadLeaderboard{}}
}

func (s *Session) enterPlaying() []Effect {
	s.screen = ScreenPlaying
	s.score = 0
	s.pool.Reset()
	s.maxLength = s.cfg.Difficulty.Initial()
	s.round = nil
	s.message = Feedback{}
	s.gameOver = Feedback{}
	return s.nextRound()
}

func (s *Session) enterGameOver(fb Feedback) []Effect {
	s.screen = ScreenGameOver
	s.stopRound()
	s.round = nil
	s.finalScore = s.score
	s.gameOver = fb
	return []Effect{
		CancelTimers{},
		PersistScore{Name: s.cfg.PlayerName, Score: s.score},
		NotifyRelay{Score: s.score},
	}
}

// stopRound invalidates the countdown and any pending advance.
func (s *Session) stopRound() {
	s.timer.Stop()
	s.advancing = false
	s.gen++
}

func (s *Session) nextRound() []Effect {
	s.stopRound()
	s.message = Feedback{}

	idx, err := s.pool.SelectNext(s.maxLength, s.rng)
	if errors.Is(err, words.ErrPoolExhausted) {
		log.Info().Int("score", s.score).Msg("all words used")
		return s.enterGameOver(Feedback{Text: MsgCompleted, Kind: KindCorrect})
	}
	if err != nil {
		log.Error().Err(err).Msg("select next word")
		return s.enterGameOver(Feedback{Text: MsgProblem, Kind: KindIncorrect})
	}

	s.round = NewRound(s.pool.List().Word(idx), s.rng)
	log.Debug().Int("maxLength", s.maxLength).Int("remaining", s.pool.Remaining()).Msg("round started")
	s.timer.Start(s.cfg.RoundUnits, s.gen)
	return []Effect{CancelTimers{}, StartTimer{Gen: s.gen, Units: s.cfg.RoundUnits}}
}

func (s *Session) onPlace(slot int) []Effect {
	switch s.round.Place(slot) {
	case OutcomeCorrect:
		return s.onCorrect()
	case OutcomeIncorrect:
		s.message = Feedback{Text: MsgIncorrect, Kind: KindIncorrect}
	}
	return nil
}

func (s *Session) onCorrect() []Effect {
	s.timer.Stop()
	s.advancing = true
	s.score++
	s.message = Feedback{Text: MsgCorrect, Kind: KindCorrect}

	if next := s.cfg.Difficulty.LevelFor(s.score); next != s.maxLength {
		log.Debug().Int("score", s.score).Int("maxLength", next).Msg("difficulty adjusted")
		s.maxLength = next
	}
	return []Effect{CancelTimers{}, ScheduleAdvance{Gen: s.gen, Delay: s.cfg.AdvanceDelay}}
}

func (s *Session) onTimeout() []Effect {
	word := s.round.Word()
	log.Debug().Str("word", word).Int("score", s.score).Msg("round timed out")
	return s.enterGameOver(Feedback{Text: MissedWordMessage(word), Kind: KindIncorrect})
}

// ---------------------------------------------------------------------------
// accessors

// Screen returns the active screen.
func (s *Session) Screen() Screen { return s.screen }

// Score returns the current game's score.
func (s *Session) Score() int { return s.score }

// MaxLength returns the difficulty bound used for the next selection.
func (s *Session) MaxLength() int { return s.maxLength }

// Round returns the round in progress, or nil.
func (s *Session) Round() *Round { return s.round }

// Gen returns the current generation.
func (s *Session) Gen() uint64 { return s.gen }

// LoadErr returns the boot failure, if any.
func (s *Session) LoadErr() error { return s.loadErr }

// View renders the session for display.
func (s *Session) View() View {
	v := View{
		Screen:       s.screen,
		Score:        s.score,
		LastScore:    s.lastScore,
		FinalScore:   s.finalScore,
		TimeLeft:     s.timer.Remaining(),
		TimerLevel:   s.timer.Level(),
		TimerRunning: s.timer.Running(),
		Message:      s.message,
		GameOver:     s.gameOver,
	}
	if s.loadErr != nil {
		v.LoadError = s.loadErr.Error()
		if errors.Is(s.loadErr, ErrNoInitialWords) {
			v.Message = Feedback{Text: NoInitialWordsMessage(s.cfg.Difficulty.Initial()), Kind: KindIncorrect}
		}
	}
	if s.round != nil {
		for i, g := range s.round.Scrambled() {
			v.Scrambled = append(v.Scrambled, Tile{Grapheme: g, Used: s.round.Used(i)})
		}
		for _, slot := range s.round.Answer() {
			v.Answer = append(v.Answer, Tile{Grapheme: slot.Grapheme, Filled: slot.Filled})
		}
	}
	return v
}
