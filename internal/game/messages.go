// internal/game/messages.go
//
// Player-facing text in Dhivehi, plus the formatted game-over and
// word-list messages.

package game

import "fmt"

// Player-facing text. The game ships in Dhivehi.
const (
	// DefaultPlayerName is used for leaderboard entries when the host
	// supplies no username or first name.
	DefaultPlayerName = "ޔޫސާގެނަން"

	MsgCorrect   = "ރަނގަޅު!"                                // "Correct!"
	MsgIncorrect = "ރަނގަޅެއް ނޫން!"                         // "Not right!"
	MsgCompleted = "ސާބަސް! ހުރިހާ ލަފުޒެއް ފުރޮޅާލެވިއްޖެ" // "Well done! Every word unscrambled"
	MsgProblem   = "މައްސަލައެއް ދިމާވެއްޖެ."                // "A problem occurred."

	missedWordPrefix = "ލަފުޒަކީ: " // "The word was: "
)

// MissedWordMessage is the game-over text after a timeout; it carries the
// unsolved word verbatim.
func MissedWordMessage(word string) string {
	return fmt.Sprintf(`%s"%s"`, missedWordPrefix, word)
}

// NoInitialWordsMessage explains that no word fits the first tier.
func NoInitialWordsMessage(maxLength int) string {
	return fmt.Sprintf("ފެށުމަށް ބޭނުންވާ (ކުރު %d އަކުރުންދަށް) ލަފުޒެއް ލިސްޓުގައި ނެތް!", maxLength)
}
