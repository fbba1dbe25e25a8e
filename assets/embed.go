// assets/embed.go
//
// Files shipped inside the binary:
//   - words.json: default word list used when WORDS_SOURCE is unset.
//   - sql/*.sql:  goose migrations applied by internal/storage.

package assets

import (
	"embed"
	"io/fs"
)

//go:embed words.json sql/*.sql
var FS embed.FS

// DefaultWords returns the raw JSON of the embedded word list.
func DefaultWords() ([]byte, error) {
	return FS.ReadFile("words.json")
}

// Migrations returns the embedded migration files rooted at sql/.
func Migrations() (fs.FS, error) {
	return fs.Sub(FS, "sql")
}
