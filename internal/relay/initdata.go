package relay

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

// ErrInitDataSignature means the init data hash does not match the bot token.
var ErrInitDataSignature = errors.New("relay: init data signature mismatch")

// ErrInitDataExpired means auth_date is missing or older than the allowed age.
var ErrInitDataExpired = errors.New("relay: init data expired")

// Identity is the player identity supplied by the Telegram mini-app host.
// The zero Identity is a guest.
type Identity struct {
	UserID    int64  `json:"userId,omitempty"`
	Username  string `json:"username,omitempty"`
	FirstName string `json:"firstName,omitempty"`
}

// Guest reports whether no Telegram user is attached.
func (id Identity) Guest() bool { return id.UserID == 0 }

// DisplayName returns the username, else the first name, else fallback.
func (id Identity) DisplayName(fallback string) string {
	if n := strings.TrimSpace(id.Username); n != "" {
		return n
	}
	if n := strings.TrimSpace(id.FirstName); n != "" {
		return n
	}
	return fallback
}

// ParseInitData reads Telegram WebApp init data (the query string the host
// passes to the mini-app). When botToken is non-empty the "hash" field must
// be the HMAC-SHA256 of the sorted data-check string keyed with
// HMAC-SHA256("WebAppData", botToken), and a positive maxAge bounds how far
// auth_date may lie behind now. Empty raw yields a guest.
func ParseInitData(raw, botToken string, maxAge time.Duration, now time.Time) (Identity, error) {
	if strings.TrimSpace(raw) == "" {
		return Identity{}, nil
	}
	vals, err := url.ParseQuery(raw)
	if err != nil {
		return Identity{}, fmt.Errorf("parse init data: %w", err)
	}
	if botToken != "" {
		if err := verifyInitData(vals, botToken); err != nil {
			return Identity{}, err
		}
		if err := checkAuthDate(vals, maxAge, now); err != nil {
			return Identity{}, err
		}
	}

	u := vals.Get("user")
	if u == "" {
		return Identity{}, nil
	}
	var user struct {
		ID        int64  `json:"id"`
		Username  string `json:"username"`
		FirstName string `json:"first_name"`
	}
	if err := json.Unmarshal([]byte(u), &user); err != nil {
		return Identity{}, fmt.Errorf("parse init data user: %w", err)
	}
	return Identity{UserID: user.ID, Username: user.Username, FirstName: user.FirstName}, nil
}

func verifyInitData(vals url.Values, botToken string) error {
	got := vals.Get("hash")
	if got == "" {
		return ErrInitDataSignature
	}
	want := SignInitData(vals, botToken)
	if !hmac.Equal([]byte(strings.ToLower(got)), []byte(want)) {
		return ErrInitDataSignature
	}
	return nil
}

func checkAuthDate(vals url.Values, maxAge time.Duration, now time.Time) error {
	if maxAge <= 0 {
		return nil
	}
	sec, err := strconv.ParseInt(vals.Get("auth_date"), 10, 64)
	if err != nil {
		return ErrInitDataExpired
	}
	if now.Sub(time.Unix(sec, 0)) > maxAge {
		return ErrInitDataExpired
	}
	return nil
}

// SignInitData computes the hex hash Telegram attaches to init data.
// The "hash" key itself is excluded.
func SignInitData(vals url.Values, botToken string) string {
	keys := make([]string, 0, len(vals))
	for k := range vals {
		if k != "hash" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, k+"="+vals.Get(k))
	}

	secret := hmac.New(sha256.New, []byte("WebAppData"))
	secret.Write([]byte(botToken))
	mac := hmac.New(sha256.New, secret.Sum(nil))
	mac.Write([]byte(strings.Join(lines, "\n")))
	return hex.EncodeToString(mac.Sum(nil))
}
