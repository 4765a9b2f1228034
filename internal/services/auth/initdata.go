package auth

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
)

var (
	ErrMissingSignature = errors.New("init data signature is missing")
	ErrBadSignature     = errors.New("init data signature mismatch")
	ErrMalformedUser    = errors.New("init data user payload is malformed")
	ErrMissingUserID    = errors.New("init data user id is missing")
)

// UserClaim is the identity extracted from verified Mini App init data.
type UserClaim struct {
	TelegramID int64
	Username   string
	FirstName  string
	LastName   string
}

// Verifier checks Telegram Mini App init data against the bot token.
type Verifier struct {
	botToken string
	devMode  bool
}

func NewVerifier(botToken string, devMode bool) *Verifier {
	return &Verifier{botToken: botToken, devMode: devMode}
}

// Verify validates the signature chain and returns the embedded user.
// In dev mode a bare positive integer is accepted as the telegram id so the
// Mini App can be exercised without a real Telegram client.
func (v *Verifier) Verify(initData string) (UserClaim, error) {
	trimmed := strings.TrimSpace(initData)
	if trimmed == "" {
		return UserClaim{}, ErrMissingSignature
	}

	if v.devMode {
		if id, err := strconv.ParseInt(trimmed, 10, 64); err == nil && id > 0 {
			return UserClaim{TelegramID: id}, nil
		}
	}

	query, err := url.ParseQuery(trimmed)
	if err != nil {
		return UserClaim{}, fmt.Errorf("parse init data: %w", ErrBadSignature)
	}

	hash := strings.TrimSpace(query.Get("hash"))
	if hash == "" {
		return UserClaim{}, ErrMissingSignature
	}
	query.Del("hash")

	if !v.verifyHash(buildDataCheckString(query), hash) {
		return UserClaim{}, ErrBadSignature
	}

	return parseUserClaim(query)
}

func parseUserClaim(query url.Values) (UserClaim, error) {
	rawUser := strings.TrimSpace(query.Get("user"))
	if rawUser == "" {
		return UserClaim{}, ErrMissingUserID
	}

	var payload struct {
		ID        int64  `json:"id"`
		Username  string `json:"username"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	}
	if err := json.Unmarshal([]byte(rawUser), &payload); err != nil {
		return UserClaim{}, ErrMalformedUser
	}
	if payload.ID <= 0 {
		return UserClaim{}, ErrMissingUserID
	}

	return UserClaim{
		TelegramID: payload.ID,
		Username:   payload.Username,
		FirstName:  payload.FirstName,
		LastName:   payload.LastName,
	}, nil
}

// buildDataCheckString joins the remaining pairs sorted by key, one per
// line, exactly as the Mini App signing scheme prescribes.
func buildDataCheckString(query url.Values) string {
	pairs := make([]string, 0, len(query))
	for k, v := range query {
		if len(v) == 0 {
			pairs = append(pairs, k+"=")
			continue
		}
		pairs = append(pairs, k+"="+v[0])
	}
	sort.Strings(pairs)
	return strings.Join(pairs, "\n")
}

func (v *Verifier) verifyHash(dataCheckString, incomingHash string) bool {
	hashLower := strings.ToLower(strings.TrimSpace(incomingHash))
	if hashLower == "" {
		return false
	}

	secret := hmacSHA256([]byte("WebAppData"), []byte(v.botToken))
	computed := hex.EncodeToString(hmacSHA256(secret, []byte(dataCheckString)))
	return hmac.Equal([]byte(hashLower), []byte(computed))
}

func hmacSHA256(key, data []byte) []byte {
	h := hmac.New(sha256.New, key)
	h.Write(data)
	return h.Sum(nil)
}
