/*
Package randx generates the random identifiers used by the chat widget.

Client identities and message ids draw on crypto/rand; message ids add a nanoid suffix
to a millisecond timestamp so two clients writing in the same millisecond do not collide.
*/
package randx

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	// Base36Chars is the alphabet of the random part of a user id.
	Base36Chars = "0123456789abcdefghijklmnopqrstuvwxyz"

	// UserIDPrefix prefixes every generated user id.
	UserIDPrefix = "user_"

	// UserIDRawLength is the length of the random part of a user id.
	UserIDRawLength = 9

	// UsernamePrefix prefixes every generated display name.
	UsernamePrefix = "Anonymous"

	// UsernameSpace bounds the numeric suffix of a display name: [0, UsernameSpace).
	UsernameSpace = 9999

	// MessageSuffixAlphabet and MessageSuffixLength shape the random part of a message id.
	MessageSuffixAlphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	MessageSuffixLength   = 12
)

// UserID returns a new "user_" id followed by UserIDRawLength base36 characters.
func UserID() (string, error) {
	result := make([]byte, UserIDRawLength)
	limit := big.NewInt(int64(len(Base36Chars)))

	for i := range result {
		num, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", fmt.Errorf("failed to generate random number for user id: %w", err)
		}
		result[i] = Base36Chars[num.Int64()]
	}

	return UserIDPrefix + string(result), nil
}

// Username returns a display name such as "Anonymous4821".
func Username() (string, error) {
	num, err := rand.Int(rand.Reader, big.NewInt(UsernameSpace))
	if err != nil {
		return "", fmt.Errorf("failed to generate random number for username: %w", err)
	}

	return UsernamePrefix + strconv.FormatInt(num.Int64(), 10), nil
}

// MessageID returns "<unix millis>_<random suffix>" for a message created at ts.
func MessageID(ts time.Time) (string, error) {
	suffix, err := gonanoid.Generate(MessageSuffixAlphabet, MessageSuffixLength)
	if err != nil {
		return "", fmt.Errorf("failed to generate message id suffix: %w", err)
	}

	return strconv.FormatInt(ts.UnixMilli(), 10) + "_" + suffix, nil
}

// IsValidUserID reports whether id has the shape produced by UserID.
func IsValidUserID(id string) bool {
	raw, ok := strings.CutPrefix(id, UserIDPrefix)
	if !ok || len(raw) != UserIDRawLength {
		return false
	}

	for _, char := range raw {
		if !strings.ContainsRune(Base36Chars, char) {
			return false
		}
	}

	return true
}
