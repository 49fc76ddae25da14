package api

import (
	"crypto/rand"
	"math/big"
	"regexp"
	"strings"
)

const (
	idLength = 24
	charset  = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// ID prefixes, one per entity.
const (
	PrefixProfile  = "usr_"
	PrefixProject  = "prj_"
	PrefixPhase    = "phs_"
	PrefixUpdate   = "upd_"
	PrefixMetric   = "met_"
	PrefixDocument = "doc_"
	PrefixMessage  = "msg_"
)

var idPattern = regexp.MustCompile(`^(usr|prj|phs|upd|met|doc|msg)_[a-zA-Z0-9]{24}$`)

// NewID generates an ID with the given prefix followed by 24
// cryptographically random alphanumeric characters.
func NewID(prefix string) string {
	return prefix + randomAlphanumeric(idLength)
}

// ValidateID checks that id is well formed and carries the expected prefix.
func ValidateID(prefix, id string) bool {
	return strings.HasPrefix(id, prefix) && idPattern.MatchString(id)
}

func randomAlphanumeric(n int) string {
	max := big.NewInt(int64(len(charset)))
	b := make([]byte, n)
	for i := range b {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			panic("crypto/rand failed: " + err.Error())
		}
		b[i] = charset[idx.Int64()]
	}
	return string(b)
}
