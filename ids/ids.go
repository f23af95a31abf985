// Package ids generates time-ordered lexicographic identifiers for the
// entities the core hands out: sessions, messages, parts, and
// permission/question requests.
package ids

import (
	"encoding/hex"
	"sync"

	"github.com/segmentio/ksuid"
)

// Prefix identifies the kind of entity an ID names.
type Prefix string

const (
	Session Prefix = "ses"
	Message Prefix = "msg"
	Part    Prefix = "prt"
	Request Prefix = "req"
)

// New returns a fresh ascending (oldest-first sortable) ID for the given
// prefix, e.g. "ses_1h2k3j...".
func New(prefix Prefix) string {
	lastMu.Lock()
	defer lastMu.Unlock()
	id := ksuid.New()
	if ksuid.Compare(id, last) <= 0 {
		id = last.Next()
	}
	last = id
	return string(prefix) + "_" + id.String()
}

var (
	lastMu sync.Mutex
	last   ksuid.KSUID
)

// Descending returns a newest-first sortable ID for the given prefix.
// It inverts every byte of a fresh KSUID's 20-byte representation before
// hex-encoding, so lexicographic order on the result runs newest-first,
// mirroring the ascending/descending ID pair the original session store
// used for listing queries.
func Descending(prefix Prefix) string {
	raw := ksuid.New().Bytes()
	inverted := make([]byte, len(raw))
	for i, b := range raw {
		inverted[i] = 0xFF - b
	}
	return string(prefix) + "_" + hex.EncodeToString(inverted)
}
