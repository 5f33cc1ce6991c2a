package common

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

func randomBase36(n int) (string, error) {
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		idx, err := rand.Int(rand.Reader, big.NewInt(int64(len(base36))))
		if err != nil {
			return "", err
		}
		out[i] = base36[idx.Int64()]
	}
	return string(out), nil
}

// NewSessionID returns an opaque session identifier of the form
// session_<unix-ms>_<9-char-base36>.
func NewSessionID() (string, error) {
	suffix, err := randomBase36(9)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("session_%d_%s", time.Now().UnixMilli(), suffix), nil
}

var (
	analysisMu     sync.Mutex
	analysisLastMS int64
)

// NewAnalysisID returns an identifier of the form analysis_<unix-ms>.
// The millisecond value is bumped when two calls land on the same tick, so
// every identifier issued by the process is distinct.
func NewAnalysisID() string {
	analysisMu.Lock()
	defer analysisMu.Unlock()
	ms := time.Now().UnixMilli()
	if ms <= analysisLastMS {
		ms = analysisLastMS + 1
	}
	analysisLastMS = ms
	return fmt.Sprintf("analysis_%d", ms)
}

// NewULID returns a new ULID string. Used for request and job identifiers.
func NewULID() (string, error) {
	id, err := ulid.New(ulid.Timestamp(time.Now()), rand.Reader)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
