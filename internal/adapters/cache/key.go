package cache

import (
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
)

// Key identifies one calculator run over one store revision.
type Key struct {
	Calculator string
	Revision   uint64
	// Now is hashed with its location; period and month boundaries depend on it.
	Now time.Time
	// Params is a canonical rendering of the run's options.
	Params string
}

// Hash folds the key into a 64-bit digest.
func (k Key) Hash() uint64 {
	d := xxhash.New()
	_, _ = d.WriteString(k.Calculator)
	_, _ = d.WriteString("|")
	_, _ = d.WriteString(strconv.FormatUint(k.Revision, 10))
	_, _ = d.WriteString("|")
	_, _ = d.WriteString(k.Now.Format(time.RFC3339Nano))
	_, _ = d.WriteString("@")
	_, _ = d.WriteString(k.Now.Location().String())
	_, _ = d.WriteString("|")
	_, _ = d.WriteString(k.Params)
	return d.Sum64()
}
