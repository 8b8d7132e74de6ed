package postgres

import (
	"crypto/rand"
	"io"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// UserIDGenerator hands out ULIDs for users.id. Debtors, transactions and
// currencies use BIGSERIAL keys and never go through it.
//
// IDs minted within the same millisecond stay ordered, so activation links
// issued in a burst sort in creation order.
type UserIDGenerator struct {
	mu      sync.Mutex
	entropy io.Reader
	now     func() time.Time
}

func NewUserIDGenerator() *UserIDGenerator {
	return &UserIDGenerator{
		entropy: ulid.Monotonic(rand.Reader, 0),
		now:     time.Now,
	}
}

func (g *UserIDGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(g.now()), g.entropy).String()
}
