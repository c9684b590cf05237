package document

import (
	"crypto/rand"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

const (
	IDStrategyUUID = "uuid"
	IDStrategyULID = "ulid"
)

type IDGenerator interface {
	NewID() string
}

type UUIDGenerator struct{}

func (UUIDGenerator) NewID() string {
	return uuid.NewString()
}

// ULIDGenerator produces lexicographically sortable ids, so documents sorted
// by _id come back in creation order.
type ULIDGenerator struct {
	mu      sync.Mutex
	entropy io.Reader
	now     func() time.Time
}

func NewULIDGenerator() *ULIDGenerator {
	return &ULIDGenerator{
		entropy: ulid.Monotonic(rand.Reader, 0),
		now:     time.Now,
	}
}

func (g *ULIDGenerator) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(g.now()), g.entropy).String()
}

func NewIDGenerator(strategy string) (IDGenerator, error) {
	switch strategy {
	case "", IDStrategyUUID:
		return UUIDGenerator{}, nil
	case IDStrategyULID:
		return NewULIDGenerator(), nil
	default:
		return nil, fmt.Errorf("unknown id strategy: %s", strategy)
	}
}
