package orders

import (
	"context"
	"fmt"
	"time"

	pkgerrors "github.com/blackhawk-2003/Readjunction-Major-sub000/pkg/errors"
)

// counterTTL keeps yesterday's counter around long enough for clock skew
// before Redis reaps it.
const counterTTL = 48 * time.Hour

// Sequencer is the atomic counter surface backing order numbers.
type Sequencer interface {
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
	CounterKey(name string) string
}

// NumberSource produces unique order numbers.
type NumberSource interface {
	Next(ctx context.Context) (string, error)
}

// OrderNumberGenerator derives RJ-prefixed order numbers from a date-scoped
// atomic counter: RJ + YYMMDD + zero-padded daily sequence. The counter is
// the only source; there is no random fallback, so duplicates are
// impossible as long as Redis is up (and creation fails loudly when it is
// not).
type OrderNumberGenerator struct {
	seq Sequencer
	now func() time.Time
}

func NewOrderNumberGenerator(seq Sequencer) *OrderNumberGenerator {
	return &OrderNumberGenerator{seq: seq, now: time.Now}
}

// Next reserves and formats the next order number for today.
func (g *OrderNumberGenerator) Next(ctx context.Context) (string, error) {
	day := g.now().UTC().Format("060102")
	key := g.seq.CounterKey("orders:" + day)
	n, err := g.seq.IncrWithTTL(ctx, key, counterTTL)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reserving order number")
	}
	return fmt.Sprintf("RJ%s%04d", day, n), nil
}
