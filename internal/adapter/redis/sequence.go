package redis

import (
	"context"
	"fmt"

	"github.com/mikeohgml-jpg/coaching-portal/internal/ledger"
	goredis "github.com/redis/go-redis/v9"
)

const sequenceKeyPrefix = "coaching:seq:"

// reserveScript raises the counter to at least the floor seen in the ledger,
// then increments it. The floor keeps the counter in step with rows written
// while Redis was not in use.
// ARGV: [1]=floor
var reserveScript = goredis.NewScript(`
local current = tonumber(redis.call('GET', KEYS[1])) or 0
local floor = tonumber(ARGV[1])
if floor > current then
  current = floor
end
current = current + 1
redis.call('SET', KEYS[1], current)
return current
`)

// SequenceAllocator hands out contract and invoice sequence numbers that
// are unique across every instance sharing the Redis server.
type SequenceAllocator struct {
	rdb goredis.Scripter
}

var _ ledger.SequenceAllocator = (*SequenceAllocator)(nil)

func NewSequenceAllocator(rdb goredis.Scripter) *SequenceAllocator {
	return &SequenceAllocator{rdb: rdb}
}

func (a *SequenceAllocator) Reserve(ctx context.Context, series string, floor int) (int, error) {
	n, err := reserveScript.Run(ctx, a.rdb, []string{sequenceKey(series)}, floor).Int()
	if err != nil {
		return 0, fmt.Errorf("reserve script failed for %s: %w", series, err)
	}
	return n, nil
}

func sequenceKey(series string) string {
	return sequenceKeyPrefix + series
}
