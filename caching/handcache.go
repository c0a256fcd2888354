package caches

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"

	"github.com/XCI9/CardGame/card31"
)

// DefaultSize holds every 1, 2 and 3 card combination of a 31 card deck.
const DefaultSize = 31 + 31*30/2 + 31*30*29/6

// HandCache memoizes card31.Evaluate. Selections change on every click in
// the client and the bot searches all combinations of its hand, so the
// same sets are evaluated many times.
type HandCache struct {
	hands *lru.Cache
}

func NewHandCache(size int) (*HandCache, error) {
	if size <= 0 {
		return nil, fmt.Errorf("Invalid cache size [%d]", size)
	}
	hands, err := lru.New(size)
	if err != nil {
		return nil, errors.Wrap(err, "Unable to initialize hand cache")
	}
	return &HandCache{hands: hands}, nil
}

var defaultCache = createCache()

func createCache() *HandCache {
	c, err := NewHandCache(DefaultSize)
	if err != nil {
		panic("Cannot initialize hand cache")
	}
	return c
}

// Default returns the process wide cache.
func Default() *HandCache {
	return defaultCache
}

// Evaluate returns the cached evaluation of cards. The returned hands
// must not be modified.
func (c *HandCache) Evaluate(cards card31.Cards) []card31.Hand {
	if len(cards) == 0 || len(cards) > 3 {
		return nil
	}
	for _, card := range cards {
		if !card.Valid() {
			return nil
		}
	}
	sorted := cards.Clone()
	sorted.Sort()
	k := key(sorted)
	if v, exists := c.hands.Get(k); exists {
		return v.([]card31.Hand)
	}
	hands := card31.Evaluate(sorted)
	c.hands.Add(k, hands)
	return hands
}

func (c *HandCache) Len() int {
	return c.hands.Len()
}

// key packs up to three sorted cards into one integer.
func key(cards card31.Cards) uint32 {
	var k uint32
	for _, c := range cards {
		k = k<<5 | uint32(c)&0x1f
	}
	return k | uint32(len(cards))<<15
}
