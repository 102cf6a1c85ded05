// Package dice rolls the six-sided die used to move the player.
package dice

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand"
	"sync"

	"github.com/rocketscienceinc/snakeladder-backend/internal/entity"
)

// Roller draws a value from 1 to 6.
type Roller interface {
	Roll() int
}

// Die is a fair six-sided die, safe for concurrent use.
type Die struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// New - returns a die seeded with seed. The same seed yields the same sequence.
func New(seed int64) *Die {
	return &Die{
		rng: rand.New(rand.NewSource(seed)), //nolint: gosec // game dice, not crypto
	}
}

// NewRandom - returns a die seeded from crypto/rand.
func NewRandom() (*Die, error) {
	seed, err := NewSeed()
	if err != nil {
		return nil, err
	}

	return New(seed), nil
}

func (that *Die) Roll() int {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.rng.Intn(entity.DieFaces) + 1
}

// NewSeed generates a random seed using crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}

	return int64(binary.LittleEndian.Uint64(b[:])), nil
}
