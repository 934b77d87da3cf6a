package sync

import (
	"crypto/sha256"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripeRing_Consistency(t *testing.T) {
	r := newStripeRing(64, ringPointsPerStripe)
	other := newStripeRing(64, ringPointsPerStripe)

	for i := 0; i < 256; i++ {
		key := sha256.Sum256([]byte(fmt.Sprintf("account%d", i)))

		stripe := r.stripe(key[:])
		assert.True(t, stripe >= 0 && stripe < 64)
		assert.Equal(t, stripe, r.stripe(key[:]))
		assert.Equal(t, stripe, other.stripe(key[:]))
	}
}

func TestStripeRing_Distribution(t *testing.T) {
	stripes := 5
	iterations := 200000
	marginOfError := 0.25
	expected := float64(iterations / stripes)

	r := newStripeRing(uint(stripes), ringPointsPerStripe)

	hits := make(map[int]int)
	for i := 0; i < iterations; i++ {
		key := sha256.Sum256([]byte(fmt.Sprintf("account%d", i)))
		hits[r.stripe(key[:])]++
	}

	assert.Len(t, hits, stripes)
	for stripe, count := range hits {
		assert.True(t, math.Abs(float64(count)-expected) <= marginOfError*expected, "stripe %d got %d hits", stripe, count)
	}
}

func TestStripeRing_SingleStripe(t *testing.T) {
	r := newStripeRing(1, 1)
	for i := 0; i < 32; i++ {
		assert.Equal(t, 0, r.stripe([]byte(fmt.Sprintf("account%d", i))))
	}
}
