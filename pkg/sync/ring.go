package sync

import (
	"encoding/binary"

	"github.com/emirpasic/gods/maps/treemap"
	"github.com/emirpasic/gods/utils"
	"github.com/spaolacci/murmur3"
)

// stripeRing is a consistent hash ring mapping keys, typically account
// addresses, onto stripe indices
type stripeRing struct {
	points *treemap.Map

	// first is the stripe at the lowest point, used when a hash wraps past
	// the end of the ring
	first int
}

// newStripeRing places pointsPerStripe virtual points for each of the stripes
func newStripeRing(stripes, pointsPerStripe uint) *stripeRing {
	points := treemap.NewWith(utils.Int64Comparator)

	var seed [12]byte
	for stripe := uint32(0); stripe < uint32(stripes); stripe++ {
		binary.LittleEndian.PutUint32(seed[:4], stripe)
		for point := uint64(0); point < uint64(pointsPerStripe); point++ {
			binary.LittleEndian.PutUint64(seed[4:], point)
			points.Put(hashKey(seed[:]), int(stripe))
		}
	}

	r := &stripeRing{points: points}
	if _, first := points.Min(); first != nil {
		r.first = first.(int)
	}
	return r
}

func (r *stripeRing) stripe(key []byte) int {
	if _, stripe := r.points.Ceiling(hashKey(key)); stripe != nil {
		return stripe.(int)
	}
	return r.first
}

func hashKey(key []byte) int64 {
	h, _ := murmur3.Sum128(key)
	return int64(h)
}
