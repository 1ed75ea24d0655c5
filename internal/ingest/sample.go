package ingest

import (
	"math/rand/v2"

	"github.com/RoaringBitmap/roaring"
)

// MaxSample caps a spot-check verification.
const MaxSample = 100

// sampleIndices picks min(k, n, MaxSample) distinct indices in [0, n),
// returned in ascending order. The same seed yields the same sample.
func sampleIndices(n, k int, seed uint64) []int {
	k = min(k, n, MaxSample)
	if k <= 0 {
		return nil
	}
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	picked := roaring.New()
	for int(picked.GetCardinality()) < k {
		picked.Add(uint32(r.IntN(n)))
	}
	out := make([]int, 0, k)
	it := picked.Iterator()
	for it.HasNext() {
		out = append(out, int(it.Next()))
	}
	return out
}
