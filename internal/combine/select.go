// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package combine

import (
	"fmt"
	"iter"
	"math/rand/v2"

	"github.com/pdiddy/collection-engine/internal/exclusion"
	"github.com/pdiddy/collection-engine/pkg/types"
)

// Select returns up to n valid combinations.
//
// In exhaustive mode it returns the first n in row-major order. In random
// mode it returns n distinct combinations drawn uniformly with rng, in
// random order. n <= 0 means every valid combination. rng is required in
// random mode.
func Select(s Space, set *exclusion.Set, n int, mode types.SelectionMode, rng *rand.Rand) ([]types.Combination, error) {
	switch mode {
	case types.ModeExhaustive, "":
		var out []types.Combination
		for c := range s.Valid(set) {
			if n > 0 && len(out) >= n {
				break
			}
			out = append(out, c)
		}
		return out, nil

	case types.ModeRandom:
		if rng == nil {
			return nil, fmt.Errorf("random selection requires a random source")
		}
		var picked []types.Combination
		if n > 0 {
			picked = sample(s.Valid(set), n, rng)
		} else {
			for c := range s.Valid(set) {
				picked = append(picked, c)
			}
		}
		rng.Shuffle(len(picked), func(i, j int) {
			picked[i], picked[j] = picked[j], picked[i]
		})
		return picked, nil

	default:
		return nil, fmt.Errorf("unknown selection mode %q", mode)
	}
}

// maxReservoirPrealloc bounds the up-front allocation of sample; larger
// reservoirs grow as items arrive, so n may exceed the space size.
const maxReservoirPrealloc = 1024

// sample draws up to n items uniformly from seq in one pass, holding at
// most n items in memory (reservoir sampling, Algorithm R). The result
// keeps the reservoir's slot order and is not itself shuffled.
func sample(seq iter.Seq[types.Combination], n int, rng *rand.Rand) []types.Combination {
	reservoir := make([]types.Combination, 0, min(n, maxReservoirPrealloc))
	seen := 0
	for c := range seq {
		seen++
		if len(reservoir) < n {
			reservoir = append(reservoir, c)
			continue
		}
		if j := rng.IntN(seen); j < n {
			reservoir[j] = c
		}
	}
	return reservoir
}

// NewRand returns a PCG-backed random source for seed. Tests inject a fixed
// seed; the CLI picks one per run and records it.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
