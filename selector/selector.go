// Package selector maps a 256-bit digest to a prize index using cumulative percentage weights.
package selector

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/lunfardo314/fairwheel/util"
	"golang.org/x/crypto/blake2b"
)

const (
	TotalWeight = 100

	sliceSize = 8
	numSlices = 32 / sliceSize
	// values at or above rejectThreshold would make value % 100 biased toward low draws
	rejectThreshold = math.MaxUint64 - math.MaxUint64%TotalWeight
)

var (
	ErrEmptyWeights   = errors.New("weights must not be empty")
	ErrWeightsNot100  = errors.New("weights must sum up to 100")
	ErrWeightTooLarge = errors.New("single weight must not exceed 100")
)

// ValidateWeights checks the invariant the selector relies on
func ValidateWeights(weights []uint8) error {
	if len(weights) == 0 {
		return ErrEmptyWeights
	}
	for i, w := range weights {
		if w > TotalWeight {
			return fmt.Errorf("%w: weight #%d is %d", ErrWeightTooLarge, i, w)
		}
	}
	if sum := util.SumWide(weights...); sum != TotalWeight {
		return fmt.Errorf("%w: got %d", ErrWeightsNot100, sum)
	}
	return nil
}

// Draw returns uniformly distributed number in [0,100). Slices [0:8], [8:16], [16:24], [24:32]
// are read as little-endian uint64 in this order, the first one below the rejection
// threshold is used. When all slices are rejected the digest is re-hashed and the scan repeats
func Draw(digest [32]byte) uint64 {
	for {
		for i := 0; i < numSlices; i++ {
			v := binary.LittleEndian.Uint64(digest[i*sliceSize : (i+1)*sliceSize])
			if v < rejectThreshold {
				return v % TotalWeight
			}
		}
		digest = blake2b.Sum256(digest[:])
	}
}

// Select is a pure function of the digest and weights
func Select(digest [32]byte, weights []uint8) int {
	idx, _ := SelectWithDraw(digest, weights)
	return idx
}

func SelectWithDraw(digest [32]byte, weights []uint8) (int, uint64) {
	util.Assertf(len(weights) > 0, "SelectWithDraw: empty weights")
	draw := Draw(digest)
	return IndexByDraw(draw, weights), draw
}

// IndexByDraw is the first index whose cumulative weight strictly exceeds the draw.
// Falls back to the last index, which is unreachable when weights sum up to 100
func IndexByDraw(draw uint64, weights []uint8) int {
	var cumulative uint64
	for i, w := range weights {
		cumulative += uint64(w)
		if draw < cumulative {
			return i
		}
	}
	return len(weights) - 1
}
