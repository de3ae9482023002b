package tuflowfv

import (
	"github.com/notargets/gomdal/cf"
	"github.com/notargets/gomdal/types"
)

// LevelChunkSize bounds the layer count scan's buffer
const LevelChunkSize = 1000

type levelState uint8

const (
	levelsUnknown levelState = iota
	levelsNone               // No layering, or every face has zero layers
	levelsKnown
)

// levelCount memoises the largest per face layer count of one file
type levelCount struct {
	state levelState
	max   int
}

func (lc *levelCount) get(src cf.ArraySource, facesCount int) (int, error) {
	if lc.state != levelsUnknown {
		return lc.max, nil
	}
	id := src.ArrayID(arrayLevels)
	if id == cf.NoArray {
		lc.state, lc.max = levelsNone, 0
		return 0, nil
	}
	var maxLevels int
	for start := 0; start < facesCount; start += LevelChunkSize {
		vals, err := src.ReadInts(id, start, min(LevelChunkSize, facesCount-start))
		if err != nil {
			return 0, types.Wrap(types.ErrInvalidData, err, "reading %s", arrayLevels)
		}
		for _, v := range vals {
			maxLevels = max(maxLevels, v)
		}
	}
	lc.max = maxLevels
	if maxLevels == 0 {
		lc.state = levelsNone
	} else {
		lc.state = levelsKnown
	}
	return lc.max, nil
}
