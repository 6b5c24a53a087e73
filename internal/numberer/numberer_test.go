package numberer_test

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ms-boxoffice/internal/numberer"
)

func TestNextRangeSingleSeat(t *testing.T) {
	assert.Equal(t, "146", numberer.NextRange(145, 1))
	assert.Equal(t, "1", numberer.NextRange(0, 1))
}

func TestNextRangeMultipleSeats(t *testing.T) {
	assert.Equal(t, "146 - 150", numberer.NextRange(145, 5))
	assert.Equal(t, "1 - 2", numberer.NextRange(0, 2))
	assert.Equal(t, "146 - 148", numberer.NextRange(145, 3))
}

func TestNextRangeIsContiguous(t *testing.T) {
	// Walking the sold count through a sequence of allocations must
	// produce strictly increasing, gap-free, non-overlapping ranges.
	sold := 0
	quantities := []int{1, 3, 1, 7, 2}
	expected := []string{"1", "2 - 4", "5", "6 - 12", "13 - 14"}

	for i, quantity := range quantities {
		assert.Equal(t, expected[i], numberer.NextRange(sold, quantity))
		sold += quantity
	}
}

func TestMintIDShape(t *testing.T) {
	idPattern := regexp.MustCompile(`^DINALI-26-\d{3,}-[A-Z0-9]{5}$`)

	assert.Regexp(t, idPattern, numberer.MintID("DINALI-26", 148))
	assert.Regexp(t, idPattern, numberer.MintID("DINALI-26", 7))
}

func TestMintIDPadsSequenceToThreeDigits(t *testing.T) {
	id := numberer.MintID("EVT", 7)
	assert.Regexp(t, `^EVT-007-`, id)

	id = numberer.MintID("EVT", 148)
	assert.Regexp(t, `^EVT-148-`, id)
}

func TestMintIDSequenceGrowsPastThreeDigits(t *testing.T) {
	id := numberer.MintID("EVT", 1042)
	assert.Regexp(t, `^EVT-1042-`, id)
}

func TestMintIDUniqueness(t *testing.T) {
	// The random suffix must keep ids collision-free at realistic volumes.
	seen := make(map[string]struct{}, 10000)
	for i := 0; i < 10000; i++ {
		id := numberer.MintID("DINALI-26", i)
		_, dup := seen[id]
		require.False(t, dup, "duplicate id generated: %s", id)
		seen[id] = struct{}{}
	}
}

func TestMintIDSuffixVariesForSameSequence(t *testing.T) {
	// Same sequence number, regenerated suffix.
	a := numberer.MintID("EVT", 148)
	b := numberer.MintID("EVT", 148)
	assert.NotEqual(t, a, b)
}
