package services

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"lottery/domain/entities"
	"lottery/domain/testhelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSampler_ReturnsDistinctMembersOfPool(t *testing.T) {
	t.Parallel()

	sampler := NewSampler(nil)

	for n := 1; n <= 12; n++ {
		roster := testhelpers.NewRoster(n)
		for k := 1; k <= n; k++ {
			winners, err := sampler.Sample(roster.Participants, k)
			require.NoError(t, err)
			require.Len(t, winners, k)

			seen := map[string]bool{}
			for _, w := range winners {
				assert.True(t, roster.Contains(w.ID), "winner %s not on roster", w.ID)
				assert.False(t, seen[w.ID], "winner %s drawn twice", w.ID)
				seen[w.ID] = true
			}
		}
	}
}

func TestSampler_RejectsOutOfBoundsCount(t *testing.T) {
	t.Parallel()

	sampler := NewSampler(nil)
	roster := testhelpers.NewRoster(3)

	for _, k := range []int{-1, 0, 4} {
		_, err := sampler.Sample(roster.Participants, k)
		assert.True(t, errors.Is(err, entities.ErrInvalidRequest), "k=%d", k)
	}

	_, err := sampler.Sample(nil, 1)
	assert.True(t, errors.Is(err, entities.ErrInvalidRequest))
}

func TestSampler_DoesNotMutatePool(t *testing.T) {
	t.Parallel()

	roster := testhelpers.NewRoster(5)
	before := make([]string, 0, 5)
	for _, p := range roster.Participants {
		before = append(before, p.ID)
	}

	_, err := NewSampler(nil).Sample(roster.Participants, 5)
	require.NoError(t, err)

	after := make([]string, 0, 5)
	for _, p := range roster.Participants {
		after = append(after, p.ID)
	}
	assert.Equal(t, before, after)
}

func TestSampler_FollowsFisherYatesOrder(t *testing.T) {
	t.Parallel()

	// Pool P1..P5. First pick swaps index 0 with 0+3, second swaps 1 with 1+0.
	sampler := NewSampler(testhelpers.NewSequenceSource(3, 0))
	roster := testhelpers.NewRoster(5)

	winners, err := sampler.Sample(roster.Participants, 2)
	require.NoError(t, err)
	assert.Equal(t, "P4", winners[0].ID)
	assert.Equal(t, "P2", winners[1].ID)
}

func TestSampler_PropagatesSourceError(t *testing.T) {
	t.Parallel()

	sampler := NewSampler(testhelpers.NewSequenceSource())
	_, err := sampler.Sample(testhelpers.NewRoster(3).Participants, 1)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "sequence exhausted")
}

func TestSampler_OrderedPairsAreUniform(t *testing.T) {
	t.Parallel()

	// 4 participants, 2 winners: 12 ordered outcomes, each expected 1/12 of the
	// time. The bound is loose enough to be stable and tight enough to catch a
	// bias toward roster order.
	const trials = 24000
	sampler := NewSampler(nil)
	roster := testhelpers.NewRoster(4)

	counts := map[string]int{}
	for i := 0; i < trials; i++ {
		winners, err := sampler.Sample(roster.Participants, 2)
		require.NoError(t, err)
		counts[fmt.Sprintf("%s,%s", winners[0].ID, winners[1].ID)]++
	}

	require.Len(t, counts, 12)
	expected := float64(trials) / 12
	for outcome, c := range counts {
		deviation := (float64(c) - expected) / expected
		assert.Less(t, deviation, 0.15, "outcome %s over-represented: %d", outcome, c)
		assert.Greater(t, deviation, -0.15, "outcome %s under-represented: %d", outcome, c)
	}

	firstPlace := map[string]int{}
	for outcome, c := range counts {
		firstPlace[strings.Split(outcome, ",")[0]] += c
	}
	for id, c := range firstPlace {
		assert.InDelta(t, trials/4, c, trials/4*0.1, "first place bias for %s", id)
	}
}

func TestCryptoSource_Intn(t *testing.T) {
	t.Parallel()

	src := NewCryptoSource()
	for i := 0; i < 200; i++ {
		v, err := src.Intn(7)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, v, 0)
		assert.Less(t, v, 7)
	}

	_, err := src.Intn(0)
	assert.Error(t, err)
}
