package services

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"lottery/domain/entities"
	"lottery/domain/interfaces"
)

// cryptoSource draws from crypto/rand, so no two draws share a seed
type cryptoSource struct{}

// NewCryptoSource returns the production random source
func NewCryptoSource() interfaces.RandomSource {
	return cryptoSource{}
}

func (cryptoSource) Intn(n int) (int, error) {
	if n <= 0 {
		return 0, fmt.Errorf("invalid random bound %d", n)
	}
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, fmt.Errorf("random generation failed: %w", err)
	}
	return int(v.Int64()), nil
}

// Sampler selects distinct participants uniformly without replacement
type Sampler struct {
	source interfaces.RandomSource
}

// NewSampler creates a sampler; a nil source means crypto/rand
func NewSampler(source interfaces.RandomSource) *Sampler {
	if source == nil {
		source = NewCryptoSource()
	}
	return &Sampler{source: source}
}

// Sample returns k distinct participants in draw order using a partial
// Fisher-Yates shuffle over a copy of pool. Every k-subset, and every
// ordering of it, is equally likely.
func (s *Sampler) Sample(pool []entities.Participant, k int) ([]entities.Participant, error) {
	n := len(pool)
	if k < 1 || k > n {
		return nil, fmt.Errorf("%w: cannot draw %d from %d participants", entities.ErrInvalidRequest, k, n)
	}

	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}

	for i := 0; i < k; i++ {
		r, err := s.source.Intn(n - i)
		if err != nil {
			return nil, err
		}
		j := i + r
		if j < i || j >= n {
			return nil, fmt.Errorf("random source returned %d outside [0, %d)", r, n-i)
		}
		idx[i], idx[j] = idx[j], idx[i]
	}

	winners := make([]entities.Participant, k)
	for i := 0; i < k; i++ {
		winners[i] = pool[idx[i]]
	}
	return winners, nil
}
