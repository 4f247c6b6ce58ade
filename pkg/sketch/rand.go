package sketch

import (
	"math/rand/v2"

	"github.com/matzehuels/xkcdify/pkg/errors"
)

// Source yields uniformly distributed values in [0, 1).
//
// The perturbation engine draws exactly one value per interior node, in
// document order, so the same seed and the same input always produce the same
// output.
type Source interface {
	Float64() float64
}

// Generator names accepted by [NewSource].
const (
	RNGMersenne = "mt19937"
	RNGPCG      = "pcg"
)

// NewSource returns the named generator seeded with seed.
// An empty name selects [RNGMersenne].
func NewSource(name string, seed int64) (Source, error) {
	switch name {
	case "", RNGMersenne:
		return NewMT19937(seed), nil
	case RNGPCG:
		return NewPCG(uint64(seed)), nil
	default:
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown generator %q (must be %s or %s)", name, RNGMersenne, RNGPCG)
	}
}

// NewPCG returns a PCG generator from math/rand/v2. The second PCG word is
// derived from the seed.
func NewPCG(seed uint64) Source {
	return rand.New(rand.NewPCG(seed, seed^0xdeadbeef))
}

const (
	mtN         = 624
	mtM         = 397
	mtMatrixA   = 0x9908b0df
	mtUpperMask = 0x80000000
	mtLowerMask = 0x7fffffff
)

// MT19937 is the 32-bit Mersenne Twister.
//
// Seeding and Float64 follow CPython's random.Random exactly, so a sketch
// produced with seed n matches one produced by Python code calling
// random.Random(n).random() in the same order.
type MT19937 struct {
	mt  [mtN]uint32
	idx int
}

// NewMT19937 returns a generator seeded like random.Random(seed).
func NewMT19937(seed int64) *MT19937 {
	m := &MT19937{}
	m.Seed(seed)
	return m
}

// Seed reinitializes the generator. Negative seeds use their absolute value.
func (m *MT19937) Seed(seed int64) {
	var n uint64
	if seed < 0 {
		n = uint64(-(seed + 1)) + 1
	} else {
		n = uint64(seed)
	}
	key := []uint32{uint32(n)}
	if hi := uint32(n >> 32); hi != 0 {
		key = append(key, hi)
	}
	m.seedArray(key)
}

func (m *MT19937) seedGenrand(s uint32) {
	m.mt[0] = s
	for i := 1; i < mtN; i++ {
		prev := m.mt[i-1]
		m.mt[i] = 1812433253*(prev^(prev>>30)) + uint32(i)
	}
	m.idx = mtN
}

func (m *MT19937) seedArray(key []uint32) {
	m.seedGenrand(19650218)
	i, j := 1, 0
	for k := max(mtN, len(key)); k > 0; k-- {
		prev := m.mt[i-1]
		m.mt[i] = (m.mt[i] ^ ((prev ^ (prev >> 30)) * 1664525)) + key[j] + uint32(j)
		i++
		j++
		if i >= mtN {
			m.mt[0] = m.mt[mtN-1]
			i = 1
		}
		if j >= len(key) {
			j = 0
		}
	}
	for k := mtN - 1; k > 0; k-- {
		prev := m.mt[i-1]
		m.mt[i] = (m.mt[i] ^ ((prev ^ (prev >> 30)) * 1566083941)) - uint32(i)
		i++
		if i >= mtN {
			m.mt[0] = m.mt[mtN-1]
			i = 1
		}
	}
	m.mt[0] = 0x80000000
}

func (m *MT19937) twist() {
	for i := range mtN {
		y := (m.mt[i] & mtUpperMask) | (m.mt[(i+1)%mtN] & mtLowerMask)
		v := m.mt[(i+mtM)%mtN] ^ (y >> 1)
		if y&1 != 0 {
			v ^= mtMatrixA
		}
		m.mt[i] = v
	}
	m.idx = 0
}

// Uint32 returns the next tempered 32-bit output.
func (m *MT19937) Uint32() uint32 {
	if m.idx >= mtN {
		m.twist()
	}
	y := m.mt[m.idx]
	m.idx++
	y ^= y >> 11
	y ^= (y << 7) & 0x9d2c5680
	y ^= (y << 15) & 0xefc60000
	y ^= y >> 18
	return y
}

// Float64 returns a value in [0, 1) with 53 bits of precision, built from
// two consecutive outputs the way CPython's random() does.
func (m *MT19937) Float64() float64 {
	a := m.Uint32() >> 5
	b := m.Uint32() >> 6
	return (float64(a)*67108864.0 + float64(b)) * (1.0 / 9007199254740992.0)
}
