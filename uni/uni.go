// Package uni implements the seedable lagged-Fibonacci uniform generator
// used for weight initialization and Boltzmann pruning.
//
// A Stream is reproducible: the same nonzero seed always yields the same
// infinite sequence of values in [0,1).
package uni

const (
	lags = 17
	mult = 9069
)

// Stream holds the generator state. The zero value is not usable; call New.
type Stream struct {
	m      [lags]int64
	i, j   int
	m1, m2 int64
	digits uint
}

// New returns a 32-bit stream seeded with seed.
func New(seed int) *Stream {
	return NewWithDigits(seed, 32)
}

// NewWithDigits returns a stream for an integer word of the given bit width.
// 16 selects the narrow variant (modulus 2^15-1), anything else the 32-bit one
// (modulus 2^31-1).
func NewWithDigits(seed int, digits uint) *Stream {
	if digits != 16 {
		digits = 32
	}
	s := &Stream{digits: digits}
	s.m1 = (int64(1) << (digits - 2)) + ((int64(1) << (digits - 2)) - 1)
	s.m2 = int64(1) << (digits / 2)
	s.Seed(seed)
	return s
}

// Seed reinitializes the 17 lag words. A zero seed is treated as 1.
func (s *Stream) Seed(seed int) {
	jseed := int64(seed)
	if jseed < 0 {
		jseed = -jseed
	}
	if jseed > s.m1 {
		jseed = s.m1
	}
	if jseed%2 == 0 {
		jseed--
	}
	if jseed < 1 {
		jseed = 1
	}

	k0 := mult % s.m2
	k1 := mult / s.m2
	j0 := jseed % s.m2
	j1 := jseed / s.m2
	for n := 0; n < lags; n++ {
		jseed = j0 * k0
		j1 = (jseed/s.m2 + j0*k1 + j1*k0) % (s.m2 / 2)
		j0 = jseed % s.m2
		s.m[n] = j0 + s.m2*j1
	}
	s.i, s.j = 4, 16
}

// Next returns the next value in [0,1).
func (s *Stream) Next() float64 {
	k := s.m[s.i] - s.m[s.j]
	if k < 0 {
		k += s.m1
	}
	if k >= s.m1 {
		k -= s.m1
	}
	s.m[s.j] = k

	s.i--
	if s.i < 0 {
		s.i = lags - 1
	}
	s.j--
	if s.j < 0 {
		s.j = lags - 1
	}
	return float64(k) / float64(s.m1)
}

// Range returns a value uniformly drawn from [a,b).
func (s *Stream) Range(a, b float64) float64 {
	return (b-a)*s.Next() + a
}
