package testutil

import (
	"fmt"
	"math"
	"math/rand"
	"sync"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Uint64 returns a pseudo-random uint64.
func (r *RNG) Uint64() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Uint64()
}

// FillBytes fills dst with pseudo-random bytes.
// Locks only once per call (preferred over calling Intn in a loop).
func (r *RNG) FillBytes(dst []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range dst {
		dst[i] = byte(r.rand.Intn(256))
	}
}

// Bytes returns n pseudo-random bytes.
func (r *RNG) Bytes(n int) []byte {
	buf := make([]byte, n)
	r.FillBytes(buf)
	return buf
}

// Values generates num random byte values of the given size.
// Uses a single backing array for efficiency.
func (r *RNG) Values(num, size int) [][]byte {
	r.mu.Lock()
	defer r.mu.Unlock()

	data := make([]byte, num*size)
	for i := range data {
		data[i] = byte(r.rand.Intn(256))
	}

	values := make([][]byte, num)
	for i := range num {
		values[i] = data[i*size : (i+1)*size]
	}
	return values
}

// CompressibleValues generates num values of the given size made from a small
// repeating alphabet, so block compression has something to work with.
func (r *RNG) CompressibleValues(num, size int) [][]byte {
	r.mu.Lock()
	defer r.mu.Unlock()

	const alphabet = "abcd"

	data := make([]byte, num*size)
	for i := range data {
		data[i] = alphabet[r.rand.Intn(len(alphabet))]
	}

	values := make([][]byte, num)
	for i := range num {
		values[i] = data[i*size : (i+1)*size]
	}
	return values
}

// Perm returns a pseudo-random permutation of [0,n).
func (r *RNG) Perm(n int) []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Perm(n)
}

// Zipf returns a Zipfian-distributed value in [0, n).
// Uses Zipf's law: P(k) ∝ 1/k^s where s is the skew parameter.
// s=1.0 gives standard Zipf, s=1.5 gives heavy-tail (80/20 rule).
// Useful for driving caches with realistically skewed traffic.
func (r *RNG) Zipf(n int, s float64) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.zipfLocked(n, s)
}

// zipfLocked is the internal implementation (caller must hold lock).
func (r *RNG) zipfLocked(n int, s float64) int {
	if n <= 1 {
		return 0
	}

	// Compute normalization constant (harmonic number with exponent s)
	var hns float64
	for i := 1; i <= n; i++ {
		hns += 1.0 / math.Pow(float64(i), s)
	}

	// Sample from uniform and use inverse transform
	u := r.rand.Float64() * hns
	var cumulative float64
	for k := 1; k <= n; k++ {
		cumulative += 1.0 / math.Pow(float64(k), s)
		if u <= cumulative {
			return k - 1 // 0-indexed
		}
	}

	return n - 1
}

// ZipfAccesses generates n key indices into a keyspace with Zipfian skew.
// Roughly 20% of the keys receive ~80% of the accesses when s=1.5.
func (r *RNG) ZipfAccesses(n, keyspace int, s float64) []int {
	r.mu.Lock()
	defer r.mu.Unlock()

	accesses := make([]int, n)
	for i := range n {
		accesses[i] = r.zipfLocked(keyspace, s)
	}
	return accesses
}

// SortedKeys generates num strictly increasing fixed-width keys. The keys
// sort bytewise in generation order, which is what ordered table writers
// require.
func SortedKeys(num, width int) [][]byte {
	keys := make([][]byte, num)
	for i := range num {
		keys[i] = []byte(fmt.Sprintf("%0*d", width, i))
	}
	return keys
}
