package primitive

import (
	"crypto/rand"
	"sync"
	"time"
)

// reelectionInterval is the minimum time a benchmark result is trusted
// before the selector re-runs candidates on the next request. Spec.md
// requires this to be a "coarse-grained timeout (>= 60 s)".
const reelectionInterval = 60 * time.Second

// benchPayloadSize is the size of the fixed plaintext encrypted during a
// benchmark run, chosen to resemble a real RTP payload the way the teacher's
// internal/aes/bench/main.go measured throughput over 1280-byte payloads.
const benchPayloadSize = 1280

// benchIterations is the number of passes over the benchPayloadSize-byte
// plaintext each candidate encrypts per election. Large enough to average out scheduling noise, small enough that
// an election never blocks a caller for more than a few milliseconds.
const benchIterations = 64

// backendFactory names and constructs one candidate BlockCipher backend.
type backendFactory struct {
	name string
	new  func() BlockCipher
}

// candidate tracks one backend's benchmark standing across elections.
type candidate struct {
	factory     backendFactory
	unavailable bool // set permanently once Init fails during benchmarking
}

// selector is the process-wide algorithm-agility layer for one block-cipher
// algorithm: it holds the ordered candidate list, the currently elected
// backend, and the timestamp of the last election.
type selector struct {
	mu         sync.Mutex
	candidates []*candidate
	elected    *backendFactory
	electedAt  time.Time

	// preferred, if set, names a candidate that wins ties during
	// election (Config.AESProviderPreference, spec section 6). A
	// preference never overrides a candidate that benchmarked strictly
	// faster, and never resurrects a candidate the benchmark marked
	// unavailable.
	preferred string
}

// SetPreferredName records an operator hint for the next election. It does
// not force an immediate re-election; the hint takes effect the next time
// the standing election goes stale.
func (s *selector) SetPreferredName(name string) {
	s.mu.Lock()
	s.preferred = name
	s.mu.Unlock()
}

func newSelector(factories ...backendFactory) *selector {
	s := &selector{}
	for _, f := range factories {
		s.candidates = append(s.candidates, &candidate{factory: f})
	}
	return s
}

// selectAndCreate returns a fresh, unkeyed BlockCipher from the currently
// elected backend, re-electing first if the standing election is stale or
// has never run.
func (s *selector) selectAndCreate() (BlockCipher, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.elected == nil || time.Since(s.electedAt) >= reelectionInterval {
		s.elect()
	}
	if s.elected == nil {
		return nil, ErrPrimitiveUnavailable
	}
	return s.elected.new(), nil
}

// electedName forces an election if the standing one is stale and reports
// the winning backend's name, for diagnostic tooling (cmd/srtpbench).
func (s *selector) electedName() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.elected == nil || time.Since(s.electedAt) >= reelectionInterval {
		s.elect()
	}
	if s.elected == nil {
		return "", ErrPrimitiveUnavailable
	}
	return s.elected.name, nil
}

// elect benchmarks every available candidate and keeps the fastest. Must be
// called with s.mu held.
func (s *selector) elect() {
	key := make([]byte, 16)
	_, _ = rand.Read(key)
	plaintext := make([]byte, benchPayloadSize)
	_, _ = rand.Read(plaintext)

	var (
		best     *backendFactory
		bestTime time.Duration
	)
	for _, c := range s.candidates {
		if c.unavailable {
			continue
		}
		elapsed, err := benchmarkOne(c.factory, key, plaintext)
		if err != nil {
			log.Warn("primitive: %s failed to initialize, marking unavailable: %v", c.factory.name, err)
			c.unavailable = true
			continue
		}
		log.Debug("primitive: %s benchmark: %v for %d bytes", c.factory.name, elapsed, benchPayloadSize*benchIterations)
		switch {
		case best == nil:
			best, bestTime = &c.factory, elapsed
		case elapsed < bestTime:
			best, bestTime = &c.factory, elapsed
		case elapsed == bestTime && c.factory.name == s.preferred:
			best = &c.factory
		}
	}

	s.elected = best
	s.electedAt = time.Now()
	if best != nil {
		log.Info("primitive: elected %s", best.name)
	}
}

// benchmarkOne keys backend with key and measures the time to encrypt
// benchIterations copies of plaintext, one block at a time.
func benchmarkOne(f backendFactory, key, plaintext []byte) (time.Duration, error) {
	block := f.new()
	if err := block.Init(key, true); err != nil {
		return 0, err
	}

	out := make([]byte, block.BlockSize())
	start := time.Now()
	for i := 0; i < benchIterations; i++ {
		for off := 0; off+block.BlockSize() <= len(plaintext); off += block.BlockSize() {
			block.ProcessBlock(out, plaintext[off:off+block.BlockSize()])
		}
	}
	return time.Since(start), nil
}
