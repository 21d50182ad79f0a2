package logging

// ProgressSampler thins out per-item progress logs to one line per
// percentage bucket.
type ProgressSampler struct {
	bucketSize float64
	lastBucket int
}

// NewProgressSampler constructs a sampler that emits when progress crosses a
// bucket boundary (default 25%).
func NewProgressSampler(bucketSize float64) *ProgressSampler {
	if bucketSize <= 0 {
		bucketSize = 25
	}
	return &ProgressSampler{bucketSize: bucketSize, lastBucket: -1}
}

// ShouldLog reports whether completing done of total items deserves a log
// line. The final item always does.
func (s *ProgressSampler) ShouldLog(done, total int) bool {
	if s == nil || total <= 0 {
		return true
	}
	if done >= total {
		done = total
	}
	percent := float64(done) * 100 / float64(total)
	bucket := int(percent / s.bucketSize)
	if bucket > s.lastBucket {
		s.lastBucket = bucket
		return true
	}
	return done == total
}

// Reset clears the sampler state before a new batch.
func (s *ProgressSampler) Reset() {
	if s == nil {
		return
	}
	s.lastBucket = -1
}
