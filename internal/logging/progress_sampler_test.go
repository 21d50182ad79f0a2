package logging

import "testing"

func TestNewProgressSampler(t *testing.T) {
	tests := []struct {
		name       string
		bucketSize float64
		wantSize   float64
	}{
		{"default bucket size for zero", 0, 25},
		{"default bucket size for negative", -1, 25},
		{"custom bucket size", 10, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewProgressSampler(tt.bucketSize)
			if s.bucketSize != tt.wantSize {
				t.Errorf("bucketSize = %v, want %v", s.bucketSize, tt.wantSize)
			}
			if s.lastBucket != -1 {
				t.Errorf("lastBucket = %d, want -1", s.lastBucket)
			}
		})
	}
}

func TestProgressSamplerNil(t *testing.T) {
	var s *ProgressSampler
	if !s.ShouldLog(1, 10) {
		t.Fatal("nil sampler should always log")
	}
	s.Reset()
}

func TestProgressSamplerBuckets(t *testing.T) {
	s := NewProgressSampler(25)
	var logged []int
	for done := 1; done <= 20; done++ {
		if s.ShouldLog(done, 20) {
			logged = append(logged, done)
		}
	}
	want := []int{1, 5, 10, 15, 20}
	if len(logged) != len(want) {
		t.Fatalf("logged at %v, want %v", logged, want)
	}
	for i := range want {
		if logged[i] != want[i] {
			t.Fatalf("logged at %v, want %v", logged, want)
		}
	}
}

func TestProgressSamplerReset(t *testing.T) {
	s := NewProgressSampler(50)
	s.ShouldLog(1, 2)
	if s.ShouldLog(1, 2) {
		t.Fatal("repeat within bucket should be suppressed")
	}
	s.Reset()
	if !s.ShouldLog(1, 2) {
		t.Fatal("reset should allow logging again")
	}
}

func TestProgressSamplerEmptyTotal(t *testing.T) {
	if !NewProgressSampler(25).ShouldLog(0, 0) {
		t.Fatal("unknown totals should log")
	}
}
