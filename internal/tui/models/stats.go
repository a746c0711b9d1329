package models

import "math"

// Stats accumulates throughput samples in kB/s
type Stats struct {
	Count  int
	Errors int
	Min    float64
	Max    float64
	sum    float64
}

func (s *Stats) Add(kbps float64) {
	if s.Count == 0 || kbps < s.Min {
		s.Min = kbps
	}
	if s.Count == 0 || kbps > s.Max {
		s.Max = kbps
	}
	s.Count++
	s.sum += kbps
}

func (s *Stats) AddError() {
	s.Errors++
}

func (s *Stats) Avg() float64 {
	if s.Count == 0 {
		return math.NaN()
	}
	return s.sum / float64(s.Count)
}

func (s *Stats) Reset() {
	*s = Stats{}
}
