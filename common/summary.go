package common

import (
	"encoding/json"
	"slices"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// Warning is a named, individually reported anomaly.
type Warning struct {
	Kind    Anomaly `json:"kind"`
	Subject string  `json:"subject"`
	Message string  `json:"message"`
}

// Summary accumulates anomalies over a single run. Safe for concurrent use,
// nil Summary silently ignores everything.
type Summary struct {
	mu       sync.Mutex
	counts   map[Anomaly]int
	warnings []Warning
}

func NewSummary() *Summary {
	return &Summary{counts: make(map[Anomaly]int)}
}

// Add counts anomaly occurrence.
func (s *Summary) Add(kind Anomaly) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts[kind]++
}

// Warn counts anomaly and records it as named warning.
func (s *Summary) Warn(kind Anomaly, subject, message string) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts[kind]++
	s.warnings = append(s.warnings, Warning{Kind: kind, Subject: subject, Message: message})
}

func (s *Summary) Count(kind Anomaly) int {
	if s == nil {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts[kind]
}

func (s *Summary) Total() int {
	if s == nil {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, n := range s.counts {
		total += n
	}
	return total
}

// Warnings returns copy of recorded warnings ordered by subject so the result
// does not depend on the order parallel workers finished in.
func (s *Summary) Warnings() []Warning {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	res := slices.Clone(s.warnings)
	s.mu.Unlock()

	slices.SortStableFunc(res, func(a, b Warning) int {
		if c := strings.Compare(a.Subject, b.Subject); c != 0 {
			return c
		}
		return strings.Compare(string(a.Kind), string(b.Kind))
	})
	return res
}

// Log outputs summary: one line with all non zero counters, followed by
// every named warning.
func (s *Summary) Log(log *zap.Logger) {
	if s == nil {
		return
	}
	fields := make([]zap.Field, 0, len(_AnomalyNames)+1)
	fields = append(fields, zap.Int("total", s.Total()))
	for _, name := range AnomalyNames() {
		if n := s.Count(Anomaly(name)); n > 0 {
			fields = append(fields, zap.Int(name, n))
		}
	}
	log.Info("Run summary", fields...)
	for _, w := range s.Warnings() {
		log.Warn("Anomaly", zap.Stringer("kind", w.Kind), zap.String("subject", w.Subject), zap.String("details", w.Message))
	}
}

// MarshalJSON is used when summary is stored into debug report.
func (s *Summary) MarshalJSON() ([]byte, error) {
	out := struct {
		Counts   map[string]int `json:"counts"`
		Warnings []Warning      `json:"warnings"`
	}{Counts: make(map[string]int)}
	if s != nil {
		for _, name := range AnomalyNames() {
			if n := s.Count(Anomaly(name)); n > 0 {
				out.Counts[name] = n
			}
		}
		out.Warnings = s.Warnings()
	}
	return json.Marshal(out)
}
