// Package store holds the most recent pipeline result so that table and
// period queries can follow an upload within the same process.
package store

import (
	"sync"

	"github.com/awu339/LeadIn-LeadOut/internal/pipeline"
)

type Memory struct {
	mu  sync.RWMutex
	res *pipeline.Result
}

func NewMemory() *Memory { return &Memory{} }

func (s *Memory) Set(res *pipeline.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.res = res
}

// Current returns the latest result, or false when nothing has been
// ingested yet.
func (s *Memory) Current() (*pipeline.Result, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.res, s.res != nil
}
