package app

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

type scopeStats struct {
	last  time.Duration
	total time.Duration
	calls int
}

// Profiler times named CPU scopes over a reporting window of frames and
// keeps a few counters. Scope timings average per frame inside the window.
type Profiler struct {
	scopes map[string]*scopeStats
	counts map[string]int
	order  []string
	frames int
	now    func() time.Time
}

func NewProfiler() *Profiler {
	return &Profiler{
		scopes: make(map[string]*scopeStats),
		counts: make(map[string]int),
		now:    time.Now,
	}
}

// Scope starts timing name and returns the func that stops it.
func (p *Profiler) Scope(name string) func() {
	s, ok := p.scopes[name]
	if !ok {
		s = &scopeStats{}
		p.scopes[name] = s
		p.order = append(p.order, name)
	}
	start := p.now()
	return func() {
		d := p.now().Sub(start)
		s.last = d
		s.total += d
		s.calls++
	}
}

// EndFrame closes one frame of the window.
func (p *Profiler) EndFrame() { p.frames++ }

func (p *Profiler) Frames() int { return p.frames }

func (p *Profiler) SetCount(name string, count int) { p.counts[name] = count }
func (p *Profiler) Count(name string) int           { return p.counts[name] }

// Last is the most recent duration of name.
func (p *Profiler) Last(name string) time.Duration {
	if s, ok := p.scopes[name]; ok {
		return s.last
	}
	return 0
}

// Average is the time spent in name per frame of the window. Frames that
// skipped the scope count as zero.
func (p *Profiler) Average(name string) time.Duration {
	s, ok := p.scopes[name]
	if !ok || p.frames == 0 {
		return 0
	}
	return s.total / time.Duration(p.frames)
}

// Reset starts a new window. Counters are kept.
func (p *Profiler) Reset() {
	for _, s := range p.scopes {
		s.total, s.calls = 0, 0
	}
	p.frames = 0
}

func ms(d time.Duration) float64 { return float64(d.Microseconds()) / 1000 }

// Stats formats the window: per-scope average and last time in first-seen
// order, then counters by name.
func (p *Profiler) Stats() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Timings (CPU, %d frames):\n", p.frames)
	for _, name := range p.order {
		s := p.scopes[name]
		fmt.Fprintf(&sb, "  %-12s avg %.2f ms  last %.2f ms  (%d runs)\n", name, ms(p.Average(name)), ms(s.last), s.calls)
	}
	keys := make([]string, 0, len(p.counts))
	for k := range p.counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	sb.WriteString("Stats:\n")
	for _, k := range keys {
		fmt.Fprintf(&sb, "  %-16s %d\n", k, p.counts[k])
	}
	return sb.String()
}
