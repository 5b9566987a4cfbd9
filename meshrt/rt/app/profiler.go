package app

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Profiler keeps the CPU time of the last run of each named scope plus a
// set of counters.
type Profiler struct {
	Scopes     map[string]time.Duration
	StartTimes map[string]time.Time
	Counts     map[string]int
	Order      []string

	now func() time.Time
}

func NewProfiler() *Profiler {
	return &Profiler{
		Scopes:     make(map[string]time.Duration),
		StartTimes: make(map[string]time.Time),
		Counts:     make(map[string]int),
		Order:      make([]string, 0),
		now:        time.Now,
	}
}

func (p *Profiler) BeginScope(name string) {
	p.StartTimes[name] = p.now()
	if _, seen := p.Scopes[name]; !seen {
		p.Order = append(p.Order, name)
		p.Scopes[name] = 0
	}
}

func (p *Profiler) EndScope(name string) {
	if start, ok := p.StartTimes[name]; ok {
		p.Scopes[name] = p.now().Sub(start)
		delete(p.StartTimes, name)
	}
}

func (p *Profiler) Inc(name string) {
	p.Counts[name]++
}

func (p *Profiler) Count(name string) int {
	return p.Counts[name]
}

// Reset zeroes the timings; scope order and counters are kept.
func (p *Profiler) Reset() {
	for k := range p.Scopes {
		p.Scopes[k] = 0
	}
}

// String formats timings in first-seen order and counters by name on a
// single line, suitable for a log entry.
func (p *Profiler) String() string {
	var sb strings.Builder
	for i, name := range p.Order {
		if i > 0 {
			sb.WriteString(" ")
		}
		ms := float64(p.Scopes[name].Microseconds()) / 1000.0
		fmt.Fprintf(&sb, "%s=%.2fms", name, ms)
	}

	keys := make([]string, 0, len(p.Counts))
	for k := range p.Counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if sb.Len() > 0 {
			sb.WriteString(" ")
		}
		fmt.Fprintf(&sb, "%s=%d", k, p.Counts[k])
	}
	return sb.String()
}
