// Package metrics keeps process counters and gauges in memory and exports
// them as a flat, sorted snapshot.
package metrics

import (
	"math"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
)

type Counter interface {
	Inc()
	Add(float64)
}

type Gauge interface {
	Set(float64)
	Inc()
	Dec()
	Add(float64)
	Sub(float64)
}

type Kind string

const (
	KindCounter Kind = "counter"
	KindGauge   Kind = "gauge"
)

// Sample is one exported series.
type Sample struct {
	Name  string            `json:"name"`
	Tags  map[string]string `json:"tags,omitempty"`
	Kind  Kind              `json:"kind"`
	Value float64           `json:"value"`
}

// Registry hands out series by name and tags. Asking twice for the same
// series returns the same instance.
type Registry struct {
	mu     sync.RWMutex
	series map[string]*series
}

func NewRegistry() *Registry {
	return &Registry{series: make(map[string]*series)}
}

// Counter returns the monotonically increasing series name{tags}. Negative
// additions are ignored.
func (r *Registry) Counter(name string, tags map[string]string) Counter {
	return counter{r.get(name, tags, KindCounter)}
}

func (r *Registry) Gauge(name string, tags map[string]string) Gauge {
	return r.get(name, tags, KindGauge)
}

// Export returns every series sorted by name, then tags.
func (r *Registry) Export() []Sample {
	r.mu.RLock()
	keys := make([]string, 0, len(r.series))
	for k := range r.series {
		keys = append(keys, k)
	}
	r.mu.RUnlock()
	sort.Strings(keys)

	out := make([]Sample, 0, len(keys))
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, k := range keys {
		s := r.series[k]
		out = append(out, Sample{Name: s.name, Tags: s.tags, Kind: s.kind, Value: s.load()})
	}
	return out
}

// Value reads a single series; missing series read as zero.
func (r *Registry) Value(name string, tags map[string]string) float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if s, ok := r.series[key(name, tags)]; ok {
		return s.load()
	}
	return 0
}

func (r *Registry) get(name string, tags map[string]string, kind Kind) *series {
	k := key(name, tags)
	r.mu.RLock()
	s, ok := r.series[k]
	r.mu.RUnlock()
	if ok {
		return s
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok = r.series[k]; ok {
		return s
	}
	s = &series{name: name, tags: copyTags(tags), kind: kind}
	r.series[k] = s
	return s
}

func key(name string, tags map[string]string) string {
	if len(tags) == 0 {
		return name
	}
	names := make([]string, 0, len(tags))
	for t := range tags {
		names = append(names, t)
	}
	sort.Strings(names)
	var b strings.Builder
	b.WriteString(name)
	b.WriteByte('{')
	for i, t := range names {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(t)
		b.WriteByte('=')
		b.WriteString(tags[t])
	}
	b.WriteByte('}')
	return b.String()
}

func copyTags(tags map[string]string) map[string]string {
	if len(tags) == 0 {
		return nil
	}
	out := make(map[string]string, len(tags))
	for k, v := range tags {
		out[k] = v
	}
	return out
}

// series stores a float64 in the bits of a uint64.
type series struct {
	name string
	tags map[string]string
	kind Kind
	bits atomic.Uint64
}

func (s *series) load() float64 { return math.Float64frombits(s.bits.Load()) }

func (s *series) Set(v float64) { s.bits.Store(math.Float64bits(v)) }
func (s *series) Inc()          { s.Add(1) }
func (s *series) Dec()          { s.Add(-1) }
func (s *series) Sub(v float64) { s.Add(-v) }

func (s *series) Add(v float64) {
	for {
		old := s.bits.Load()
		next := math.Float64bits(math.Float64frombits(old) + v)
		if s.bits.CompareAndSwap(old, next) {
			return
		}
	}
}

type counter struct{ s *series }

func (c counter) Inc() { c.s.Add(1) }

func (c counter) Add(v float64) {
	if v > 0 {
		c.s.Add(v)
	}
}
