// Package metrics accumulates process-lifetime operational counters and
// renders them as a structured snapshot or Prometheus-style exposition text.
package metrics

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// ErrInvalidSample rejects samples with an empty name or non-finite value.
var ErrInvalidSample = errors.New("invalid sample: name must be non-empty and value finite")

// Sample is a single point-in-time measurement.
type Sample struct {
	Name      string            `json:"name"`
	Value     float64           `json:"value"`
	Labels    map[string]string `json:"labels,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

// Range is a lookback window for snapshots.
type Range string

const (
	Range5m  Range = "5m"
	Range1h  Range = "1h"
	Range24h Range = "24h"
	Range7d  Range = "7d"
)

// ParseRange maps a range string to its duration. Unrecognized strings
// default to one hour.
func ParseRange(s string) (Range, time.Duration) {
	switch Range(s) {
	case Range5m:
		return Range5m, 5 * time.Minute
	case Range24h:
		return Range24h, 24 * time.Hour
	case Range7d:
		return Range7d, 7 * 24 * time.Hour
	default:
		return Range1h, time.Hour
	}
}

// SeriesSnapshot is the aggregate for one labeled series.
type SeriesSnapshot struct {
	Name        string            `json:"name"`
	Labels      map[string]string `json:"labels,omitempty"`
	Value       float64           `json:"value"`
	SampleCount int               `json:"sample_count"`
	LastUpdated time.Time         `json:"last_updated"`
}

// Snapshot is the structured aggregate over a lookback window.
type Snapshot struct {
	Range       Range            `json:"range"`
	GeneratedAt time.Time        `json:"generated_at"`
	Series      []SeriesSnapshot `json:"series"`
}

type series struct {
	name    string
	labels  map[string]string
	value   float64
	updated time.Time
	stamps  []time.Time
}

// Collector is the shared in-process sample store. Both representations
// (snapshot and exposition) are derived from the same series map, so they
// can never diverge. Safe for concurrent use.
type Collector struct {
	mu        sync.Mutex
	series    map[string]*series
	retention time.Duration
	now       func() time.Time
}

// NewCollector creates a collector retaining sample timestamps for the
// largest supported lookback window (7 days).
func NewCollector() *Collector {
	return &Collector{
		series:    make(map[string]*series),
		retention: 7 * 24 * time.Hour,
		now:       time.Now,
	}
}

// Record stores one sample. The latest value per labeled series wins;
// sample timestamps are kept for window counts.
func (c *Collector) Record(s Sample) error {
	if s.Name == "" || math.IsNaN(s.Value) || math.IsInf(s.Value, 0) {
		return ErrInvalidSample
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	ts := s.Timestamp
	if ts.IsZero() {
		ts = c.now()
	}

	sr := c.seriesLocked(s.Name, s.Labels)
	sr.value = s.Value
	sr.record(ts, c.now().Add(-c.retention))

	SamplesIngestedTotal.Inc()
	return nil
}

// Add increments a counter series by delta, creating it at zero first.
// Accumulation happens under the collector lock: concurrent increments from
// multiple call sites never lose updates.
func (c *Collector) Add(name string, labels map[string]string, delta float64) error {
	if name == "" || math.IsNaN(delta) || math.IsInf(delta, 0) {
		return ErrInvalidSample
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	sr := c.seriesLocked(name, labels)
	sr.value += delta
	sr.record(c.now(), c.now().Add(-c.retention))

	SamplesIngestedTotal.Inc()
	return nil
}

// seriesLocked returns the series for the given identity, creating it if
// needed. Caller holds c.mu.
func (c *Collector) seriesLocked(name string, labels map[string]string) *series {
	key := seriesKey(name, labels)
	sr, ok := c.series[key]
	if !ok {
		copied := make(map[string]string, len(labels))
		for k, v := range labels {
			copied[k] = v
		}
		sr = &series{name: name, labels: copied}
		c.series[key] = sr
	}
	return sr
}

// Snapshot returns the structured aggregate bounded by the given window.
func (c *Collector) Snapshot(rng Range) Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, window := ParseRange(string(rng))
	now := c.now()
	cutoff := now.Add(-window)

	keys := make([]string, 0, len(c.series))
	for k := range c.series {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := Snapshot{Range: rng, GeneratedAt: now}
	for _, k := range keys {
		sr := c.series[k]
		count := 0
		for _, ts := range sr.stamps {
			if !ts.Before(cutoff) {
				count++
			}
		}
		// Labels are copied out: the returned snapshot must not alias the
		// maps that back series identity.
		var labels map[string]string
		if len(sr.labels) > 0 {
			labels = make(map[string]string, len(sr.labels))
			for lk, lv := range sr.labels {
				labels[lk] = lv
			}
		}
		out.Series = append(out.Series, SeriesSnapshot{
			Name:        sr.name,
			Labels:      labels,
			Value:       sr.value,
			SampleCount: count,
			LastUpdated: sr.updated,
		})
	}
	return out
}

// Exposition renders the line-oriented text format: per metric name a
// # HELP and # TYPE comment, then one line per labeled series.
func (c *Collector) Exposition() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	byName := make(map[string][]*series)
	names := make([]string, 0)
	for _, sr := range c.series {
		if _, ok := byName[sr.name]; !ok {
			names = append(names, sr.name)
		}
		byName[sr.name] = append(byName[sr.name], sr)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		fmt.Fprintf(&b, "# HELP %s Custom metric ingested by sentinel\n", name)
		fmt.Fprintf(&b, "# TYPE %s gauge\n", name)

		group := byName[name]
		sort.Slice(group, func(i, j int) bool {
			return seriesKey(group[i].name, group[i].labels) < seriesKey(group[j].name, group[j].labels)
		})
		for _, sr := range group {
			b.WriteString(name)
			b.WriteString(formatLabels(sr.labels))
			b.WriteByte(' ')
			b.WriteString(strconv.FormatFloat(sr.value, 'g', -1, 64))
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func (s *series) record(ts time.Time, cutoff time.Time) {
	s.updated = ts
	s.stamps = append(s.stamps, ts)
	s.prune(cutoff)
}

func (s *series) prune(cutoff time.Time) {
	keep := s.stamps[:0]
	for _, ts := range s.stamps {
		if !ts.Before(cutoff) {
			keep = append(keep, ts)
		}
	}
	s.stamps = keep
}

func seriesKey(name string, labels map[string]string) string {
	if len(labels) == 0 {
		return name
	}
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(name)
	for _, k := range keys {
		b.WriteByte('|')
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(labels[k])
	}
	return b.String()
}

var labelEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)

func formatLabels(labels map[string]string) string {
	if len(labels) == 0 {
		return ""
	}
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, `%s="%s"`, k, labelEscaper.Replace(labels[k]))
	}
	b.WriteByte('}')
	return b.String()
}
