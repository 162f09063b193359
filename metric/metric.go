// Package metric collects runtime counters of graph components through
// expvar. It is injected into the engine rather than hardcoded, so the
// processing path stays observable without depending on it.
package metric

import (
	"expvar"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dwbrite/klingt/signal"
)

const componentsLabel = "klingt.components"

const (
	// BlockCounter measures number of processed blocks.
	BlockCounter = "Blocks"
	// SampleCounter measures number of samples.
	SampleCounter = "Samples"
	// LatencyCounter measures latency between processing calls.
	LatencyCounter = "Latency"
	// DurationCounter counts what's the duration of signal.
	DurationCounter = "Duration"
	// UnderrunCounter counts blocks where a ring buffer ran dry.
	UnderrunCounter = "Underruns"
	// OverrunCounter counts blocks skipped because a ring buffer was full.
	OverrunCounter = "Overruns"
)

var counters = []string{
	BlockCounter,
	SampleCounter,
	LatencyCounter,
	DurationCounter,
	UnderrunCounter,
	OverrunCounter,
}

type (
	// Metric is the observability hook accepted by the engine.
	Metric interface {
		// Meter returns a closure that captures per-block counters of
		// the component.
		Meter(component string, sampleRate int) MeasureFunc
		// Add increments a named counter of the component.
		Add(component string, counter string, delta int64)
	}

	// MeasureFunc captures metrics when a block is processed.
	MeasureFunc func(samples int64)
)

// components is shared by all Expvar instances since expvar names are
// process-global and cannot be published twice.
var components = struct {
	sync.Mutex
	m map[string]*componentMetric
}{
	m: make(map[string]*componentMetric),
}

// Expvar returns a Metric that publishes all counters through expvar.
func Expvar() Metric {
	return expvarMetric{}
}

// Get returns current counter values of the provided component.
func Get(component string) map[string]string {
	m := make(map[string]string)
	for _, counter := range counters {
		v := expvar.Get(key(component, counter))
		if v != nil {
			m[counter] = v.String()
		}
	}
	return m
}

type expvarMetric struct{}

func (m expvarMetric) Meter(component string, sampleRate int) MeasureFunc {
	metric := get(component)
	calledAt := time.Now()
	var (
		blockSize     int64
		blockDuration time.Duration
	)
	return func(samples int64) {
		metric.latency.set(time.Since(calledAt))
		metric.blocks.Add(1)
		metric.samples.Add(samples)
		// recalculate block duration only when block size has changed
		if blockSize != samples {
			blockSize = samples
			blockDuration = signal.DurationOf(sampleRate, samples)
		}
		metric.duration.add(blockDuration)
		calledAt = time.Now()
	}
}

func (m expvarMetric) Add(component string, counter string, delta int64) {
	metric := get(component)
	switch counter {
	case BlockCounter:
		metric.blocks.Add(delta)
	case SampleCounter:
		metric.samples.Add(delta)
	case UnderrunCounter:
		metric.underruns.Add(delta)
	case OverrunCounter:
		metric.overruns.Add(delta)
	}
}

func get(component string) *componentMetric {
	components.Lock()
	defer components.Unlock()
	if metric, ok := components.m[component]; ok {
		return metric
	}
	metric := newComponentMetric(component)
	components.m[component] = metric
	return metric
}

type componentMetric struct {
	blocks    *expvar.Int
	samples   *expvar.Int
	underruns *expvar.Int
	overruns  *expvar.Int
	latency   *duration
	duration  *duration
}

func newComponentMetric(component string) *componentMetric {
	m := &componentMetric{
		blocks:    expvar.NewInt(key(component, BlockCounter)),
		samples:   expvar.NewInt(key(component, SampleCounter)),
		underruns: expvar.NewInt(key(component, UnderrunCounter)),
		overruns:  expvar.NewInt(key(component, OverrunCounter)),
		latency:   &duration{},
		duration:  &duration{},
	}
	expvar.Publish(key(component, LatencyCounter), m.latency)
	expvar.Publish(key(component, DurationCounter), m.duration)
	return m
}

func key(component, counter string) string {
	return fmt.Sprintf("%s.%s.%s", componentsLabel, component, counter)
}

// duration allows to format time.Duration metric values.
type duration struct {
	d int64
}

func (v *duration) String() string {
	return fmt.Sprintf("%q", time.Duration(atomic.LoadInt64(&v.d)).String())
}

func (v *duration) add(delta time.Duration) {
	atomic.AddInt64(&v.d, int64(delta))
}

func (v *duration) set(value time.Duration) {
	atomic.StoreInt64(&v.d, int64(value))
}
