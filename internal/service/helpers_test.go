package service

import (
	"sync"
	"time"
)

// recordingSink captures metrics emitted by services.
type recordingSink struct {
	mu     sync.Mutex
	counts []recordedMetric
}

type recordedMetric struct {
	Name string
	Tags map[string]string
}

func (r *recordingSink) Count(name string, _ int64, tags map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counts = append(r.counts, recordedMetric{Name: name, Tags: tags})
}

func (r *recordingSink) Timing(string, time.Duration, map[string]string) {}

func (r *recordingSink) results(name string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, m := range r.counts {
		if m.Name == name {
			out = append(out, m.Tags["result"])
		}
	}
	return out
}

// formGetter adapts a map to the field lookup used by the wizard.
func formGetter(values map[string]string) func(string) string {
	return func(k string) string { return values[k] }
}
