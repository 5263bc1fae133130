// Copyright 2025 AxonFlow
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package metrics exposes Prometheus collectors for module loading and lookup.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Load sources
const (
	SourceFilesystem = "filesystem"
	SourceCache      = "cache"
)

// Cache results
const (
	CacheHit  = "hit"
	CacheMiss = "miss"
	CacheErr  = "error"
)

// Metrics groups the collectors shared by backends and the registry.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	ModulesLoaded         *prometheus.CounterVec
	InstantiationFailures *prometheus.CounterVec
	CacheRequests         *prometheus.CounterVec
	LoadDuration          *prometheus.HistogramVec
	Lookups               *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
// Pass prometheus.NewRegistry() in tests to avoid global state.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ModulesLoaded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "module_registry_modules_loaded_total",
				Help: "Total number of module instances loaded",
			},
			[]string{"namespace", "source"},
		),
		InstantiationFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "module_registry_instantiation_failures_total",
				Help: "Total number of modules that failed to load or construct",
			},
			[]string{"namespace"},
		),
		CacheRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "module_registry_cache_requests_total",
				Help: "Cache lookups performed by cache-aside backends",
			},
			[]string{"namespace", "result"},
		),
		LoadDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "module_registry_load_duration_seconds",
				Help:    "Time spent in LoadAll",
				Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5},
			},
			[]string{"namespace", "source"},
		),
		Lookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "module_registry_lookups_total",
				Help: "Module lookups by qualified type",
			},
			[]string{"result"},
		),
	}

	if reg != nil {
		reg.MustRegister(
			m.ModulesLoaded,
			m.InstantiationFailures,
			m.CacheRequests,
			m.LoadDuration,
			m.Lookups,
		)
	}

	return m
}

// RecordLoad records a completed load for namespace from source
func (m *Metrics) RecordLoad(namespace, source string, modules int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.ModulesLoaded.WithLabelValues(namespace, source).Add(float64(modules))
	m.LoadDuration.WithLabelValues(namespace, source).Observe(elapsed.Seconds())
}

// RecordInstantiationFailure counts a module that could not be constructed
func (m *Metrics) RecordInstantiationFailure(namespace string) {
	if m == nil {
		return
	}
	m.InstantiationFailures.WithLabelValues(namespace).Inc()
}

// RecordCache counts a cache lookup outcome
func (m *Metrics) RecordCache(namespace, result string) {
	if m == nil {
		return
	}
	m.CacheRequests.WithLabelValues(namespace, result).Inc()
}

// RecordLookup counts a registry lookup; found selects the result label
func (m *Metrics) RecordLookup(found bool) {
	if m == nil {
		return
	}
	result := "found"
	if !found {
		result = "not_found"
	}
	m.Lookups.WithLabelValues(result).Inc()
}
