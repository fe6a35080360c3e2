// Copyright The OpenTelemetry Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//       http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package schema

import (
	"errors"
	"sync"
)

// ErrHeterogeneousList is returned by Infer when a list mixes value tags
// that cannot be unified into a single column type. The callers in this
// module fall back to a null column type; none of them splits the column
// into a multi-series result.
var ErrHeterogeneousList = errors.New("schema: heterogeneous list")

// Registry is the process-global schema cache: it assigns each
// structurally distinct schema a fingerprint and hands back a shared,
// canonical instance for any schema registered more than once. Per
// spec.md §5, mutation is only legal before the first pipeline starts;
// Freeze marks that boundary.
type Registry struct {
	mu      sync.RWMutex
	byFP    map[Fingerprint]Schema
	frozen  bool
	strict  bool // when true, Register on a frozen registry panics instead of silently caching
}

// NewRegistry constructs an empty, mutable registry.
func NewRegistry() *Registry {
	return &Registry{byFP: make(map[Fingerprint]Schema)}
}

// Register returns the canonical instance for s: if an identical schema
// (by fingerprint) is already cached, that instance is returned; otherwise
// s is cached and returned.
func (r *Registry) Register(s Schema) Schema {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.byFP[s.Fingerprint()]; ok {
		return existing
	}
	if r.frozen && r.strict {
		panic("schema: registry is frozen; cannot register new schema " + s.Name)
	}
	r.byFP[s.Fingerprint()] = s
	return s
}

// FromFingerprint looks up a previously registered schema by fingerprint.
func (r *Registry) FromFingerprint(fp Fingerprint) (Schema, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.byFP[fp]
	return s, ok
}

// Freeze marks the registry's current contents as the snapshot boundary:
// the two-phase builder→snapshot pattern used for every process-global
// collaborator (spec.md §9). With strict, registering a new schema
// afterwards panics; without it, new schemas are still cached.
func (r *Registry) Freeze(strict bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frozen = true
	r.strict = strict
}

// Len reports the number of distinct schemas currently cached.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byFP)
}
