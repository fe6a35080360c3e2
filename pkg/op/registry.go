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

package op

import (
	"fmt"
	"sync"

	gojson "github.com/goccy/go-json"
)

// Factory produces a zero-valued Operator ready to be unmarshaled into.
type Factory func() Operator

// Registry maps an operator's stable Name() to a Factory, so that a
// serialized pipeline (or op.Copy's round trip) can reconstruct the
// concrete type behind the Operator interface.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds name to the registry. Registering a name that is already
// present panics, whatever the factory: that is always a programming
// error, never a runtime condition.
func (r *Registry) Register(name string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.factories[name]; ok {
		panic(fmt.Sprintf("op: operator %q already registered", name))
	}
	r.factories[name] = f
}

// Encode serializes an Operator to its wire form: the operator's Name()
// followed by its JSON-encoded fields, used both for persisted pipeline
// definitions and op.Copy's deep-clone round trip.
func Encode(o Operator) ([]byte, error) {
	payload, err := gojson.Marshal(o)
	if err != nil {
		return nil, fmt.Errorf("op: encode %q: %w", o.Name(), err)
	}
	env := envelope{Name: o.Name(), Payload: payload}
	return gojson.Marshal(env)
}

// Decode reconstructs an Operator previously produced by Encode, using r
// to resolve the concrete type behind the envelope's name.
func (r *Registry) Decode(data []byte) (Operator, error) {
	var env envelope
	if err := gojson.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("op: decode envelope: %w", err)
	}
	r.mu.RLock()
	factory, ok := r.factories[env.Name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("op: no operator registered under name %q", env.Name)
	}
	target := factory()
	if err := gojson.Unmarshal(env.Payload, target); err != nil {
		return nil, fmt.Errorf("op: decode %q: %w", env.Name, err)
	}
	return target, nil
}

// Copy deep-clones o via a serialize/deserialize round trip through r,
// satisfying the Operator.Copy contract for any operator type registered
// with r (spec.md §4.D).
func Copy(r *Registry, o Operator) (Operator, error) {
	data, err := Encode(o)
	if err != nil {
		return nil, err
	}
	return r.Decode(data)
}

type envelope struct {
	Name    string          `json:"name"`
	Payload gojson.RawMessage `json:"payload"`
}
