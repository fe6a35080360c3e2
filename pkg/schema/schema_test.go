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

package schema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/f5/secflow/pkg/schema"
	"github.com/f5/secflow/pkg/value"
)

func TestIdenticalSchemasShareFingerprint(t *testing.T) {
	a := schema.New("s", schema.Field{Name: "a", Type: schema.Scalar(schema.Int64)})
	b := schema.New("s", schema.Field{Name: "a", Type: schema.Scalar(schema.Int64)})
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
	assert.True(t, a.Equal(b))
}

func TestFieldOrderAffectsFingerprint(t *testing.T) {
	a := schema.New("s",
		schema.Field{Name: "a", Type: schema.Scalar(schema.Int64)},
		schema.Field{Name: "b", Type: schema.Scalar(schema.String)},
	)
	b := schema.New("s",
		schema.Field{Name: "b", Type: schema.Scalar(schema.String)},
		schema.Field{Name: "a", Type: schema.Scalar(schema.Int64)},
	)
	assert.NotEqual(t, a.Fingerprint(), b.Fingerprint())
}

func TestSchemaNameNotPartOfFingerprint(t *testing.T) {
	a := schema.New("one", schema.Field{Name: "a", Type: schema.Scalar(schema.Int64)})
	b := schema.New("two", schema.Field{Name: "a", Type: schema.Scalar(schema.Int64)})
	assert.Equal(t, a.Fingerprint(), b.Fingerprint(), "fingerprint is derived from field names/types only")
}

func TestRegistryReturnsCanonicalInstance(t *testing.T) {
	reg := schema.NewRegistry()
	a := schema.New("s", schema.Field{Name: "a", Type: schema.Scalar(schema.Bool)})
	b := schema.New("s", schema.Field{Name: "a", Type: schema.Scalar(schema.Bool)})

	got1 := reg.Register(a)
	got2 := reg.Register(b)
	assert.Equal(t, 1, reg.Len())
	assert.Equal(t, got1.Fingerprint(), got2.Fingerprint())

	byFP, ok := reg.FromFingerprint(a.Fingerprint())
	require.True(t, ok)
	assert.Equal(t, "s", byFP.Name)
}

func TestInferHeterogeneousList(t *testing.T) {
	_, err := schema.Infer(value.List{value.Int64(1), value.String("x")})
	assert.ErrorIs(t, err, schema.ErrHeterogeneousList)
}

func TestInferRecord(t *testing.T) {
	r := value.Record{
		{Name: "a", Value: value.Int64(1)},
		{Name: "b", Value: value.String("x")},
	}
	s, err := schema.InferRecordSchema("s", r)
	require.NoError(t, err)
	assert.Equal(t, 2, len(s.Fields))
	assert.Equal(t, "a", s.Fields[0].Name)
}
