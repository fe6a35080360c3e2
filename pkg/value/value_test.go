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

package value_test

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/f5/secflow/pkg/value"
)

func TestScalarEqualityAndOrder(t *testing.T) {
	require.True(t, value.Int64(1).Equal(value.Int64(1)))
	require.False(t, value.Int64(1).Equal(value.Int64(2)))
	assert.Equal(t, -1, value.Int64(1).Compare(value.Int64(2)))
	assert.Equal(t, 1, value.String("b").Compare(value.String("a")))
}

func TestCompareAcrossKindsPanics(t *testing.T) {
	assert.Panics(t, func() {
		value.Int64(1).Compare(value.Uint64(1))
	})
}

func TestIPNormalizesToV4Mapped(t *testing.T) {
	a := value.NewIP(net.ParseIP("1.2.3.4"))
	b := value.NewIP(net.ParseIP("1.2.3.4").To16())
	assert.True(t, a.Equal(b))
	assert.Equal(t, 16, len(net.IP(a)))
}

func TestRecordOrderPreservedAndStructural(t *testing.T) {
	r1 := value.Record{{Name: "a", Value: value.Int64(1)}, {Name: "b", Value: value.String("x")}}
	r2 := value.Record{{Name: "a", Value: value.Int64(1)}, {Name: "b", Value: value.String("x")}}
	r3 := value.Record{{Name: "b", Value: value.String("x")}, {Name: "a", Value: value.Int64(1)}}
	assert.True(t, r1.Equal(r2))
	assert.False(t, r1.Equal(r3), "field order is part of record identity")
	v, ok := r1.Get("b")
	require.True(t, ok)
	assert.Equal(t, value.String("x"), v)
}

func TestStructuralHashStableAndDistinguishesKinds(t *testing.T) {
	h1 := value.StructuralHash(value.Int64(1))
	h2 := value.StructuralHash(value.Int64(1))
	h3 := value.StructuralHash(value.Uint64(1))
	assert.Equal(t, h1, h2)
	assert.NotEqual(t, h1, h3)
}

func TestListHashOrderSensitive(t *testing.T) {
	l1 := value.List{value.Int64(1), value.Int64(2)}
	l2 := value.List{value.Int64(2), value.Int64(1)}
	assert.NotEqual(t, value.StructuralHash(l1), value.StructuralHash(l2))
}
