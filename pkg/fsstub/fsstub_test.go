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

package fsstub_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/f5/secflow/pkg/fsstub"
)

func TestWriteReadRoundTrip(t *testing.T) {
	fs := fsstub.New()
	require.NoError(t, fs.Write("/a", []byte("hello"), time.Now()))
	got, err := fs.Read("/a")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(got))
}

func TestReadMissingReturnsNotFound(t *testing.T) {
	fs := fsstub.New()
	_, err := fs.Read("/missing")
	assert.ErrorIs(t, err, fsstub.ErrNotFound)
}

func TestStatReportsSize(t *testing.T) {
	fs := fsstub.New()
	require.NoError(t, fs.Write("/a", []byte("1234"), time.Now()))
	meta, err := fs.Stat("/a")
	require.NoError(t, err)
	assert.Equal(t, int64(4), meta.Size)
}

func TestRemoveDeletes(t *testing.T) {
	fs := fsstub.New()
	require.NoError(t, fs.Write("/a", []byte("x"), time.Now()))
	require.NoError(t, fs.Remove("/a"))
	_, err := fs.Read("/a")
	assert.ErrorIs(t, err, fsstub.ErrNotFound)
}
