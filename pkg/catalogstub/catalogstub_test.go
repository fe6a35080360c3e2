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

package catalogstub_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/f5/secflow/pkg/catalogstub"
)

func TestQueryWithNilPredicateReturnsEverything(t *testing.T) {
	cat := catalogstub.New(
		catalogstub.Partition{Path: "/a", Tags: map[string]string{"region": "us"}},
		catalogstub.Partition{Path: "/b", Tags: map[string]string{"region": "eu"}},
	)
	got := cat.Query(nil)
	assert.Len(t, got, 2)
}

func TestQueryFiltersByPredicate(t *testing.T) {
	cat := catalogstub.New(
		catalogstub.Partition{Path: "/a", Tags: map[string]string{"region": "us"}},
		catalogstub.Partition{Path: "/b", Tags: map[string]string{"region": "eu"}},
	)
	got := cat.Query(catalogstub.TagEquals("region", "eu"))
	assert.Len(t, got, 1)
	assert.Equal(t, "/b", got[0].Path)
}
