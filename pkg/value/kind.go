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

// Package value implements the tagged value model shared by every batch
// column and every expression result in the substrate.
package value

// Kind tags the sum type every Value belongs to. Ordering between values is
// only ever defined within a single Kind.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt64
	KindUint64
	KindFloat64
	KindDuration
	KindTime
	KindString
	KindBytes
	KindIP
	KindSubnet
	KindEnum
	KindList
	KindRecord
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt64:
		return "int64"
	case KindUint64:
		return "uint64"
	case KindFloat64:
		return "double"
	case KindDuration:
		return "duration"
	case KindTime:
		return "time"
	case KindString:
		return "string"
	case KindBytes:
		return "bytes"
	case KindIP:
		return "ip"
	case KindSubnet:
		return "subnet"
	case KindEnum:
		return "enum"
	case KindList:
		return "list"
	case KindRecord:
		return "record"
	case KindMap:
		return "map"
	default:
		return "unknown"
	}
}
