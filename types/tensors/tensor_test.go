/*
 *	Copyright 2024 The gonnc Authors
 *
 *	Licensed under the Apache License, Version 2.0 (the "License");
 *	you may not use this file except in compliance with the License.
 *	You may obtain a copy of the License at
 *
 *	http://www.apache.org/licenses/LICENSE-2.0
 *
 *	Unless required by applicable law or agreed to in writing, software
 *	distributed under the License is distributed on an "AS IS" BASIS,
 *	WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 *	See the License for the specific language governing permissions and
 *	limitations under the License.
 */

package tensors

import (
	"math"
	"testing"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gonnc/gonnc/types/shapes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromShape(t *testing.T) {
	tensor := FromShape(shapes.Make(dtypes.Float32, 2, 3))
	require.Equal(t, 6, tensor.Size())
	require.Equal(t, dtypes.Float32, tensor.DType())
	ConstFlatData(tensor, func(flat []float32) {
		require.Len(t, flat, 6)
		for _, v := range flat {
			assert.Zero(t, v)
		}
	})
	require.Panics(t, func() { FromShape(shapes.Invalid()) })
}

func TestFromScalarAndDimensions(t *testing.T) {
	tensor := FromScalarAndDimensions(float32(0.5), 2, 2)
	require.True(t, tensor.Shape().Equal(shapes.Make(dtypes.Float32, 2, 2)))
	require.Equal(t, []float32{0.5, 0.5, 0.5, 0.5}, CopyFlatData[float32](tensor))
}

func TestFromFlatDataAndDimensions(t *testing.T) {
	tensor := FromFlatDataAndDimensions([]int32{1, 2, 3, 4}, 2, 2)
	require.Equal(t, dtypes.Int32, tensor.DType())
	require.Equal(t, []int32{1, 2, 3, 4}, CopyFlatData[int32](tensor))
	require.Panics(t, func() { FromFlatDataAndDimensions([]int32{1, 2, 3}, 2, 2) })
	// Accessing with the wrong generic type is a contract violation.
	require.Panics(t, func() { ConstFlatData(tensor, func(flat []float32) {}) })
}

func TestAssignFrom(t *testing.T) {
	tensor := FromFlatDataAndDimensions([]float32{1, 2, 3, 4}, 2, 2)
	require.NoError(t, tensor.AssignFrom(FromFlatDataAndDimensions([]float32{5, 6, 7, 8}, 2, 2)))
	require.Equal(t, []float32{5, 6, 7, 8}, CopyFlatData[float32](tensor))

	// Mismatched dimensions: error, content untouched.
	err := tensor.AssignFrom(FromFlatDataAndDimensions([]float32{1, 2, 3, 4}, 4))
	require.Error(t, err)
	require.Equal(t, []float32{5, 6, 7, 8}, CopyFlatData[float32](tensor))

	// Mismatched dtype: error, content untouched.
	err = tensor.AssignFrom(FromFlatDataAndDimensions([]float64{1, 2, 3, 4}, 2, 2))
	require.Error(t, err)
	require.Equal(t, []float32{5, 6, 7, 8}, CopyFlatData[float32](tensor))
}

func TestClone(t *testing.T) {
	tensor := FromFlatDataAndDimensions([]float64{1, 2}, 2)
	clone := tensor.Clone()
	require.True(t, tensor.Equal(clone))
	MutableFlatData(clone, func(flat []float64) { flat[0] = -1 })
	require.False(t, tensor.Equal(clone))
	require.Equal(t, []float64{1, 2}, CopyFlatData[float64](tensor))
}

func TestDigest(t *testing.T) {
	a := FromFlatDataAndDimensions([]float32{1, 2, 3, 4}, 2, 2)
	b := FromFlatDataAndDimensions([]float32{1, 2, 3, 4}, 2, 2)
	require.Equal(t, a.Digest(), b.Digest())
	require.True(t, a.Equal(b))

	// Same flat data, different dimensions: different digest.
	c := FromFlatDataAndDimensions([]float32{1, 2, 3, 4}, 4)
	require.NotEqual(t, a.Digest(), c.Digest())

	// A single changed element changes the digest.
	MutableFlatData(b, func(flat []float32) { flat[3] = 5 })
	require.NotEqual(t, a.Digest(), b.Digest())
}

func TestDigestNaN(t *testing.T) {
	// The digest goes through canonical float bits: tensors holding NaNs with
	// the same payload are bit-identical and must digest identically.
	nan := float32(math.NaN())
	a := FromFlatDataAndDimensions([]float32{nan, 1}, 2)
	b := FromFlatDataAndDimensions([]float32{nan, 1}, 2)
	require.Equal(t, a.Digest(), b.Digest())
	require.True(t, a.Equal(b))

	// +0 and -0 are distinct bit patterns and digest differently.
	plusZero := FromFlatDataAndDimensions([]float32{0}, 1)
	minusZero := FromFlatDataAndDimensions([]float32{float32(math.Copysign(0, -1))}, 1)
	require.NotEqual(t, plusZero.Digest(), minusZero.Digest())
}
