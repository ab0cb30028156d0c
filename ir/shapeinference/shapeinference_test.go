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

package shapeinference

import (
	"fmt"
	"testing"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gonnc/gonnc/types/shapes"
	"github.com/stretchr/testify/require"
)

func TestConvPoolOutputDims(t *testing.T) {
	testCases := []struct {
		h, w, kernel, stride, pad int
		wantH, wantW              int
	}{
		{32, 32, 3, 1, 1, 32, 32},
		{32, 32, 3, 2, 0, 15, 15}, // truncating: (32-3)/2+1
		{28, 28, 5, 1, 2, 28, 28},
		{28, 14, 2, 2, 0, 14, 7},
		{7, 7, 7, 1, 0, 1, 1},
		{5, 5, 3, 3, 0, 1, 1}, // truncating: (5-3)/3+1
	}
	for _, test := range testCases {
		t.Run(fmt.Sprintf("%dx%d_k%d_s%d_p%d", test.h, test.w, test.kernel, test.stride, test.pad),
			func(t *testing.T) {
				outH, outW, err := ConvPoolOutputDims(test.h, test.w, test.kernel, test.stride, test.pad)
				require.NoError(t, err)
				require.Equal(t, test.wantH, outH)
				require.Equal(t, test.wantW, outW)
			})
	}
}

func TestConvPoolOutputDimsErrors(t *testing.T) {
	// Kernel larger than the padded input.
	_, _, err := ConvPoolOutputDims(4, 4, 5, 1, 0)
	require.Error(t, err)
	// Non-positive kernel and stride.
	_, _, err = ConvPoolOutputDims(4, 4, 0, 1, 0)
	require.Error(t, err)
	_, _, err = ConvPoolOutputDims(4, 4, 2, 0, 0)
	require.Error(t, err)
	// Negative padding.
	_, _, err = ConvPoolOutputDims(4, 4, 2, 1, -1)
	require.Error(t, err)
}

func TestConvPoolOutputDimsPadded(t *testing.T) {
	// Rectangular kernel, per-axis strides and asymmetric padding.
	outH, outW, err := ConvPoolOutputDimsPadded(10, 20, 3, 5, 1, 2, 1, 0, 2, 1)
	require.NoError(t, err)
	require.Equal(t, (10+1+0-3)/1+1, outH)
	require.Equal(t, (20+2+1-5)/2+1, outW)
}

func TestConvolution(t *testing.T) {
	input := shapes.Make(dtypes.Float32, 8, 32, 32, 3)
	filter := shapes.Make(dtypes.Float32, 16, 5, 5, 3)
	bias := shapes.Make(dtypes.Float32, 16)
	output, err := Convolution(input, filter, bias, 5, 1, 2, 16)
	require.NoError(t, err)
	require.True(t, output.Equal(shapes.Make(dtypes.Float32, 8, 32, 32, 16)))

	// Not NHWC.
	_, err = Convolution(shapes.Make(dtypes.Float32, 32, 32, 3), filter, bias, 5, 1, 2, 16)
	require.Error(t, err)
	// Filter channels don't match input channels.
	badFilter := shapes.Make(dtypes.Float32, 16, 5, 5, 4)
	_, err = Convolution(input, badFilter, bias, 5, 1, 2, 16)
	require.Error(t, err)
	// Bias extent doesn't match depth.
	badBias := shapes.Make(dtypes.Float32, 8)
	_, err = Convolution(input, filter, badBias, 5, 1, 2, 16)
	require.Error(t, err)
}

func TestPool(t *testing.T) {
	input := shapes.Make(dtypes.Float32, 8, 28, 28, 16)
	output, err := Pool(input, 2, 2, 0)
	require.NoError(t, err)
	require.True(t, output.Equal(shapes.Make(dtypes.Float32, 8, 14, 14, 16)))

	_, err = Pool(shapes.Make(dtypes.Float32, 28, 28), 2, 2, 0)
	require.Error(t, err)
	_, err = Pool(input, 45, 2, 0)
	require.Error(t, err)
}

func TestFullyConnected(t *testing.T) {
	input := shapes.Make(dtypes.Float32, 8, 256)
	filter := shapes.Make(dtypes.Float32, 256, 10)
	bias := shapes.Make(dtypes.Float32, 10)
	output, err := FullyConnected(input, filter, bias, 10)
	require.NoError(t, err)
	require.True(t, output.Equal(shapes.Make(dtypes.Float32, 8, 10)))

	// Rank-1 input.
	_, err = FullyConnected(shapes.Make(dtypes.Float32, 256), filter, bias, 10)
	require.Error(t, err)
	// Filter inChannels mismatched with the input's last axis.
	_, err = FullyConnected(shapes.Make(dtypes.Float32, 8, 128), filter, bias, 10)
	require.Error(t, err)
	// Bias mismatched with depth.
	_, err = FullyConnected(input, filter, shapes.Make(dtypes.Float32, 16), 10)
	require.Error(t, err)
}

func TestConcat(t *testing.T) {
	a := shapes.Make(dtypes.Float32, 8, 4, 16)
	b := shapes.Make(dtypes.Float32, 8, 3, 16)
	output, err := Concat([]shapes.Shape{a, b}, 1)
	require.NoError(t, err)
	require.True(t, output.Equal(shapes.Make(dtypes.Float32, 8, 7, 16)))

	// Single input is the identity.
	output, err = Concat([]shapes.Shape{a}, 2)
	require.NoError(t, err)
	require.True(t, output.Equal(a))

	_, err = Concat(nil, 0)
	require.Error(t, err)
	_, err = Concat([]shapes.Shape{a, b}, 3)
	require.Error(t, err)
	// Non-concat axis differs.
	_, err = Concat([]shapes.Shape{a, shapes.Make(dtypes.Float32, 4, 3, 16)}, 1)
	require.Error(t, err)
	// DType differs.
	_, err = Concat([]shapes.Shape{a, shapes.Make(dtypes.Float64, 8, 3, 16)}, 1)
	require.Error(t, err)
}

func TestReshape(t *testing.T) {
	input := shapes.Make(dtypes.Float32, 2, 3, 4)
	output, err := Reshape(input, []int{6, 4})
	require.NoError(t, err)
	require.True(t, output.Equal(shapes.Make(dtypes.Float32, 6, 4)))

	// Element count must be preserved.
	_, err = Reshape(input, []int{6, 5})
	require.Error(t, err)
	_, err = Reshape(input, []int{-6, -4})
	require.Error(t, err)
}

func TestTranspose(t *testing.T) {
	input := shapes.Make(dtypes.Float32, 2, 3, 4)
	output, err := Transpose(input, []int{2, 0, 1})
	require.NoError(t, err)
	require.True(t, output.Equal(shapes.Make(dtypes.Float32, 4, 2, 3)))

	// Shuffle must be a permutation of the axes.
	_, err = Transpose(input, []int{0, 1})
	require.Error(t, err)
	_, err = Transpose(input, []int{0, 0, 1})
	require.Error(t, err)
	_, err = Transpose(input, []int{0, 1, 3})
	require.Error(t, err)
}

func TestBinary(t *testing.T) {
	a := shapes.Make(dtypes.Float32, 2, 3)
	output, err := Binary(a, shapes.Make(dtypes.Float32, 2, 3))
	require.NoError(t, err)
	require.True(t, output.Equal(a))

	// No broadcasting: shapes must be identical.
	_, err = Binary(a, shapes.Make(dtypes.Float32, 2, 1))
	require.Error(t, err)
	_, err = Binary(a, shapes.Make(dtypes.Float64, 2, 3))
	require.Error(t, err)
}
