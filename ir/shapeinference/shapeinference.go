// Package shapeinference calculates the output shape of IR operations and
// validates their inputs.
//
// Every function here is pure and deterministic: given the same operand shapes
// and attributes it always produces the same output shape. Operator
// constructors in the ir package call these exactly once, at node construction
// time, so a node's output shape is fixed the moment it exists.
//
// Violated preconditions (rank mismatch, kernel larger than the padded input,
// reshape element-count mismatch, concat axis-extent mismatch, ...) are
// reported as errors; the caller must not create the node.
//
// Convolution and pooling use the same output-extent arithmetic, exposed as
// ConvPoolOutputDims. Spatial layout is NHWC.
package shapeinference

import (
	"github.com/gonnc/gonnc/types/shapes"
	"github.com/pkg/errors"
)

// ConvPoolOutputDims returns the output spatial extents of a convolution or
// pooling with a square kernel, symmetric padding and equal strides:
//
//	outH = (h + 2*pad - kernel)/stride + 1
//	outW = (w + 2*pad - kernel)/stride + 1
//
// The division truncates: when the stride doesn't step evenly over the padded
// input, the last partial window is dropped. A kernel larger than the padded
// input is an error.
func ConvPoolOutputDims(h, w, kernel, stride, pad int) (outH, outW int, err error) {
	return ConvPoolOutputDimsPadded(h, w, kernel, kernel, stride, stride, pad, pad, pad, pad)
}

// ConvPoolOutputDimsPadded is the general form of ConvPoolOutputDims, with a
// rectangular kernel (kh, kw), per-axis strides (sh, sw) and asymmetric
// padding (top, bottom, left, right):
//
//	outH = (h + top + bottom - kh)/sh + 1
//	outW = (w + left + right - kw)/sw + 1
func ConvPoolOutputDimsPadded(h, w, kh, kw, sh, sw, top, bottom, left, right int) (outH, outW int, err error) {
	outH, err = slidingWindowExtent(h, kh, sh, top, bottom)
	if err != nil {
		return 0, 0, errors.WithMessage(err, "height axis")
	}
	outW, err = slidingWindowExtent(w, kw, sw, left, right)
	if err != nil {
		return 0, 0, errors.WithMessage(err, "width axis")
	}
	return outH, outW, nil
}

func slidingWindowExtent(in, kernel, stride, before, after int) (int, error) {
	if kernel <= 0 || stride <= 0 {
		return 0, errors.Errorf("kernel (%d) and stride (%d) must be positive", kernel, stride)
	}
	if before < 0 || after < 0 {
		return 0, errors.Errorf("padding (%d, %d) must be non-negative", before, after)
	}
	span := in + before + after - kernel
	if span < 0 {
		return 0, errors.Errorf("kernel %d larger than padded input %d", kernel, in+before+after)
	}
	return span/stride + 1, nil
}

// Convolution infers the output shape of a 2D convolution over an NHWC input
// [batch, h, w, channels], with a filter [depth, kernel, kernel, channels] and
// a bias [depth]. The output is [batch, outH, outW, depth].
func Convolution(input, filter, bias shapes.Shape, kernel, stride, pad, depth int) (shapes.Shape, error) {
	if input.Rank() != 4 {
		return shapes.Invalid(), errors.Errorf("convolution input must be rank-4 NHWC, got %s", input)
	}
	wantFilter := shapes.Make(input.DType, depth, kernel, kernel, input.Dim(3))
	if !filter.Equal(wantFilter) {
		return shapes.Invalid(), errors.Errorf("convolution filter must be %s, got %s", wantFilter, filter)
	}
	wantBias := shapes.Make(input.DType, depth)
	if !bias.Equal(wantBias) {
		return shapes.Invalid(), errors.Errorf("convolution bias must be %s, got %s", wantBias, bias)
	}
	outH, outW, err := ConvPoolOutputDims(input.Dim(1), input.Dim(2), kernel, stride, pad)
	if err != nil {
		return shapes.Invalid(), errors.WithMessagef(err, "convolution over input %s", input)
	}
	return shapes.Make(input.DType, input.Dim(0), outH, outW, depth), nil
}

// Pool infers the output shape of a 2D pooling over an NHWC input
// [batch, h, w, channels]. Channels are preserved.
func Pool(input shapes.Shape, kernel, stride, pad int) (shapes.Shape, error) {
	if input.Rank() != 4 {
		return shapes.Invalid(), errors.Errorf("pool input must be rank-4 NHWC, got %s", input)
	}
	outH, outW, err := ConvPoolOutputDims(input.Dim(1), input.Dim(2), kernel, stride, pad)
	if err != nil {
		return shapes.Invalid(), errors.WithMessagef(err, "pool over input %s", input)
	}
	return shapes.Make(input.DType, input.Dim(0), outH, outW, input.Dim(3)), nil
}

// FullyConnected infers the output shape of a fully-connected layer: the
// input's last axis (channels) is replaced by depth. The filter must be
// [inChannels, depth] and the bias [depth].
func FullyConnected(input, filter, bias shapes.Shape, depth int) (shapes.Shape, error) {
	if input.Rank() < 2 {
		return shapes.Invalid(), errors.Errorf("fully-connected input must have rank >= 2, got %s", input)
	}
	inChannels := input.Dim(-1)
	wantFilter := shapes.Make(input.DType, inChannels, depth)
	if !filter.Equal(wantFilter) {
		return shapes.Invalid(), errors.Errorf("fully-connected filter must be %s, got %s", wantFilter, filter)
	}
	wantBias := shapes.Make(input.DType, depth)
	if !bias.Equal(wantBias) {
		return shapes.Invalid(), errors.Errorf("fully-connected bias must be %s, got %s", wantBias, bias)
	}
	dims := input.Clone().Dimensions
	dims[len(dims)-1] = depth
	return shapes.Make(input.DType, dims...), nil
}

// Concat infers the shape of a concatenation of the inputs along the given
// axis: the axis extent is the sum of the inputs' extents, every other axis
// (and the dtype) must match across all inputs.
func Concat(inputs []shapes.Shape, axis int) (shapes.Shape, error) {
	if len(inputs) == 0 {
		return shapes.Invalid(), errors.Errorf("concat requires at least one input")
	}
	first := inputs[0]
	if axis < 0 || axis >= first.Rank() {
		return shapes.Invalid(), errors.Errorf("concat axis %d out-of-range for rank %d", axis, first.Rank())
	}
	dims := first.Clone().Dimensions
	for ii, input := range inputs[1:] {
		if input.DType != first.DType {
			return shapes.Invalid(), errors.Errorf("concat input #%d has dtype %s, want %s", ii+1, input.DType, first.DType)
		}
		if input.Rank() != first.Rank() {
			return shapes.Invalid(), errors.Errorf("concat input #%d has rank %d, want %d", ii+1, input.Rank(), first.Rank())
		}
		for d := range dims {
			if d == axis {
				dims[d] += input.Dim(d)
				continue
			}
			if input.Dim(d) != first.Dim(d) {
				return shapes.Invalid(), errors.Errorf(
					"concat input #%d has dimension %d on axis %d, want %d (only axis %d may differ)",
					ii+1, input.Dim(d), d, first.Dim(d), axis)
			}
		}
	}
	return shapes.Make(first.DType, dims...), nil
}

// Reshape infers the shape of a reshape to the given dimensions. The total
// element count must be preserved; the dtype is forwarded unchanged.
func Reshape(input shapes.Shape, dimensions []int) (shapes.Shape, error) {
	size := 1
	for _, dim := range dimensions {
		if dim <= 0 {
			return shapes.Invalid(), errors.Errorf("reshape dimensions %v must be positive", dimensions)
		}
		size *= dim
	}
	if size != input.Size() {
		return shapes.Invalid(), errors.Errorf(
			"reshape of %s (%d elements) to %v (%d elements) changes the element count",
			input, input.Size(), dimensions, size)
	}
	return shapes.Make(input.DType, dimensions...), nil
}

// Transpose infers the shape of a transposition: the output dimensions are the
// input dimensions permuted by shuffle, which must be a permutation of the
// input's axes.
func Transpose(input shapes.Shape, shuffle []int) (shapes.Shape, error) {
	if len(shuffle) != input.Rank() {
		return shapes.Invalid(), errors.Errorf(
			"transpose shuffle %v must have one entry per axis of %s", shuffle, input)
	}
	seen := make([]bool, input.Rank())
	dims := make([]int, input.Rank())
	for ii, axis := range shuffle {
		if axis < 0 || axis >= input.Rank() || seen[axis] {
			return shapes.Invalid(), errors.Errorf(
				"transpose shuffle %v is not a permutation of the axes of %s", shuffle, input)
		}
		seen[axis] = true
		dims[ii] = input.Dim(axis)
	}
	return shapes.Make(input.DType, dims...), nil
}

// Binary validates the operands of an elementwise binary operation: both must
// have exactly the same shape -- no broadcasting at the IR level. The output
// shape is the (shared) input shape.
func Binary(lhs, rhs shapes.Shape) (shapes.Shape, error) {
	if !lhs.Equal(rhs) {
		return shapes.Invalid(), errors.Errorf("binary operands must have identical shapes, got %s and %s", lhs, rhs)
	}
	return lhs.Clone(), nil
}
