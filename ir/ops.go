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

package ir

// This file has the concrete operator variants: one attribute struct plus one
// Graph factory method per operator. Every factory runs shape inference
// exactly once, synchronously, and panics without creating the node if the
// operands or attributes are malformed.

import (
	"fmt"

	"github.com/gomlx/exceptions"
	"github.com/gonnc/gonnc/ir/shapeinference"
	"github.com/gonnc/gonnc/types/shapes"
)

// PoolOp selects the reduction performed by a Pool node.
type PoolOp int

const (
	PoolMax PoolOp = iota
	PoolAvg
)

// String implements fmt.Stringer.
func (op PoolOp) String() string {
	switch op {
	case PoolMax:
		return "Max"
	case PoolAvg:
		return "Avg"
	}
	return fmt.Sprintf("PoolOp(%d)", int(op))
}

// ArithOp selects the elementwise operation performed by an Arithmetic node.
type ArithOp int

const (
	ArithAdd ArithOp = iota
	ArithSub
	ArithMul
	ArithDiv
	ArithMax
	ArithMin
)

// String implements fmt.Stringer.
func (op ArithOp) String() string {
	switch op {
	case ArithAdd:
		return "Add"
	case ArithSub:
		return "Sub"
	case ArithMul:
		return "Mul"
	case ArithDiv:
		return "Div"
	case ArithMax:
		return "Max"
	case ArithMin:
		return "Min"
	}
	return fmt.Sprintf("ArithOp(%d)", int(op))
}

// Convolution is the attribute view of a 2D convolution node.
// Operands: input (NHWC), filter, bias.
type Convolution struct {
	Kernel, Stride, Pad, Depth int
}

func (c *Convolution) Kind() Kind { return KindConvolution }
func (c *Convolution) String() string {
	return fmt.Sprintf("Convolution(kernel=%d, stride=%d, pad=%d, depth=%d)", c.Kernel, c.Stride, c.Pad, c.Depth)
}
func (c *Convolution) clone() NodeAttrs { clone := *c; return &clone }

// Convolution creates a 2D convolution node over an NHWC input, with a filter
// [depth, kernel, kernel, channels] and a bias [depth].
func (g *Graph) Convolution(name string, input, filter, bias NodeValue, kernel, stride, pad, depth int) *Node {
	shape, err := shapeinference.Convolution(input.Shape(), filter.Shape(), bias.Shape(), kernel, stride, pad, depth)
	if err != nil {
		exceptions.Panicf("Graph(%q).Convolution(%q): %v", g.name, name, err)
	}
	attrs := &Convolution{Kernel: kernel, Stride: stride, Pad: pad, Depth: depth}
	return g.newNode(name, attrs, []NodeValue{input, filter, bias}, shape)
}

// Pool is the attribute view of a 2D pooling node. Operand: input (NHWC).
type Pool struct {
	Op                  PoolOp
	Kernel, Stride, Pad int
}

func (p *Pool) Kind() Kind { return KindPool }
func (p *Pool) String() string {
	return fmt.Sprintf("%sPool(kernel=%d, stride=%d, pad=%d)", p.Op, p.Kernel, p.Stride, p.Pad)
}
func (p *Pool) clone() NodeAttrs { clone := *p; return &clone }

// Pool creates a 2D pooling node over an NHWC input.
func (g *Graph) Pool(name string, input NodeValue, op PoolOp, kernel, stride, pad int) *Node {
	shape, err := shapeinference.Pool(input.Shape(), kernel, stride, pad)
	if err != nil {
		exceptions.Panicf("Graph(%q).Pool(%q): %v", g.name, name, err)
	}
	attrs := &Pool{Op: op, Kernel: kernel, Stride: stride, Pad: pad}
	return g.newNode(name, attrs, []NodeValue{input}, shape)
}

// MaxPool creates a max-pooling node. See Pool.
func (g *Graph) MaxPool(name string, input NodeValue, kernel, stride, pad int) *Node {
	return g.Pool(name, input, PoolMax, kernel, stride, pad)
}

// AvgPool creates an average-pooling node. See Pool.
func (g *Graph) AvgPool(name string, input NodeValue, kernel, stride, pad int) *Node {
	return g.Pool(name, input, PoolAvg, kernel, stride, pad)
}

// FullyConnected is the attribute view of a fully-connected node.
// Operands: input, filter, bias.
type FullyConnected struct {
	Depth int
}

func (f *FullyConnected) Kind() Kind       { return KindFullyConnected }
func (f *FullyConnected) String() string   { return fmt.Sprintf("FullyConnected(depth=%d)", f.Depth) }
func (f *FullyConnected) clone() NodeAttrs { clone := *f; return &clone }

// FullyConnected creates a fully-connected node: the input's channel axis is
// replaced by depth. Filter must be [inChannels, depth] and bias [depth].
func (g *Graph) FullyConnected(name string, input, filter, bias NodeValue, depth int) *Node {
	shape, err := shapeinference.FullyConnected(input.Shape(), filter.Shape(), bias.Shape(), depth)
	if err != nil {
		exceptions.Panicf("Graph(%q).FullyConnected(%q): %v", g.name, name, err)
	}
	return g.newNode(name, &FullyConnected{Depth: depth}, []NodeValue{input, filter, bias}, shape)
}

// Relu is the attribute view of a rectified-linear activation node.
type Relu struct{}

func (r *Relu) Kind() Kind       { return KindRelu }
func (r *Relu) String() string   { return "Relu" }
func (r *Relu) clone() NodeAttrs { return &Relu{} }

// Relu creates a rectified-linear activation node. The output shape is the
// input shape, unchanged.
func (g *Graph) Relu(name string, input NodeValue) *Node {
	return g.newNode(name, &Relu{}, []NodeValue{input}, input.Shape().Clone())
}

// Sigmoid is the attribute view of a sigmoid activation node.
type Sigmoid struct{}

func (s *Sigmoid) Kind() Kind       { return KindSigmoid }
func (s *Sigmoid) String() string   { return "Sigmoid" }
func (s *Sigmoid) clone() NodeAttrs { return &Sigmoid{} }

// Sigmoid creates a sigmoid activation node. The output shape is the input
// shape, unchanged.
func (g *Graph) Sigmoid(name string, input NodeValue) *Node {
	return g.newNode(name, &Sigmoid{}, []NodeValue{input}, input.Shape().Clone())
}

// Tanh is the attribute view of a tanh activation node.
type Tanh struct{}

func (t *Tanh) Kind() Kind       { return KindTanh }
func (t *Tanh) String() string   { return "Tanh" }
func (t *Tanh) clone() NodeAttrs { return &Tanh{} }

// Tanh creates a tanh activation node. The output shape is the input shape,
// unchanged.
func (g *Graph) Tanh(name string, input NodeValue) *Node {
	return g.newNode(name, &Tanh{}, []NodeValue{input}, input.Shape().Clone())
}

// SoftMax is the attribute view of a softmax node.
// Operands: input, selected (the expected class indices).
type SoftMax struct{}

func (s *SoftMax) Kind() Kind       { return KindSoftMax }
func (s *SoftMax) String() string   { return "SoftMax" }
func (s *SoftMax) clone() NodeAttrs { return &SoftMax{} }

// SoftMax creates a softmax node. The output shape is the input shape,
// unchanged.
func (g *Graph) SoftMax(name string, input, selected NodeValue) *Node {
	return g.newNode(name, &SoftMax{}, []NodeValue{input, selected}, input.Shape().Clone())
}

// Regression is the attribute view of a regression-loss node.
// Operands: input, expected.
type Regression struct{}

func (r *Regression) Kind() Kind       { return KindRegression }
func (r *Regression) String() string   { return "Regression" }
func (r *Regression) clone() NodeAttrs { return &Regression{} }

// Regression creates a regression-loss node. Input and expected must have
// identical shapes; the output shape is the input shape, unchanged.
func (g *Graph) Regression(name string, input, expected NodeValue) *Node {
	shape, err := shapeinference.Binary(input.Shape(), expected.Shape())
	if err != nil {
		exceptions.Panicf("Graph(%q).Regression(%q): %v", g.name, name, err)
	}
	return g.newNode(name, &Regression{}, []NodeValue{input, expected}, shape)
}

// Reshape is the attribute view of a reshape node. Operand: input.
type Reshape struct {
	Dims []int
}

func (r *Reshape) Kind() Kind     { return KindReshape }
func (r *Reshape) String() string { return fmt.Sprintf("Reshape(dims=%v)", r.Dims) }
func (r *Reshape) clone() NodeAttrs {
	clone := *r
	clone.Dims = append([]int(nil), r.Dims...)
	return &clone
}

// Reshape creates a reshape node to the given dimensions. The total element
// count must be preserved; the dtype is forwarded unchanged.
func (g *Graph) Reshape(name string, input NodeValue, dims ...int) *Node {
	shape, err := shapeinference.Reshape(input.Shape(), dims)
	if err != nil {
		exceptions.Panicf("Graph(%q).Reshape(%q): %v", g.name, name, err)
	}
	attrs := &Reshape{Dims: append([]int(nil), dims...)}
	return g.newNode(name, attrs, []NodeValue{input}, shape)
}

// Transpose is the attribute view of a transposition node. Operand: input.
type Transpose struct {
	Shuffle []int
}

func (t *Transpose) Kind() Kind     { return KindTranspose }
func (t *Transpose) String() string { return fmt.Sprintf("Transpose(shuffle=%v)", t.Shuffle) }
func (t *Transpose) clone() NodeAttrs {
	clone := *t
	clone.Shuffle = append([]int(nil), t.Shuffle...)
	return &clone
}

// Transpose creates a transposition node: the output dimensions are the input
// dimensions permuted by shuffle.
func (g *Graph) Transpose(name string, input NodeValue, shuffle ...int) *Node {
	shape, err := shapeinference.Transpose(input.Shape(), shuffle)
	if err != nil {
		exceptions.Panicf("Graph(%q).Transpose(%q): %v", g.name, name, err)
	}
	attrs := &Transpose{Shuffle: append([]int(nil), shuffle...)}
	return g.newNode(name, attrs, []NodeValue{input}, shape)
}

// Concat is the attribute view of a concatenation node. Operands: the inputs
// being concatenated, in order.
type Concat struct {
	Axis int
}

func (c *Concat) Kind() Kind       { return KindConcat }
func (c *Concat) String() string   { return fmt.Sprintf("Concat(axis=%d)", c.Axis) }
func (c *Concat) clone() NodeAttrs { clone := *c; return &clone }

// Concat creates a concatenation of the inputs along the given axis. The axis
// extent of the output is the sum of the inputs' extents; all other axes must
// match across inputs.
func (g *Graph) Concat(name string, inputs []NodeValue, axis int) *Node {
	inputShapes := make([]shapes.Shape, len(inputs))
	for ii, in := range inputs {
		inputShapes[ii] = in.Shape()
	}
	shape, err := shapeinference.Concat(inputShapes, axis)
	if err != nil {
		exceptions.Panicf("Graph(%q).Concat(%q): %v", g.name, name, err)
	}
	return g.newNode(name, &Concat{Axis: axis}, inputs, shape)
}

// BatchNormalization is the attribute view of a batch-normalization node.
// Operands: input, scale, bias, mean, variance.
type BatchNormalization struct {
	ChannelIdx int
	Epsilon    float32
	Momentum   float32
}

func (b *BatchNormalization) Kind() Kind { return KindBatchNormalization }
func (b *BatchNormalization) String() string {
	return fmt.Sprintf("BatchNormalization(channelIdx=%d, epsilon=%g, momentum=%g)", b.ChannelIdx, b.Epsilon, b.Momentum)
}
func (b *BatchNormalization) clone() NodeAttrs { clone := *b; return &clone }

// BatchNormalization creates a batch-normalization node. The output shape is
// the input shape, unchanged. scale, bias, mean and variance must be vectors
// with the extent of the input's channelIdx axis.
func (g *Graph) BatchNormalization(name string, input, scale, bias, mean, variance NodeValue,
	channelIdx int, epsilon, momentum float32) *Node {
	inputShape := input.Shape()
	if channelIdx < 0 || channelIdx >= inputShape.Rank() {
		exceptions.Panicf("Graph(%q).BatchNormalization(%q): channelIdx %d out-of-range for input %s",
			g.name, name, channelIdx, inputShape)
	}
	wantChannel := shapes.Make(inputShape.DType, inputShape.Dim(channelIdx))
	for _, operand := range []struct {
		role  string
		value NodeValue
	}{{"scale", scale}, {"bias", bias}, {"mean", mean}, {"variance", variance}} {
		if !operand.value.Shape().Equal(wantChannel) {
			exceptions.Panicf("Graph(%q).BatchNormalization(%q): %s must be %s, got %s",
				g.name, name, operand.role, wantChannel, operand.value.Shape())
		}
	}
	attrs := &BatchNormalization{ChannelIdx: channelIdx, Epsilon: epsilon, Momentum: momentum}
	return g.newNode(name, attrs, []NodeValue{input, scale, bias, mean, variance}, inputShape.Clone())
}

// LocalResponseNormalization is the attribute view of an LRN node.
// Operand: input.
type LocalResponseNormalization struct {
	// HalfWindowSize is the number of neighbouring channels on each side to
	// sum over.
	HalfWindowSize int
	Alpha          float32
	Beta           float32
	K              float32
}

func (l *LocalResponseNormalization) Kind() Kind { return KindLocalResponseNormalization }
func (l *LocalResponseNormalization) String() string {
	return fmt.Sprintf("LocalResponseNormalization(halfWindowSize=%d, alpha=%g, beta=%g, k=%g)",
		l.HalfWindowSize, l.Alpha, l.Beta, l.K)
}
func (l *LocalResponseNormalization) clone() NodeAttrs { clone := *l; return &clone }

// LocalResponseNormalization creates an LRN node. The output shape is the
// input shape, unchanged.
func (g *Graph) LocalResponseNormalization(name string, input NodeValue,
	halfWindowSize int, alpha, beta, k float32) *Node {
	attrs := &LocalResponseNormalization{HalfWindowSize: halfWindowSize, Alpha: alpha, Beta: beta, K: k}
	return g.newNode(name, attrs, []NodeValue{input}, input.Shape().Clone())
}

// Arithmetic is the attribute view of an elementwise binary node.
// Operands: lhs, rhs.
type Arithmetic struct {
	Op ArithOp
}

func (a *Arithmetic) Kind() Kind       { return KindArithmetic }
func (a *Arithmetic) String() string   { return a.Op.String() }
func (a *Arithmetic) clone() NodeAttrs { clone := *a; return &clone }

// Arithmetic creates an elementwise binary node. Both operands must have
// identical shapes -- there is no broadcasting at the IR level.
func (g *Graph) Arithmetic(name string, op ArithOp, lhs, rhs NodeValue) *Node {
	shape, err := shapeinference.Binary(lhs.Shape(), rhs.Shape())
	if err != nil {
		exceptions.Panicf("Graph(%q).Arithmetic(%q, %s): %v", g.name, name, op, err)
	}
	return g.newNode(name, &Arithmetic{Op: op}, []NodeValue{lhs, rhs}, shape)
}

// Add creates an elementwise addition node. See Arithmetic.
func (g *Graph) Add(name string, lhs, rhs NodeValue) *Node {
	return g.Arithmetic(name, ArithAdd, lhs, rhs)
}

// Sub creates an elementwise subtraction node. See Arithmetic.
func (g *Graph) Sub(name string, lhs, rhs NodeValue) *Node {
	return g.Arithmetic(name, ArithSub, lhs, rhs)
}

// Mul creates an elementwise multiplication node. See Arithmetic.
func (g *Graph) Mul(name string, lhs, rhs NodeValue) *Node {
	return g.Arithmetic(name, ArithMul, lhs, rhs)
}

// Div creates an elementwise division node. See Arithmetic.
func (g *Graph) Div(name string, lhs, rhs NodeValue) *Node {
	return g.Arithmetic(name, ArithDiv, lhs, rhs)
}

// Max creates an elementwise maximum node. See Arithmetic.
func (g *Graph) Max(name string, lhs, rhs NodeValue) *Node {
	return g.Arithmetic(name, ArithMax, lhs, rhs)
}

// Min creates an elementwise minimum node. See Arithmetic.
func (g *Graph) Min(name string, lhs, rhs NodeValue) *Node {
	return g.Arithmetic(name, ArithMin, lhs, rhs)
}
