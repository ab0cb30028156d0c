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

import (
	"strings"
	"testing"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gonnc/gonnc/types/shapes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGraphNew(t *testing.T) {
	g := New("test")
	require.Equal(t, "test", g.Name())
	require.Equal(t, 0, g.NumNodes())

	// Empty name gets a generated one.
	g2 := New("")
	require.True(t, strings.HasPrefix(g2.Name(), "graph_uuid_"))
	require.NotEqual(t, g2.Name(), New("").Name())
}

func TestNodeConstruction(t *testing.T) {
	g := New("test")
	input := g.NewPlaceholder("input", shapes.Make(dtypes.Float32, 1, 28, 28, 1), false)
	filter := g.NewVariableFromShape("filter", shapes.Make(dtypes.Float32, 8, 5, 5, 1), true, false)
	bias := g.NewVariableFromShape("bias", shapes.Make(dtypes.Float32, 8), true, false)
	conv := g.Convolution("conv", input.Value(), filter.Value(), bias.Value(), 5, 1, 2, 8)

	require.Equal(t, KindConvolution, conv.Kind())
	require.Equal(t, "conv", conv.Name())
	require.Same(t, g, conv.Graph())
	require.Equal(t, 3, conv.NumOperands())
	require.Equal(t, input.Value(), conv.Operand(0))
	require.Equal(t, filter.Value(), conv.Operand(1))
	require.Equal(t, 1, conv.NumOutputs())
	require.True(t, conv.Shape().Equal(shapes.Make(dtypes.Float32, 1, 28, 28, 8)))
	require.Equal(t, dtypes.Float32, conv.DType())
	require.Equal(t, 4, conv.Rank())

	// Users are tracked per operand reference.
	require.Equal(t, []*Node{conv}, input.Users())
	require.Equal(t, 1, filter.NumUsers())

	// Creation order is topological order.
	require.Equal(t, []*Node{input, filter, bias, conv}, g.Nodes())
	require.Same(t, conv, g.NodeById(conv.Id()))
}

func TestNodeAutoName(t *testing.T) {
	g := New("test")
	input := g.NewPlaceholder("input", shapes.Make(dtypes.Float32, 2, 4), false)
	relu := g.Relu("", input.Value())
	require.Equal(t, "relu_1", relu.Name())
}

func TestNodeBoundsPanics(t *testing.T) {
	g := New("test")
	input := g.NewPlaceholder("input", shapes.Make(dtypes.Float32, 2, 4), false)
	require.Panics(t, func() { input.Operand(0) })
	require.Panics(t, func() { input.Output(1) })
	require.Panics(t, func() { input.Result(-1) })
	require.Panics(t, func() { g.NodeById(NodeId(99)) })
}

func TestShapeMismatchPanics(t *testing.T) {
	g := New("test")
	input := g.NewPlaceholder("input", shapes.Make(dtypes.Float32, 1, 4, 4, 1), false)
	filter := g.NewVariableFromShape("filter", shapes.Make(dtypes.Float32, 8, 5, 5, 1), true, false)
	bias := g.NewVariableFromShape("bias", shapes.Make(dtypes.Float32, 8), true, false)

	// Kernel larger than the input: the node is never created.
	numNodes := g.NumNodes()
	require.Panics(t, func() {
		g.Convolution("conv", input.Value(), filter.Value(), bias.Value(), 5, 1, 0, 8)
	})
	require.Equal(t, numNodes, g.NumNodes())

	// Mismatched shapes on an elementwise op.
	other := g.NewPlaceholder("other", shapes.Make(dtypes.Float32, 1, 4, 4, 2), false)
	require.Panics(t, func() { g.Add("add", input.Value(), other.Value()) })

	// Reshape changing the element count.
	require.Panics(t, func() { g.Reshape("reshape", input.Value(), 4, 5) })
}

func TestCrossGraphPanics(t *testing.T) {
	g1 := New("g1")
	g2 := New("g2")
	input := g1.NewPlaceholder("input", shapes.Make(dtypes.Float32, 2, 4), false)
	require.Panics(t, func() { g2.Relu("relu", input.Value()) })
	require.Panics(t, func() { g2.Clone(input, "clone") })
}

func TestClone(t *testing.T) {
	g := New("test")
	input := g.NewPlaceholder("input", shapes.Make(dtypes.Float32, 2, 4), false)
	relu := g.Relu("relu", input.Value())
	clone := g.Clone(relu, "relu2")

	require.NotSame(t, relu, clone)
	require.NotEqual(t, relu.Id(), clone.Id())
	require.Equal(t, "relu2", clone.Name())
	require.Equal(t, relu.Kind(), clone.Kind())
	// Operands are shared, so the clone is structurally equal to the original.
	require.Equal(t, relu.Operands(), clone.Operands())
	require.True(t, Equal(relu, clone))
	// The shared operand now has both as users.
	require.Equal(t, []*Node{relu, clone}, input.Users())
}

func TestReplaceAllUses(t *testing.T) {
	g := New("test")
	a := g.NewPlaceholder("a", shapes.Make(dtypes.Float32, 2, 4), false)
	b := g.NewPlaceholder("b", shapes.Make(dtypes.Float32, 2, 4), false)
	relu := g.Relu("relu", a.Value())
	// sum references a twice.
	sum := g.Add("sum", a.Value(), a.Value())

	replaced := g.ReplaceAllUses(a.Value(), b.Value())
	require.Equal(t, 3, replaced)
	require.Equal(t, b.Value(), relu.Operand(0))
	require.Equal(t, b.Value(), sum.Operand(0))
	require.Equal(t, b.Value(), sum.Operand(1))
	require.Equal(t, 0, a.NumUsers())
	require.Equal(t, 3, b.NumUsers())

	// Replacing a value with no uses is a no-op.
	require.Equal(t, 0, g.ReplaceAllUses(a.Value(), b.Value()))

	// Shapes must match.
	c := g.NewPlaceholder("c", shapes.Make(dtypes.Float32, 4, 2), false)
	require.Panics(t, func() { g.ReplaceAllUses(b.Value(), c.Value()) })
}

func TestRemoveNode(t *testing.T) {
	g := New("test")
	a := g.NewPlaceholder("a", shapes.Make(dtypes.Float32, 2, 4), false)
	relu := g.Relu("relu", a.Value())

	// A node with users can't be removed.
	require.Panics(t, func() { g.RemoveNode(a) })

	g.RemoveNode(relu)
	require.Equal(t, 1, g.NumNodes())
	require.Equal(t, 0, a.NumUsers())
	require.Nil(t, g.NodeById(relu.Id()))
	require.Equal(t, []*Node{a}, g.Nodes())

	// The removed node can no longer be used as an operand.
	require.Panics(t, func() { g.Relu("relu2", relu.Value()) })
}

func TestArithmeticVariants(t *testing.T) {
	g := New("test")
	a := g.NewPlaceholder("a", shapes.Make(dtypes.Float32, 2, 4), false).Value()
	b := g.NewPlaceholder("b", shapes.Make(dtypes.Float32, 2, 4), false).Value()

	wrappers := []struct {
		build func(name string, lhs, rhs NodeValue) *Node
		want  ArithOp
	}{
		{g.Add, ArithAdd},
		{g.Sub, ArithSub},
		{g.Mul, ArithMul},
		{g.Div, ArithDiv},
		{g.Max, ArithMax},
		{g.Min, ArithMin},
	}
	for _, test := range wrappers {
		n := test.build("", a, b)
		require.Equal(t, KindArithmetic, n.Kind())
		require.Equal(t, test.want, MustAs[*Arithmetic](n).Op)
		require.True(t, n.Shape().Equal(a.Shape()))
	}
}

func TestGraphString(t *testing.T) {
	g := New("test")
	a := g.NewPlaceholder("a", shapes.Make(dtypes.Float32, 2, 4), false)
	g.Relu("relu", a.Value())
	str := g.String()
	assert.Contains(t, str, "test")
	assert.Contains(t, str, "a")
	assert.Contains(t, str, "relu")
}

func TestNodeValue(t *testing.T) {
	g := New("test")
	a := g.NewPlaceholder("a", shapes.Make(dtypes.Float32, 2, 4), false)
	v := a.Value()
	require.True(t, v.Ok())
	require.Same(t, a, v.Node())
	require.Equal(t, 0, v.Output())
	require.True(t, v.Shape().Equal(shapes.Make(dtypes.Float32, 2, 4)))
	require.False(t, NodeValue{}.Ok())
	// NodeValue is comparable and usable as a map key.
	require.Equal(t, v, a.Result(0))
}
