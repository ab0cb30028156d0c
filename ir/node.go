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
	"fmt"
	"strings"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gonnc/gonnc/types/shapes"
)

// NodeId is the unique id of a node within its Graph. It doubles as the
// node's index in the graph's arena, so operand references can be validated
// for liveness instead of risking dangling pointers.
type NodeId int

// InvalidNodeId indicates a node that failed to be created or was removed.
const InvalidNodeId = NodeId(-1)

// Node is the base IR entity: it produces one or more shaped outputs from
// zero or more operand NodeValues and kind-specific attributes.
//
// Nodes are created through the factory methods on Graph and are exclusively
// owned by it. After construction, a node's kind, operands, attributes and
// output shapes never change -- the one exception is the tensor *content* of
// a Variable's payload, see Variable.Assign.
type Node struct {
	graph *Graph
	id    NodeId
	name  string

	// attrs is the typed per-kind view: operand roles and scalar attributes.
	attrs NodeAttrs

	// inputs are the dataflow edges of the graph, in operand order.
	inputs []NodeValue

	// outputs are computed once by shape inference at construction.
	outputs []shapes.Shape

	// users lists consumer nodes, one entry per operand reference.
	users []*Node
}

// NodeAttrs is the typed view of a node's kind-specific attributes. Each
// concrete node kind has exactly one implementation (e.g. *Convolution,
// *Variable), in one-to-one correspondence with its Kind tag.
type NodeAttrs interface {
	// Kind identifies the concrete node variant.
	Kind() Kind

	// String prints a descriptive representation of the variant and its
	// scalar attributes.
	String() string

	// clone returns a copy safe to attach to a new node. The method is
	// unexported: the set of node kinds is closed.
	clone() NodeAttrs
}

// NodeValue is a reference to the output-th result of a specific node: the
// unit of a dataflow edge. Operand references are non-owning -- the producer
// is owned by its graph, and a NodeValue must not outlive it.
type NodeValue struct {
	node   *Node
	output int
}

// Node returns the producer node.
func (nv NodeValue) Node() *Node { return nv.node }

// Output returns the index of the producer's result this value refers to.
func (nv NodeValue) Output() int { return nv.output }

// Shape of the referred result.
func (nv NodeValue) Shape() shapes.Shape {
	nv.node.AssertValid()
	return nv.node.Output(nv.output)
}

// Ok returns whether the value refers to a live producer.
func (nv NodeValue) Ok() bool {
	return nv.node != nil && nv.node.graph != nil
}

// String implements fmt.Stringer.
func (nv NodeValue) String() string {
	if nv.node == nil {
		return "NodeValue(nil)"
	}
	if nv.node.NumOutputs() == 1 {
		return nv.node.Name()
	}
	return fmt.Sprintf("%s:%d", nv.node.Name(), nv.output)
}

// Kind of the node, fixed at construction.
func (n *Node) Kind() Kind {
	if n == nil || n.attrs == nil {
		return KindInvalid
	}
	return n.attrs.Kind()
}

// Graph that owns this node. It is nil if the node was removed.
func (n *Node) Graph() *Graph {
	if n == nil {
		return nil
	}
	return n.graph
}

// Id of this node within its graph.
func (n *Node) Id() NodeId {
	if n == nil {
		return InvalidNodeId
	}
	return n.id
}

// Name is the node's human-readable name, used for diagnostics only -- it
// carries no semantics.
func (n *Node) Name() string {
	if n == nil {
		return "<nil>"
	}
	return n.name
}

// Attrs returns the node's attribute view. Use As or the kind-specific
// accessors to narrow it to a concrete variant.
func (n *Node) Attrs() NodeAttrs {
	n.AssertValid()
	return n.attrs
}

// NumOperands returns the number of operand values consumed by the node. O(1).
func (n *Node) NumOperands() int { return len(n.inputs) }

// Operand returns the i-th operand value. It panics if i is out of range.
func (n *Node) Operand(i int) NodeValue {
	n.AssertValid()
	if i < 0 || i >= len(n.inputs) {
		exceptions.Panicf("Node.Operand(%d) out-of-range: node %q has %d operands", i, n.name, len(n.inputs))
	}
	return n.inputs[i]
}

// Operands returns the node's operand values in order. The returned slice is
// owned by the node and must not be modified.
func (n *Node) Operands() []NodeValue {
	n.AssertValid()
	return n.inputs
}

// NumOutputs returns the number of results the node produces. O(1).
func (n *Node) NumOutputs() int { return len(n.outputs) }

// Output returns the shape of the i-th result. It panics if i is out of range.
func (n *Node) Output(i int) shapes.Shape {
	n.AssertValid()
	if i < 0 || i >= len(n.outputs) {
		exceptions.Panicf("Node.Output(%d) out-of-range: node %q has %d outputs", i, n.name, len(n.outputs))
	}
	return n.outputs[i]
}

// Result returns a NodeValue referring to the node's i-th result.
// It panics if i is out of range.
func (n *Node) Result(i int) NodeValue {
	_ = n.Output(i) // Bounds check.
	return NodeValue{node: n, output: i}
}

// Value returns the NodeValue of the node's first (usually only) result.
func (n *Node) Value() NodeValue { return n.Result(0) }

// Shape of the node's first (usually only) result. It implements the
// shapes.HasShape interface.
func (n *Node) Shape() shapes.Shape { return n.Output(0) }

// DType of the node's first result.
func (n *Node) DType() dtypes.DType { return n.Shape().DType }

// Rank of the node's first result.
func (n *Node) Rank() int { return n.Shape().Rank() }

// Users returns the nodes consuming any of this node's results, one entry per
// operand reference. The returned slice is owned by the node and must not be
// modified.
func (n *Node) Users() []*Node {
	n.AssertValid()
	return n.users
}

// NumUsers returns the number of operand references to this node's results.
func (n *Node) NumUsers() int { return len(n.users) }

// AssertValid panics if n is nil or was removed from its graph.
func (n *Node) AssertValid() {
	if n == nil {
		exceptions.Panicf("ir.Node is nil")
	}
	if n.graph == nil {
		exceptions.Panicf("ir.Node %q was removed from its graph", n.name)
	}
}

// String implements fmt.Stringer. Format: `name: Kind(attrs)[operands] -> shape`.
func (n *Node) String() string {
	if n == nil {
		return "Node(nil)"
	}
	if n.graph == nil {
		return fmt.Sprintf("%s: removed", n.name)
	}
	var operands string
	if len(n.inputs) > 0 {
		parts := make([]string, 0, len(n.inputs))
		for _, in := range n.inputs {
			parts = append(parts, in.String())
		}
		operands = "[" + strings.Join(parts, ", ") + "]"
	}
	return fmt.Sprintf("%s: %s%s -> %s", n.name, n.attrs, operands, n.outputs[0])
}
