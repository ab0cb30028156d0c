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

// Package ir is the typed dataflow-graph core of the gonnc neural-network
// compiler: the representation every later stage (optimization passes,
// lowering, code generation) reads and rewrites.
//
// The main elements in the package are:
//
//   - Graph: the container and factory that owns all nodes. Operator
//     constructors are methods on it (Graph.Convolution, Graph.Relu, ...),
//     so a graph is built bottom-up, inputs before consumers.
//
//   - Node: the result of an operation, carrying a Kind tag, operand
//     NodeValues and one output shape computed at construction by the
//     ir/shapeinference package. A node's output shape is a pure function of
//     its operand shapes and scalar attributes: the graph is well-typed by
//     construction, an ill-typed node is never observable.
//
//   - NodeValue: a (producer, result index) pair, the unit of a dataflow edge.
//
//   - Variable and Placeholder: the storage leaves. A Variable owns a tensor
//     payload whose content (never its shape) may be reassigned; a Placeholder
//     carries only a shape, its content is bound externally at execution time.
//
//   - Visitor: single-node double dispatch on the Kind tag with fallback to
//     the kind's semantic parent, used to write graph passes.
//
//   - Equal/Hash: structural equality and content hashing over a node and its
//     operand references, the substrate of the DedupNodes (CSE) pass.
//
// ## Error handling
//
// Shape and type errors are detected and reported at the point of
// construction, never deferred: constructors panic (with a stack-annotated
// error, see github.com/gomlx/exceptions) and the node is not created.
// The pure validation layer underneath (ir/shapeinference, tensor assignment)
// returns ordinary errors. Downcast and dispatch violations are
// programming-contract violations and always panic.
//
// ## Concurrency
//
// Graph construction and mutation are single-threaded: two goroutines must
// never concurrently create, clone or remove nodes of the same Graph. Once a
// graph is stable, read-only traversal (Visitor dispatch, Equal/Hash queries)
// is safe from multiple goroutines, since all node state those operations
// consume is immutable after construction. Variable payload content is the
// exception: callers must synchronize Assign against concurrent readers.
package ir

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gomlx/exceptions"
	"github.com/gonnc/gonnc/types"
	"github.com/gonnc/gonnc/types/shapes"
	"github.com/google/uuid"
	"k8s.io/klog/v2"
)

// Graph owns the nodes of one computation. All nodes are created through its
// factory methods and live in its arena; NodeValue operand references point
// back into the same arena and are validated at construction.
type Graph struct {
	name string

	// nodes is the arena: a node's NodeId is its index here. Removed nodes
	// leave a nil slot so ids of live nodes stay stable.
	nodes []*Node

	numRemoved int
}

// New creates an empty Graph. If name is empty a unique one is generated.
func New(name string) *Graph {
	if name == "" {
		name = fmt.Sprintf("graph_uuid_%s", uuid.NewString())
	}
	return &Graph{name: name}
}

// Name of the graph.
func (g *Graph) Name() string { return g.name }

// AssertValid panics if g is nil.
func (g *Graph) AssertValid() {
	if g == nil {
		exceptions.Panicf("ir.Graph is nil")
	}
}

// NumNodes returns the number of live nodes in the graph.
func (g *Graph) NumNodes() int {
	g.AssertValid()
	return len(g.nodes) - g.numRemoved
}

// Nodes returns the live nodes in creation (topological) order.
func (g *Graph) Nodes() []*Node {
	g.AssertValid()
	nodes := make([]*Node, 0, g.NumNodes())
	for _, n := range g.nodes {
		if n != nil {
			nodes = append(nodes, n)
		}
	}
	return nodes
}

// NodeById returns the node with the given id, or nil if it was removed.
// It panics if the id was never allocated by this graph.
func (g *Graph) NodeById(id NodeId) *Node {
	g.AssertValid()
	if id < 0 || int(id) >= len(g.nodes) {
		exceptions.Panicf("Graph(%q).NodeById(%d): id out-of-range, %d nodes allocated", g.name, id, len(g.nodes))
	}
	return g.nodes[id]
}

// newNode allocates a node in the arena. It validates the DAG invariant:
// every operand must be a live value of this same graph -- which also rules
// out self-reference, since the new node doesn't exist yet.
func (g *Graph) newNode(name string, attrs NodeAttrs, inputs []NodeValue, outputs ...shapes.Shape) *Node {
	g.AssertValid()
	if attrs == nil || attrs.Kind().IsAbstract() || !attrs.Kind().IsAKind() {
		exceptions.Panicf("Graph(%q): cannot create node with invalid attrs %v", g.name, attrs)
	}
	for ii, in := range inputs {
		producer := in.Node()
		producer.AssertValid()
		if producer.graph != g {
			exceptions.Panicf("Graph(%q): operand #%d (%s) belongs to graph %q", g.name, ii, in, producer.graph.name)
		}
		if g.nodes[producer.id] != producer {
			exceptions.Panicf("Graph(%q): operand #%d (%s) refers to a removed node", g.name, ii, in)
		}
		_ = producer.Output(in.Output()) // Bounds check the result index.
	}
	id := NodeId(len(g.nodes))
	if name == "" {
		name = fmt.Sprintf("%s_%d", strings.ToLower(attrs.Kind().String()), id)
	}
	n := &Node{
		graph:   g,
		id:      id,
		name:    name,
		attrs:   attrs,
		inputs:  slices.Clone(inputs),
		outputs: outputs,
	}
	g.nodes = append(g.nodes, n)
	for _, in := range n.inputs {
		in.node.users = append(in.node.users, n)
	}
	return n
}

// Clone creates a new node with a distinct identity but the same kind,
// attributes and operand values as n -- operands are shared, not deep-copied,
// so Equal(n, clone) holds. A Variable clone gets its own copy of the payload.
func (g *Graph) Clone(n *Node, name string) *Node {
	n.AssertValid()
	if n.graph != g {
		exceptions.Panicf("Graph(%q).Clone: node %q belongs to graph %q", g.name, n.name, n.graph.name)
	}
	return g.newNode(name, n.attrs.clone(), n.inputs, slices.Clone(n.outputs)...)
}

// ReplaceAllUses rewrites every operand reference to the value oldValue so it
// refers to newValue instead, and returns the number of rewritten references.
// Both values must be live in this graph and have identical shapes, otherwise
// the graph would stop being well-typed.
//
// This is a rewrite-pass operation; it must not run concurrently with readers.
func (g *Graph) ReplaceAllUses(oldValue, newValue NodeValue) int {
	g.AssertValid()
	oldNode := oldValue.Node()
	oldNode.AssertValid()
	newNode := newValue.Node()
	newNode.AssertValid()
	if oldNode.graph != g || newNode.graph != g {
		exceptions.Panicf("Graph(%q).ReplaceAllUses: values %s and %s must both live in this graph", g.name, oldValue, newValue)
	}
	if !oldValue.Shape().Equal(newValue.Shape()) {
		exceptions.Panicf("Graph(%q).ReplaceAllUses: shape %s of %s doesn't match shape %s of %s",
			g.name, oldValue.Shape(), oldValue, newValue.Shape(), newValue)
	}
	if oldValue == newValue {
		return 0
	}
	// The user list holds one entry per operand reference, so a user may
	// appear multiple times; visit each distinct user once and move one
	// entry per rewritten reference.
	count := 0
	seen := types.MakeSet[*Node](len(oldNode.users))
	for _, user := range slices.Clone(oldNode.users) {
		if seen.Has(user) {
			continue
		}
		seen.Insert(user)
		for ii, in := range user.inputs {
			if in != oldValue {
				continue
			}
			user.inputs[ii] = newValue
			idx := slices.Index(oldNode.users, user)
			oldNode.users = slices.Delete(oldNode.users, idx, idx+1)
			newNode.users = append(newNode.users, user)
			count++
		}
	}
	return count
}

// RemoveNode removes n from the graph. It is a contract violation -- and a
// panic -- if any consumer still holds a NodeValue to one of n's results:
// callers must rewrite or remove consumers first (see ReplaceAllUses).
func (g *Graph) RemoveNode(n *Node) {
	n.AssertValid()
	if n.graph != g {
		exceptions.Panicf("Graph(%q).RemoveNode: node %q belongs to graph %q", g.name, n.name, n.graph.name)
	}
	if len(n.users) > 0 {
		exceptions.Panicf("Graph(%q).RemoveNode: node %q still has %d uses", g.name, n.name, len(n.users))
	}
	for _, in := range n.inputs {
		producer := in.node
		idx := slices.Index(producer.users, n)
		if idx < 0 {
			exceptions.Panicf("Graph(%q).RemoveNode: node %q missing from users of its operand %s -- corrupted user lists",
				g.name, n.name, in)
		}
		producer.users = slices.Delete(producer.users, idx, idx+1)
	}
	if klog.V(2).Enabled() {
		klog.Infof("ir: removed node %q (id=%d) from graph %q", n.name, n.id, g.name)
	}
	g.nodes[n.id] = nil
	g.numRemoved++
	n.graph = nil
	n.users = nil
}

// String lists the live nodes in creation order, one per line.
func (g *Graph) String() string {
	if g == nil {
		return "Graph(nil)"
	}
	var sb strings.Builder
	_, _ = fmt.Fprintf(&sb, "Graph %q: %d nodes\n", g.name, g.NumNodes())
	for _, n := range g.nodes {
		if n == nil {
			continue
		}
		_, _ = fmt.Fprintf(&sb, "\t%s\n", n)
	}
	return sb.String()
}
