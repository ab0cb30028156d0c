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

	"github.com/gomlx/exceptions"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gonnc/gonnc/types/shapes"
	"github.com/gonnc/gonnc/types/tensors"
)

// Variable is the attribute view of a bound storage node: a graph leaf that
// owns a tensor payload matching its output shape.
//
// The payload cell is independently mutable -- Assign replaces its content in
// place -- but the node's identity, shape and flags never change after
// construction.
type Variable struct {
	value *tensors.Tensor

	// Trainable indicates whether the payload should be touched by trainers
	// of the model. Purely advisory at the IR level.
	Trainable bool

	// Public marks the variable as externally visible: optimization passes
	// must not remove or merge it.
	Public bool
}

// Placeholder is the attribute view of an unbound storage node: a graph leaf
// with a shape but no payload. Content is supplied out-of-band by the
// execution engine for every run.
type Placeholder struct {
	// Trainable indicates whether the externally bound content represents
	// trainable state. Purely advisory at the IR level.
	Trainable bool
}

// NewVariable creates a Variable node owning the given tensor as payload.
// The node's single output shape equals the tensor's shape.
func (g *Graph) NewVariable(name string, value *tensors.Tensor, trainable, public bool) *Node {
	value.AssertValid()
	attrs := &Variable{value: value, Trainable: trainable, Public: public}
	return g.newNode(name, attrs, nil, value.Shape().Clone())
}

// NewVariableFromShape creates a Variable node with a zero-initialized payload
// of the given shape.
func (g *Graph) NewVariableFromShape(name string, shape shapes.Shape, trainable, public bool) *Node {
	return g.NewVariable(name, tensors.FromShape(shape), trainable, public)
}

// NewVariableSplat creates a Variable node with a payload of the given
// dimensions, filled with the scalar value. A free function because Go
// methods can't take type parameters.
func NewVariableSplat[T dtypes.Supported](g *Graph, name string, value T, trainable, public bool, dimensions ...int) *Node {
	return g.NewVariable(name, tensors.FromScalarAndDimensions(value, dimensions...), trainable, public)
}

// NewPlaceholder creates a Placeholder node: shape only, no payload.
func (g *Graph) NewPlaceholder(name string, shape shapes.Shape, trainable bool) *Node {
	if !shape.Ok() {
		exceptions.Panicf("Graph(%q).NewPlaceholder(%q): invalid shape", g.name, name)
	}
	return g.newNode(name, &Placeholder{Trainable: trainable}, nil, shape.Clone())
}

// Kind implements NodeAttrs.
func (v *Variable) Kind() Kind { return KindVariable }

// String implements NodeAttrs.
func (v *Variable) String() string {
	return fmt.Sprintf("Variable(trainable=%v, public=%v)", v.Trainable, v.Public)
}

// clone deep-copies the payload: a cloned Variable node gets its own cell.
func (v *Variable) clone() NodeAttrs {
	return &Variable{value: v.value.Clone(), Trainable: v.Trainable, Public: v.Public}
}

// Value returns the tensor payload. The caller must not mutate its content
// while readers are traversing the graph concurrently.
func (v *Variable) Value() *tensors.Tensor { return v.value }

// Assign replaces the payload content with a copy of value's content.
// The replacement must match the variable's shape exactly -- dtype and every
// dimension -- otherwise an error is returned and the existing payload is
// left unchanged.
func (v *Variable) Assign(value *tensors.Tensor) error {
	return v.value.AssignFrom(value)
}

// Kind implements NodeAttrs.
func (p *Placeholder) Kind() Kind { return KindPlaceholder }

// String implements NodeAttrs.
func (p *Placeholder) String() string {
	return fmt.Sprintf("Placeholder(trainable=%v)", p.Trainable)
}

func (p *Placeholder) clone() NodeAttrs {
	clone := *p
	return &clone
}

// VariableOf returns the Variable view of the node, or ok=false if the node
// is not a Variable.
func VariableOf(n *Node) (*Variable, bool) { return As[*Variable](n) }

// PlaceholderOf returns the Placeholder view of the node, or ok=false if the
// node is not a Placeholder.
func PlaceholderOf(n *Node) (*Placeholder, bool) { return As[*Placeholder](n) }

// Variable returns the Variable view of the node. It panics if the node is
// not a Variable -- use VariableOf for a non-fatal check.
func (n *Node) Variable() *Variable { return MustAs[*Variable](n) }

// Placeholder returns the Placeholder view of the node. It panics if the node
// is not a Placeholder -- use PlaceholderOf for a non-fatal check.
func (n *Node) Placeholder() *Placeholder { return MustAs[*Placeholder](n) }

// IsTrainable returns the trainability flag of a storage node. It panics for
// non-storage kinds.
func IsTrainable(n *Node) bool {
	n.AssertValid()
	switch attrs := n.attrs.(type) {
	case *Variable:
		return attrs.Trainable
	case *Placeholder:
		return attrs.Trainable
	}
	exceptions.Panicf("ir.IsTrainable: node %q has non-storage kind %s", n.name, n.Kind())
	return false
}
