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
	"github.com/gomlx/exceptions"
)

// VisitFunc handles one node during a Visitor dispatch.
type VisitFunc func(n *Node)

// Visitor routes a visit call to the handler registered for a node's concrete
// kind. Handlers may be registered at any level of the kind hierarchy: when
// no handler exists for the concrete kind, dispatch falls back along the
// semantic-parent chain (e.g. KindVariable -> KindStorage -> KindNode), so a
// pass only implements the kinds it cares about. A handler registered for
// KindNode is the generic fallback; without one, unhandled nodes are skipped.
//
// Pre and Post, when set, bracket every visit: Pre runs before dispatch and
// Post after the handler returns, each exactly once per visited node,
// regardless of which handler level ran.
//
// The Visitor visits single nodes only -- it never recurses into operands.
// Traversal order (topological or otherwise) is the responsibility of the
// pass driving it, e.g.:
//
//	v := ir.NewVisitor().Handle(ir.KindStorage, func(n *ir.Node) { ... })
//	for _, n := range g.Nodes() {
//		v.Visit(n)
//	}
//
// A Visitor is cheap to build and not safe for concurrent Handle calls;
// Visit is read-only and safe for concurrent use once registration is done.
type Visitor struct {
	// Pre runs before dispatch, if set.
	Pre VisitFunc
	// Post runs after the handler returns, if set.
	Post VisitFunc

	handlers map[Kind]VisitFunc
}

// NewVisitor returns a Visitor with no handlers registered: visiting any node
// runs only the Pre/Post hooks, if set.
func NewVisitor() *Visitor {
	return &Visitor{handlers: make(map[Kind]VisitFunc)}
}

// Handle registers fn as the handler for kind -- concrete (KindConvolution)
// or abstract (KindStorage, KindNode). It returns the Visitor so registrations
// can be chained. Registering twice for the same kind is a programming error.
func (v *Visitor) Handle(kind Kind, fn VisitFunc) *Visitor {
	if _, found := kindTable[kind]; !found {
		exceptions.Panicf("Visitor.Handle(%s): kind is not in the kind table", kind)
	}
	if fn == nil {
		exceptions.Panicf("Visitor.Handle(%s): nil handler", kind)
	}
	if _, found := v.handlers[kind]; found {
		exceptions.Panicf("Visitor.Handle(%s): handler already registered", kind)
	}
	v.handlers[kind] = fn
	return v
}

// Visit dispatches n to the most specific handler registered for its kind,
// bracketed by the Pre and Post hooks.
func (v *Visitor) Visit(n *Node) {
	n.AssertValid()
	if v.Pre != nil {
		v.Pre(n)
	}
	kind := n.Kind()
	if _, found := kindTable[kind]; !found {
		// Unreachable for any node built through the Graph factories.
		exceptions.Panicf("Visitor.Visit: node %q carries kind %d absent from the kind table", n.Name(), int(kind))
	}
	for k := kind; k != KindInvalid; k = k.Parent() {
		if fn, found := v.handlers[k]; found {
			fn(n)
			break
		}
	}
	if v.Post != nil {
		v.Post(n)
	}
}

// VisitAll visits every live node of the graph in creation (topological)
// order. Convenience driver for whole-graph passes.
func (v *Visitor) VisitAll(g *Graph) {
	for _, n := range g.Nodes() {
		v.Visit(n)
	}
}
