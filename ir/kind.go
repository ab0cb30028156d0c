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
	"github.com/gonnc/gonnc/types"
)

// Kind identifies the concrete variant of a Node. It is fixed at construction
// and immutable for the node's lifetime.
//
// Two values are abstract grouping kinds, never carried by a live node:
// KindNode (the root of the hierarchy) and KindStorage (the group covering
// Variable and Placeholder). They exist so Visitor handlers can be registered
// at a less-specific level.
type Kind int

const (
	KindInvalid Kind = iota

	// KindNode is the abstract root: every other kind has it as an ancestor.
	KindNode
	// KindStorage is the abstract grouping of the graph-leaf kinds that hold
	// or stand in for tensor content.
	KindStorage

	KindVariable
	KindPlaceholder

	KindConvolution
	KindPool
	KindFullyConnected
	KindRelu
	KindSigmoid
	KindTanh
	KindSoftMax
	KindRegression
	KindReshape
	KindTranspose
	KindConcat
	KindBatchNormalization
	KindLocalResponseNormalization
	KindArithmetic
)

//go:generate go tool enumer -type=Kind -trimprefix=Kind -output=gen_kind_enumer.go kind.go

// kindTable is the exhaustive (Kind, semantic parent) table consumed by the
// downcast facility and the Visitor fallback chain. A kind missing from this
// table cannot exist on a live node.
var kindTable = map[Kind]Kind{
	KindNode:    KindInvalid,
	KindStorage: KindNode,

	KindVariable:    KindStorage,
	KindPlaceholder: KindStorage,

	KindConvolution:                KindNode,
	KindPool:                       KindNode,
	KindFullyConnected:             KindNode,
	KindRelu:                       KindNode,
	KindSigmoid:                    KindNode,
	KindTanh:                       KindNode,
	KindSoftMax:                    KindNode,
	KindRegression:                 KindNode,
	KindReshape:                    KindNode,
	KindTranspose:                  KindNode,
	KindConcat:                     KindNode,
	KindBatchNormalization:         KindNode,
	KindLocalResponseNormalization: KindNode,
	KindArithmetic:                 KindNode,
}

// StorageKinds is the set of concrete kinds covered by the Storage grouping.
var StorageKinds = types.SetWith(KindVariable, KindPlaceholder)

// Parent returns the semantic parent of the kind: the less-specific kind a
// Visitor falls back to when no handler is registered for k. The parent of
// KindNode is KindInvalid, which terminates the chain.
//
// It panics for a kind absent from the kind table: by invariant that is
// unreachable for any kind observed on a live node.
func (k Kind) Parent() Kind {
	parent, found := kindTable[k]
	if !found {
		exceptions.Panicf("ir.Kind %d is not in the kind table -- forged or corrupted kind tag", int(k))
	}
	return parent
}

// IsAbstract returns whether k is a grouping kind that no live node carries.
func (k Kind) IsAbstract() bool {
	return k == KindNode || k == KindStorage
}

// IsKind returns whether the node's tag is exactly k.
func (n *Node) IsKind(k Kind) bool {
	return n != nil && n.Kind() == k
}

// IsStorage returns whether the node is one of the storage kinds
// (Variable or Placeholder).
func IsStorage(n *Node) bool {
	return n != nil && StorageKinds.Has(n.Kind())
}

// Is reports whether the node's concrete attribute view is of type A.
// The attribute type and the kind tag are in one-to-one correspondence, both
// set once at construction, so this is equivalent to a kind check.
func Is[A NodeAttrs](n *Node) bool {
	if n == nil {
		return false
	}
	_, ok := n.attrs.(A)
	return ok
}

// As returns the node's typed attribute view if its kind matches A, else
// ok=false. No partial view is ever returned.
func As[A NodeAttrs](n *Node) (attrs A, ok bool) {
	if n == nil {
		return
	}
	attrs, ok = n.attrs.(A)
	return
}

// MustAs is like As but treats a mismatch as a programming-contract violation
// and panics.
func MustAs[A NodeAttrs](n *Node) A {
	attrs, ok := As[A](n)
	if !ok {
		exceptions.Panicf("ir.MustAs[%T]: node %s has kind %s", attrs, n.Name(), n.Kind())
	}
	return attrs
}
