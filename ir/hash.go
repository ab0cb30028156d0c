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

// Structural equality and content hashing over a node and its operand
// references, used by deduplication passes (see DedupNodes).
//
// Equality is defined at the NodeValue level: two nodes are equal iff they
// have the same kind, identical scalar attributes and each corresponding
// operand pair refers to the literal same producer and result index. It never
// recurses into producer subgraphs.
//
// The contract Equal(a, b) => Hash(a) == Hash(b) holds; the converse need not.

import (
	"encoding/binary"
	"math"
	"slices"

	"github.com/cespare/xxhash/v2"
	"github.com/gomlx/exceptions"
	"github.com/gonnc/gonnc/types/shapes"
)

// Equal returns whether a and b are structurally equal: same kind, identical
// scalar attributes, identical output shapes, same operand count and each
// corresponding operand pair the identical NodeValue -- same producer
// identity and result index. Two distinct producers of equal values are not
// equal under this relation.
//
// The output shapes are derived from the operands and attributes for every
// operator kind, but not for storage leaves: two Placeholders with the same
// flags differ only in shape, so shapes must participate to keep the
// Equal => same-Hash contract.
//
// Node names are diagnostics only and never participate.
func Equal(a, b *Node) bool {
	a.AssertValid()
	b.AssertValid()
	if a == b {
		return true
	}
	if a.Kind() != b.Kind() {
		return false
	}
	if !attrsEqual(a.attrs, b.attrs) {
		return false
	}
	if !slices.EqualFunc(a.outputs, b.outputs, shapes.Shape.Equal) {
		return false
	}
	return slices.Equal(a.inputs, b.inputs)
}

// Hash returns a content hash of the node: its kind, every scalar attribute,
// the identity and result index of every operand value, and its output
// shapes. Floating attributes are hashed through their canonical bit
// representation, so bitwise-identical floats (including a NaN payload) hash
// identically on every platform.
func Hash(n *Node) uint64 {
	n.AssertValid()
	d := xxhash.New()
	hashInt(d, int(n.Kind()))
	hashAttrs(d, n.attrs)
	hashInt(d, len(n.inputs))
	for _, in := range n.inputs {
		hashInt(d, int(in.node.id))
		hashInt(d, in.output)
	}
	for _, shape := range n.outputs {
		hashInt(d, int(shape.DType))
		hashInt(d, shape.Rank())
		for _, dim := range shape.Dimensions {
			hashInt(d, dim)
		}
	}
	return d.Sum64()
}

func hashInt(d *xxhash.Digest, v int) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(v))
	_, _ = d.Write(buf[:])
}

// hashFloat32 writes the canonical bit conversion of a float attribute, never
// the platform's floating-point hash.
func hashFloat32(d *xxhash.Digest, v float32) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], math.Float32bits(v))
	_, _ = d.Write(buf[:])
}

// attrsEqual compares the scalar attributes of two attribute views of the
// same kind. Float attributes compare bitwise, so NaN attributes with the
// same payload are equal -- required for the Equal/Hash contract.
func attrsEqual(a, b NodeAttrs) bool {
	switch aT := a.(type) {
	case *Variable:
		bT := b.(*Variable)
		return aT.Trainable == bT.Trainable && aT.Public == bT.Public && aT.value.Equal(bT.value)
	case *Placeholder:
		return *aT == *b.(*Placeholder)
	case *Convolution:
		return *aT == *b.(*Convolution)
	case *Pool:
		return *aT == *b.(*Pool)
	case *FullyConnected:
		return *aT == *b.(*FullyConnected)
	case *Relu, *Sigmoid, *Tanh, *SoftMax, *Regression:
		return true
	case *Reshape:
		return slices.Equal(aT.Dims, b.(*Reshape).Dims)
	case *Transpose:
		return slices.Equal(aT.Shuffle, b.(*Transpose).Shuffle)
	case *Concat:
		return *aT == *b.(*Concat)
	case *BatchNormalization:
		bT := b.(*BatchNormalization)
		return aT.ChannelIdx == bT.ChannelIdx &&
			math.Float32bits(aT.Epsilon) == math.Float32bits(bT.Epsilon) &&
			math.Float32bits(aT.Momentum) == math.Float32bits(bT.Momentum)
	case *LocalResponseNormalization:
		bT := b.(*LocalResponseNormalization)
		return aT.HalfWindowSize == bT.HalfWindowSize &&
			math.Float32bits(aT.Alpha) == math.Float32bits(bT.Alpha) &&
			math.Float32bits(aT.Beta) == math.Float32bits(bT.Beta) &&
			math.Float32bits(aT.K) == math.Float32bits(bT.K)
	case *Arithmetic:
		return *aT == *b.(*Arithmetic)
	}
	exceptions.Panicf("ir.attrsEqual: unhandled attribute type %T -- kind table out of sync", a)
	return false
}

// hashAttrs writes the scalar attributes of the view to the digest.
func hashAttrs(d *xxhash.Digest, attrs NodeAttrs) {
	switch aT := attrs.(type) {
	case *Variable:
		hashBool(d, aT.Trainable)
		hashBool(d, aT.Public)
		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], aT.value.Digest())
		_, _ = d.Write(buf[:])
	case *Placeholder:
		hashBool(d, aT.Trainable)
	case *Convolution:
		hashInt(d, aT.Kernel)
		hashInt(d, aT.Stride)
		hashInt(d, aT.Pad)
		hashInt(d, aT.Depth)
	case *Pool:
		hashInt(d, int(aT.Op))
		hashInt(d, aT.Kernel)
		hashInt(d, aT.Stride)
		hashInt(d, aT.Pad)
	case *FullyConnected:
		hashInt(d, aT.Depth)
	case *Relu, *Sigmoid, *Tanh, *SoftMax, *Regression:
		// No scalar attributes.
	case *Reshape:
		hashInt(d, len(aT.Dims))
		for _, dim := range aT.Dims {
			hashInt(d, dim)
		}
	case *Transpose:
		hashInt(d, len(aT.Shuffle))
		for _, axis := range aT.Shuffle {
			hashInt(d, axis)
		}
	case *Concat:
		hashInt(d, aT.Axis)
	case *BatchNormalization:
		hashInt(d, aT.ChannelIdx)
		hashFloat32(d, aT.Epsilon)
		hashFloat32(d, aT.Momentum)
	case *LocalResponseNormalization:
		hashInt(d, aT.HalfWindowSize)
		hashFloat32(d, aT.Alpha)
		hashFloat32(d, aT.Beta)
		hashFloat32(d, aT.K)
	case *Arithmetic:
		hashInt(d, int(aT.Op))
	default:
		exceptions.Panicf("ir.hashAttrs: unhandled attribute type %T -- kind table out of sync", attrs)
	}
}

func hashBool(d *xxhash.Digest, v bool) {
	if v {
		_, _ = d.Write([]byte{1})
	} else {
		_, _ = d.Write([]byte{0})
	}
}
