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

// Package tensors implements Tensor, an in-memory multi-dimensional array,
// defined by its shape (a dtype and its axes' dimensions) and its flat content.
//
// In gonnc, tensors back the payload of Variable nodes in the IR graph. The IR
// layer only needs construction, content assignment and a deterministic content
// digest -- the numeric kernels that operate on tensors live in the execution
// engine, outside this repository.
//
// There are various ways to construct a Tensor:
//
//   - FromShape(shape): a tensor with the given shape and zero values.
//   - FromScalarAndDimensions[T](value, dimensions...): a tensor with the given
//     dimensions, filled ("splat") with the scalar value given.
//   - FromFlatDataAndDimensions[T](data, dimensions...): a tensor with the given
//     dimensions, with the flattened values copied from data.
//
// The flat data is always stored as a Go slice of the dtype's corresponding Go
// type, accessible with ConstFlatData and MutableFlatData.
package tensors

import (
	"encoding/binary"
	"fmt"
	"math"
	"slices"

	"github.com/cespare/xxhash/v2"
	"github.com/gomlx/exceptions"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/gopjrt/dtypes/bfloat16"
	"github.com/gonnc/gonnc/types/shapes"
	"github.com/pkg/errors"
	"github.com/x448/float16"
)

// Tensor is an in-memory multidimensional array (from a scalar with 0
// dimensions to arbitrarily large dimensions), defined by its shape and its
// content, stored as a flat (1D) slice of the dtype's Go type.
//
// Tensors are mutable: their content can be read and overwritten in place.
// Their shape, however, is fixed at construction and never changes.
type Tensor struct {
	shape shapes.Shape
	flat  any // Slice of the Go type for the dtype of the shape.
}

// FromShape returns a Tensor with the given shape, with the data zero-initialized.
func FromShape(shape shapes.Shape) *Tensor {
	if !shape.Ok() {
		exceptions.Panicf("tensors.FromShape(%s): invalid shape", shape)
	}
	return &Tensor{shape: shape.Clone(), flat: makeFlat(shape.DType, shape.Size())}
}

// FromScalarAndDimensions creates a tensor with the given dimensions, filled
// with the scalar value given. T must be one of the supported types.
func FromScalarAndDimensions[T dtypes.Supported](value T, dimensions ...int) *Tensor {
	dtype := dtypes.FromGenericsType[T]()
	t := FromShape(shapes.Make(dtype, dimensions...))
	flat := t.flat.([]T)
	for ii := range flat {
		flat[ii] = value
	}
	return t
}

// FromFlatDataAndDimensions creates a tensor with the given dimensions, with
// the flattened values copied from data. T must be one of the supported types.
func FromFlatDataAndDimensions[T dtypes.Supported](data []T, dimensions ...int) *Tensor {
	dtype := dtypes.FromGenericsType[T]()
	t := FromShape(shapes.Make(dtype, dimensions...))
	flat := t.flat.([]T)
	if len(flat) != len(data) {
		exceptions.Panicf("tensors.FromFlatDataAndDimensions(%s): data has %d elements, shape needs %d",
			t.shape, len(data), len(flat))
	}
	copy(flat, data)
	return t
}

// Shape of the tensor. The returned value must not be mutated.
func (t *Tensor) Shape() shapes.Shape { return t.shape }

// DType of the tensor's shape.
func (t *Tensor) DType() dtypes.DType { return t.shape.DType }

// Rank of the tensor's shape.
func (t *Tensor) Rank() int { return t.shape.Rank() }

// Size of the tensor, the number of elements it stores.
func (t *Tensor) Size() int { return t.shape.Size() }

// Memory used to store the tensor content, in bytes.
func (t *Tensor) Memory() uintptr { return t.shape.Memory() }

// AssertValid panics if the tensor is nil or has no backing data.
func (t *Tensor) AssertValid() {
	if t == nil {
		exceptions.Panicf("tensors.Tensor is nil")
	}
	if t.flat == nil {
		exceptions.Panicf("tensors.Tensor(%s) has no backing data", t.shape)
	}
}

// String returns a short description of the tensor: its shape, not its content.
func (t *Tensor) String() string {
	if t == nil {
		return "Tensor(nil)"
	}
	return fmt.Sprintf("Tensor(%s)", t.shape)
}

// ConstFlatData calls accessFn with the flattened data as a slice of the Go
// type corresponding to the tensor's dtype. The slice must not be mutated --
// see MutableFlatData for that.
//
// It panics if the generic type T doesn't match the tensor's dtype.
func ConstFlatData[T dtypes.Supported](t *Tensor, accessFn func(flat []T)) {
	t.AssertValid()
	flat, ok := t.flat.([]T)
	if !ok {
		exceptions.Panicf("tensors.ConstFlatData[%T] is incompatible with Tensor's dtype %s",
			flat, t.shape.DType)
	}
	accessFn(flat)
}

// MutableFlatData calls accessFn with the flattened data as a slice of the Go
// type corresponding to the tensor's dtype. The contents of the slice may be
// changed in place, but it must not be resized or kept after accessFn returns.
//
// It panics if the generic type T doesn't match the tensor's dtype.
func MutableFlatData[T dtypes.Supported](t *Tensor, accessFn func(flat []T)) {
	t.AssertValid()
	flat, ok := t.flat.([]T)
	if !ok {
		exceptions.Panicf("tensors.MutableFlatData[%T] is incompatible with Tensor's dtype %s",
			flat, t.shape.DType)
	}
	accessFn(flat)
}

// Clone returns a deep copy of the tensor.
func (t *Tensor) Clone() *Tensor {
	t.AssertValid()
	c := FromShape(t.shape)
	copyFlat(c.flat, t.flat)
	return c
}

// AssignFrom overwrites the tensor's content with a copy of from's content.
// It returns an error if from's shape doesn't match exactly -- dtype and every
// dimension -- in which case the receiver content is left unchanged.
func (t *Tensor) AssignFrom(from *Tensor) error {
	t.AssertValid()
	from.AssertValid()
	if !t.shape.Equal(from.shape) {
		return errors.Errorf("cannot assign tensor of shape %s to tensor of shape %s", from.shape, t.shape)
	}
	copyFlat(t.flat, from.flat)
	return nil
}

// Equal returns whether both tensors have the same shape and bit-identical
// content. In particular two NaN elements with the same payload compare equal.
func (t *Tensor) Equal(other *Tensor) bool {
	t.AssertValid()
	other.AssertValid()
	if !t.shape.Equal(other.shape) {
		return false
	}
	return t.Digest() == other.Digest()
}

// Digest returns a deterministic content hash of the tensor: shape plus every
// element. Floating-point elements are hashed through their canonical bit
// representation (math.Float32bits and friends), so the digest never depends on
// a platform's floating-point hash behavior, and NaNs with identical payloads
// digest identically.
func (t *Tensor) Digest() uint64 {
	t.AssertValid()
	d := xxhash.New()
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(t.shape.DType))
	_, _ = d.Write(buf[:])
	for _, dim := range t.shape.Dimensions {
		binary.LittleEndian.PutUint64(buf[:], uint64(dim))
		_, _ = d.Write(buf[:])
	}
	hashFlat(d, t.flat)
	return d.Sum64()
}

// makeFlat allocates the zero-initialized flat slice for the given dtype.
// Complex and unsupported dtypes are rejected: the IR layer has no use for them.
func makeFlat(dtype dtypes.DType, size int) any {
	switch dtype {
	case dtypes.Bool:
		return make([]bool, size)
	case dtypes.Int8:
		return make([]int8, size)
	case dtypes.Int16:
		return make([]int16, size)
	case dtypes.Int32:
		return make([]int32, size)
	case dtypes.Int64:
		return make([]int64, size)
	case dtypes.Uint8:
		return make([]uint8, size)
	case dtypes.Uint16:
		return make([]uint16, size)
	case dtypes.Uint32:
		return make([]uint32, size)
	case dtypes.Uint64:
		return make([]uint64, size)
	case dtypes.Float16:
		return make([]float16.Float16, size)
	case dtypes.BFloat16:
		return make([]bfloat16.BFloat16, size)
	case dtypes.Float32:
		return make([]float32, size)
	case dtypes.Float64:
		return make([]float64, size)
	}
	exceptions.Panicf("tensors: dtype %s not supported for tensor storage", dtype)
	return nil
}

func copyFlat(dst, src any) {
	switch dstT := dst.(type) {
	case []bool:
		copy(dstT, src.([]bool))
	case []int8:
		copy(dstT, src.([]int8))
	case []int16:
		copy(dstT, src.([]int16))
	case []int32:
		copy(dstT, src.([]int32))
	case []int64:
		copy(dstT, src.([]int64))
	case []uint8:
		copy(dstT, src.([]uint8))
	case []uint16:
		copy(dstT, src.([]uint16))
	case []uint32:
		copy(dstT, src.([]uint32))
	case []uint64:
		copy(dstT, src.([]uint64))
	case []float16.Float16:
		copy(dstT, src.([]float16.Float16))
	case []bfloat16.BFloat16:
		copy(dstT, src.([]bfloat16.BFloat16))
	case []float32:
		copy(dstT, src.([]float32))
	case []float64:
		copy(dstT, src.([]float64))
	default:
		exceptions.Panicf("tensors: unsupported flat data type %T", dst)
	}
}

// hashFlat writes the canonical bit representation of every element to d.
func hashFlat(d *xxhash.Digest, flat any) {
	var buf [8]byte
	write16 := func(bits uint16) {
		binary.LittleEndian.PutUint16(buf[:2], bits)
		_, _ = d.Write(buf[:2])
	}
	write32 := func(bits uint32) {
		binary.LittleEndian.PutUint32(buf[:4], bits)
		_, _ = d.Write(buf[:4])
	}
	write64 := func(bits uint64) {
		binary.LittleEndian.PutUint64(buf[:], bits)
		_, _ = d.Write(buf[:])
	}
	switch flatT := flat.(type) {
	case []bool:
		for _, v := range flatT {
			if v {
				_, _ = d.Write([]byte{1})
			} else {
				_, _ = d.Write([]byte{0})
			}
		}
	case []int8:
		for _, v := range flatT {
			_, _ = d.Write([]byte{byte(v)})
		}
	case []int16:
		for _, v := range flatT {
			write16(uint16(v))
		}
	case []int32:
		for _, v := range flatT {
			write32(uint32(v))
		}
	case []int64:
		for _, v := range flatT {
			write64(uint64(v))
		}
	case []uint8:
		_, _ = d.Write(flatT)
	case []uint16:
		for _, v := range flatT {
			write16(v)
		}
	case []uint32:
		for _, v := range flatT {
			write32(v)
		}
	case []uint64:
		for _, v := range flatT {
			write64(v)
		}
	case []float16.Float16:
		for _, v := range flatT {
			write16(v.Bits())
		}
	case []bfloat16.BFloat16:
		for _, v := range flatT {
			write16(uint16(v))
		}
	case []float32:
		for _, v := range flatT {
			write32(math.Float32bits(v))
		}
	case []float64:
		for _, v := range flatT {
			write64(math.Float64bits(v))
		}
	default:
		exceptions.Panicf("tensors: unsupported flat data type %T", flat)
	}
}

// CopyFlatData returns a copy of the flat data as a slice of the Go type
// corresponding to the tensor's dtype.
//
// It panics if the generic type T doesn't match the tensor's dtype.
func CopyFlatData[T dtypes.Supported](t *Tensor) (data []T) {
	ConstFlatData(t, func(flat []T) {
		data = slices.Clone(flat)
	})
	return
}
