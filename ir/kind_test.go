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
	"testing"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gonnc/gonnc/types/shapes"
	"github.com/stretchr/testify/require"
)

func TestKindTable(t *testing.T) {
	// Every kind except Invalid is in the table, and every parent chain
	// terminates at KindNode -> KindInvalid.
	for _, kind := range KindValues() {
		if kind == KindInvalid {
			require.NotContains(t, kindTable, kind)
			continue
		}
		k := kind
		for steps := 0; k != KindInvalid; steps++ {
			require.Less(t, steps, 3, "parent chain of %s too long", kind)
			k = k.Parent()
		}
	}
	require.Equal(t, KindStorage, KindVariable.Parent())
	require.Equal(t, KindStorage, KindPlaceholder.Parent())
	require.Equal(t, KindNode, KindConvolution.Parent())
	require.Equal(t, KindInvalid, KindNode.Parent())
	require.Panics(t, func() { Kind(9999).Parent() })
}

func TestKindIsAbstract(t *testing.T) {
	require.True(t, KindNode.IsAbstract())
	require.True(t, KindStorage.IsAbstract())
	require.False(t, KindVariable.IsAbstract())
	require.False(t, KindPool.IsAbstract())
}

func TestKindStrings(t *testing.T) {
	require.Equal(t, "Convolution", KindConvolution.String())
	require.Equal(t, "FullyConnected", KindFullyConnected.String())

	kind, err := KindString("Pool")
	require.NoError(t, err)
	require.Equal(t, KindPool, kind)
	_, err = KindString("NoSuchKind")
	require.Error(t, err)

	for _, kind := range KindValues() {
		require.True(t, kind.IsAKind())
		roundTrip, err := KindString(kind.String())
		require.NoError(t, err)
		require.Equal(t, kind, roundTrip)
	}
	require.False(t, Kind(9999).IsAKind())
}

func TestDowncast(t *testing.T) {
	g := New("test")
	input := g.NewPlaceholder("input", shapes.Make(dtypes.Float32, 1, 8, 8, 4), false)
	pool := g.MaxPool("pool", input.Value(), 2, 2, 0)

	require.True(t, Is[*Pool](pool))
	require.False(t, Is[*Convolution](pool))
	require.True(t, pool.IsKind(KindPool))
	require.False(t, pool.IsKind(KindNode))

	attrs, ok := As[*Pool](pool)
	require.True(t, ok)
	require.Equal(t, PoolMax, attrs.Op)
	require.Equal(t, 2, attrs.Kernel)

	_, ok = As[*Convolution](pool)
	require.False(t, ok)
	require.Panics(t, func() { MustAs[*Convolution](pool) })
	require.Same(t, attrs, MustAs[*Pool](pool))
}
