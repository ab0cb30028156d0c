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
	"k8s.io/klog/v2"
)

// DedupNodes merges structurally equal nodes of the graph (common
// subexpression elimination) and returns the number of nodes removed.
//
// Nodes are scanned in creation (topological) order, so by the time a node is
// considered, its operands have already been canonicalized and structural
// equality -- which compares operand identity, not operand structure -- finds
// every mergeable chain. Storage nodes are never merged: a Variable payload
// or an externally bound Placeholder may diverge after deduplication even
// when their current content is equal.
//
// This is a graph mutation and must not run concurrently with any reader.
func DedupNodes(g *Graph) int {
	g.AssertValid()
	buckets := make(map[uint64][]*Node, g.NumNodes())
	removed := 0
	for _, n := range g.Nodes() {
		if IsStorage(n) {
			continue
		}
		hash := Hash(n)
		canonical := (*Node)(nil)
		for _, candidate := range buckets[hash] {
			if Equal(candidate, n) {
				canonical = candidate
				break
			}
		}
		if canonical == nil {
			buckets[hash] = append(buckets[hash], n)
			continue
		}
		for i := 0; i < n.NumOutputs(); i++ {
			g.ReplaceAllUses(n.Result(i), canonical.Result(i))
		}
		g.RemoveNode(n)
		removed++
	}
	if removed > 0 && klog.V(1).Enabled() {
		klog.Infof("ir.DedupNodes: removed %d duplicate nodes from graph %q (%d nodes left)",
			removed, g.Name(), g.NumNodes())
	}
	return removed
}
