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

// This file defines methods that allow for introspection of a graph.

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
)

// GraphReport summarizes a graph: live node counts per kind and the memory
// held by Variable payloads.
type GraphReport struct {
	GraphName      string
	NumNodes       int
	NodesPerKind   map[Kind]int
	NumTrainable   int
	VariableMemory uintptr
}

// Report builds a GraphReport for the graph's current state. Read-only.
func (g *Graph) Report() *GraphReport {
	g.AssertValid()
	report := &GraphReport{
		GraphName:    g.name,
		NodesPerKind: make(map[Kind]int),
	}
	// Counting happens in Pre; only the storage kinds need handlers, the
	// Visitor skips unhandled kinds on its own.
	v := NewVisitor().
		Handle(KindStorage, func(n *Node) {
			if IsTrainable(n) {
				report.NumTrainable++
			}
		}).
		Handle(KindVariable, func(n *Node) {
			variable := n.Variable()
			if variable.Trainable {
				report.NumTrainable++
			}
			report.VariableMemory += variable.Value().Memory()
		})
	v.Pre = func(n *Node) {
		report.NumNodes++
		report.NodesPerKind[n.Kind()]++
	}
	v.VisitAll(g)
	return report
}

// String implements fmt.Stringer with one line per kind, sorted by count, and
// a humanized payload-memory total.
func (r *GraphReport) String() string {
	var sb strings.Builder
	_, _ = fmt.Fprintf(&sb, "Graph %q: %d nodes, %d trainable storage nodes, %s of variable payloads\n",
		r.GraphName, r.NumNodes, r.NumTrainable, humanize.Bytes(uint64(r.VariableMemory)))
	kinds := make([]Kind, 0, len(r.NodesPerKind))
	for kind := range r.NodesPerKind {
		kinds = append(kinds, kind)
	}
	sort.Slice(kinds, func(i, j int) bool {
		ci, cj := r.NodesPerKind[kinds[i]], r.NodesPerKind[kinds[j]]
		if ci != cj {
			return ci > cj
		}
		return kinds[i] < kinds[j]
	})
	for _, kind := range kinds {
		_, _ = fmt.Fprintf(&sb, "\t%s: %d\n", kind, r.NodesPerKind[kind])
	}
	return sb.String()
}
