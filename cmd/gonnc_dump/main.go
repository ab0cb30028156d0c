// gonnc_dump builds a demo convolutional-network IR graph and dumps it,
// optionally after running the deduplication pass. Useful to eyeball the IR
// printer and the pass plumbing without a front end.
//
// Usage:
//
//	gonnc_dump [-dedup] [-report] [-kind Convolution]
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gonnc/gonnc/ir"
	"github.com/gonnc/gonnc/types/shapes"
	"github.com/janpfeifer/must"
	"k8s.io/klog/v2"
)

var (
	flagDedup  = flag.Bool("dedup", false, "Run the deduplication (CSE) pass before dumping.")
	flagReport = flag.Bool("report", false, "Print the per-kind node counts and payload memory.")
	flagKind   = flag.String("kind", "", "If set, dump only nodes of this kind, e.g. \"Convolution\".")
)

func main() {
	klog.InitFlags(nil)
	flag.Parse()
	if flag.NArg() > 0 {
		klog.Errorf("Unexpected arguments %v. See 'gonnc_dump -help'.", flag.Args())
		os.Exit(1)
	}

	g := buildDemoGraph()
	if *flagDedup {
		removed := ir.DedupNodes(g)
		fmt.Printf("Dedup removed %d nodes.\n", removed)
	}
	if *flagKind != "" {
		kind := must.M1(ir.KindString(*flagKind))
		for _, n := range g.Nodes() {
			if n.IsKind(kind) {
				fmt.Printf("%s\n", n)
			}
		}
	} else {
		fmt.Print(g)
	}
	if *flagReport {
		fmt.Print(g.Report())
	}
}

// buildDemoGraph assembles a small LeNet-style network, with the first
// convolution intentionally duplicated so -dedup has something to merge.
func buildDemoGraph() *ir.Graph {
	g := ir.New("demo")
	input := g.NewPlaceholder("input", shapes.Make(dtypes.Float32, 1, 28, 28, 1), false).Value()

	filter := g.NewVariableFromShape("conv1_filter", shapes.Make(dtypes.Float32, 8, 5, 5, 1), true, false).Value()
	bias := g.NewVariableFromShape("conv1_bias", shapes.Make(dtypes.Float32, 8), true, false).Value()
	conv := g.Convolution("conv1", input, filter, bias, 5, 1, 2, 8)
	convDup := g.Convolution("conv1_dup", input, filter, bias, 5, 1, 2, 8)

	relu := g.Relu("relu1", conv.Value())
	reluDup := g.Relu("relu1_dup", convDup.Value())
	sum := g.Add("sum", relu.Value(), reluDup.Value())

	pool := g.MaxPool("pool1", sum.Value(), 2, 2, 0)
	flat := g.Reshape("flatten", pool.Value(), 1, 14*14*8)

	fcFilter := g.NewVariableFromShape("fc_filter", shapes.Make(dtypes.Float32, 14*14*8, 10), true, false).Value()
	fcBias := g.NewVariableFromShape("fc_bias", shapes.Make(dtypes.Float32, 10), true, false).Value()
	fc := g.FullyConnected("fc", flat.Value(), fcFilter, fcBias, 10)

	selected := g.NewPlaceholder("labels", shapes.Make(dtypes.Float32, 1, 10), false).Value()
	g.SoftMax("softmax", fc.Value(), selected)
	return g
}
