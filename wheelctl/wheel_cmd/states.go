package wheel_cmd

import (
	"os"
	"sort"

	"github.com/lunfardo314/fairwheel/wheel"
	"github.com/lunfardo314/fairwheel/wheelctl/glb"
	"github.com/spf13/cobra"
)

var asDOT bool

func initStatesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "states [--dot]",
		Short: "displays state transitions of the wheel account",
		Args:  cobra.NoArgs,
		Run:   runStatesCmd,
	}
	cmd.Flags().BoolVar(&asDOT, "dot", false, "output in Graphviz DOT format")
	return cmd
}

func runStatesCmd(_ *cobra.Command, _ []string) {
	if asDOT {
		glb.AssertNoError(wheel.WriteDOT(os.Stdout))
		return
	}
	edges, err := wheel.TransitionGraph().Edges()
	glb.AssertNoError(err)
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].Source != edges[j].Source {
			return edges[i].Source < edges[j].Source
		}
		return edges[i].Target < edges[j].Target
	})
	for _, e := range edges {
		glb.Infof("%-14s --[%s]--> %s", e.Source, e.Properties.Attributes["label"], e.Target)
	}
}
