package wheel_cmd

import (
	"github.com/lunfardo314/fairwheel/dispatch"
	"github.com/lunfardo314/fairwheel/wheelctl/glb"
	"github.com/spf13/cobra"
)

var prizeSpecs []string

func initWheelInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init --prize <name>:<weight> [--prize <name>:<weight> ...]",
		Short: "initializes the wheel account with the prize table. Weights must sum up to 100",
		Args:  cobra.NoArgs,
		Run:   runWheelInitCmd,
	}
	cmd.Flags().StringArrayVar(&prizeSpecs, "prize", nil, "prize as <name>:<weight>")
	return cmd
}

func runWheelInitCmd(_ *cobra.Command, _ []string) {
	glb.Assertf(len(prizeSpecs) > 0, "at least one --prize must be specified")
	instr := dispatch.InitializeWheel{
		Prizes:  make([]string, len(prizeSpecs)),
		Weights: make([]uint8, len(prizeSpecs)),
	}
	for i, s := range prizeSpecs {
		var err error
		instr.Prizes[i], instr.Weights[i], err = parsePrize(s)
		glb.AssertNoError(err)
	}
	glb.Infof("initializing wheel account %s", glb.AccountID().String())
	res := process(instr)
	glb.Infof("wheel has been initialized. Authority: %s", res.Account.Authority.String())
	glb.Infof(res.Account.Lines("    ").String())
}
