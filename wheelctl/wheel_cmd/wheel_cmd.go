package wheel_cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/lunfardo314/fairwheel/dispatch"
	"github.com/lunfardo314/fairwheel/wheel"
	"github.com/lunfardo314/fairwheel/wheelctl/glb"
	"github.com/spf13/cobra"
)

// Init adds all commands in the package to the root command
func Init(rootCmd *cobra.Command) {
	wheelCmd := &cobra.Command{
		Use:   "wheel",
		Short: "wheel account administration",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			_ = cmd.Help()
		},
	}
	wheelCmd.PersistentFlags().String("account", "", "wheel account name or 32 bytes hex. Default is 'main'")
	glb.BindFlag(wheelCmd.PersistentFlags(), "account", "wheel.account")
	wheelCmd.AddCommand(initWheelInitCmd())
	rootCmd.AddCommand(wheelCmd)

	rootCmd.AddCommand(
		initCommitCmd(),
		initRevealCmd(),
		initClaimCmd(),
		initInfoCmd(),
		initVerifyCmd(),
		initStatesCmd(),
	)
}

// process runs the instruction on behalf of the own identity and closes the store
func process(instr dispatch.Instruction) *dispatch.Result {
	defer glb.CloseStore()

	p, _ := glb.Processor()
	id := glb.Identity()
	res, err := p.Process(context.Background(), glb.AccountID(), id, wheel.NewSignerSet(id), instr)
	glb.AssertNoError(err)
	return res
}

// parsePrize parses 'name:weight'
func parsePrize(s string) (string, uint8, error) {
	i := strings.LastIndex(s, ":")
	if i <= 0 {
		return "", 0, fmt.Errorf("wrong prize '%s', expected <name>:<weight>", s)
	}
	w, err := strconv.ParseUint(strings.TrimSpace(s[i+1:]), 10, 8)
	if err != nil {
		return "", 0, fmt.Errorf("wrong weight in '%s': %v", s, err)
	}
	return strings.TrimSpace(s[:i]), uint8(w), nil
}
