package wheel_cmd

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/lunfardo314/fairwheel/commitment"
	"github.com/lunfardo314/fairwheel/dispatch"
	"github.com/lunfardo314/fairwheel/wheelctl/glb"
	"github.com/spf13/cobra"
)

var secretHex string

func initCommitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "commit [--secret <hex>]",
		Short: "commits to the secret. Generates random secret if not provided. Keep the secret until reveal",
		Args:  cobra.NoArgs,
		Run:   runCommitCmd,
	}
	cmd.Flags().StringVar(&secretHex, "secret", "", "32 bytes of the secret, hex encoded")
	return cmd
}

func initRevealCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reveal --secret <hex>",
		Short: "reveals the secret and spins the wheel",
		Args:  cobra.NoArgs,
		Run:   runRevealCmd,
	}
	cmd.Flags().StringVar(&secretHex, "secret", "", "32 bytes of the secret, hex encoded")
	return cmd
}

func initClaimCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "claim",
		Short: "claims the prize of the latest spin",
		Args:  cobra.NoArgs,
		Run:   runClaimCmd,
	}
}

func mustSecret() commitment.Secret {
	glb.Assertf(secretHex != "", "--secret must be specified")
	ret, err := commitment.SecretFromHex(secretHex)
	glb.AssertNoError(err)
	return ret
}

func runCommitCmd(_ *cobra.Command, _ []string) {
	var secret commitment.Secret
	if secretHex == "" {
		_, err := rand.Read(secret[:])
		glb.AssertNoError(err)
		glb.Infof("secret has been generated")
	} else {
		secret = mustSecret()
	}
	c := commitment.Commit(secret)
	res := process(dispatch.CommitSpin{Commitment: c})

	glb.Infof("secret:      %s", secret.String())
	glb.Infof("commitment:  %s", c.String())
	glb.Infof("reveal window (slots): %s", res.Account.Window.String())
}

func runRevealCmd(_ *cobra.Command, _ []string) {
	res := process(dispatch.RevealSpin{Secret: mustSecret()})
	glb.Infof(res.Lines().String())
	glb.Infof("beacon:          %s", hex.EncodeToString(res.Outcome.Beacon[:]))
	glb.Infof("previous beacon: %s", hex.EncodeToString(res.Outcome.PreviousBeacon[:]))
}

func runClaimCmd(_ *cobra.Command, _ []string) {
	res := process(dispatch.ClaimPrize{})
	if res.AlreadyClaimed {
		glb.Infof("prize '%s' has already been claimed", res.PrizeName)
		return
	}
	glb.Infof("prize claimed: '%s'", res.PrizeName)
}
