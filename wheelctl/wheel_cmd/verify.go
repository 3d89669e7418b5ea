package wheel_cmd

import (
	"github.com/lunfardo314/fairwheel/audit"
	"github.com/lunfardo314/fairwheel/beacon"
	"github.com/lunfardo314/fairwheel/clock"
	"github.com/lunfardo314/fairwheel/store"
	"github.com/lunfardo314/fairwheel/wheelctl/glb"
	"github.com/spf13/cobra"
)

func initVerifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify --secret <hex>",
		Short: "recomputes the latest outcome from the revealed secret and public values",
		Args:  cobra.NoArgs,
		Run:   runVerifyCmd,
	}
	cmd.Flags().StringVar(&secretHex, "secret", "", "revealed secret, hex encoded")
	return cmd
}

func runVerifyCmd(_ *cobra.Command, _ []string) {
	defer glb.CloseStore()

	secret := mustSecret()
	acc, err := store.LoadOrNew(glb.OpenStore(), glb.AccountID())
	glb.AssertNoError(err)
	glb.Assertf(acc.Outcome != nil, "no outcome to verify")

	glb.AssertNoError(audit.VerifyOutcome(acc.Outcome, secret, acc.Prizes, glb.Mixer()))
	glb.Infof("outcome verified: prize #%d '%s' at sequence %d",
		acc.Outcome.PrizeIndex, acc.Prizes[acc.Outcome.PrizeIndex].Name, acc.Outcome.Sequence)

	glb.AssertNoError(audit.VerifyChain(acc.History))
	glb.Infof("beacon chain of %d history records verified", len(acc.History))

	// the proof is reproduced by the beacon operator and checked against the public key only
	src, err := beacon.NewVRF(glb.BeaconPrivateKey(), clock.NewManualClock(acc.Outcome.Sequence))
	glb.AssertNoError(err)
	_, proof, err := src.ProveAt(acc.Outcome.Sequence)
	glb.AssertNoError(err)
	if err = audit.VerifyVRFBeacon(src.PublicKey(), acc.Outcome, proof); err != nil {
		glb.Infof("beacon was not produced by the configured beacon key: %v", err)
		return
	}
	glb.Infof("VRF beacon proof verified")
	glb.Verbosef("beacon public key: %x\nproof: %x", []byte(src.PublicKey()), proof)
}
