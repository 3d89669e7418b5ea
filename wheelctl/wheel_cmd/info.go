package wheel_cmd

import (
	"encoding/hex"
	"os"

	"github.com/lunfardo314/fairwheel/clock"
	"github.com/lunfardo314/fairwheel/store"
	"github.com/lunfardo314/fairwheel/util"
	"github.com/lunfardo314/fairwheel/wheel"
	"github.com/lunfardo314/fairwheel/wheelctl/glb"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"
)

var asYAML bool

func initInfoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info [--yaml]",
		Short: "displays the wheel account",
		Args:  cobra.NoArgs,
		Run:   runInfoCmd,
	}
	cmd.Flags().BoolVar(&asYAML, "yaml", false, "dump account as YAML")
	return cmd
}

type (
	outcomeYAML struct {
		Prize          string `yaml:"prize"`
		PrizeIndex     int    `yaml:"prize_index"`
		Sequence       uint64 `yaml:"sequence"`
		Beacon         string `yaml:"beacon"`
		PreviousBeacon string `yaml:"previous_beacon"`
		Digest         string `yaml:"digest"`
		Player         string `yaml:"player"`
		Claimed        bool   `yaml:"claimed"`
	}

	accountYAML struct {
		Account    string              `yaml:"account"`
		State      string              `yaml:"state"`
		Authority  string              `yaml:"authority,omitempty"`
		Prizes     map[string]uint8    `yaml:"prizes,omitempty"`
		TotalSpins uint64              `yaml:"total_spins"`
		LastSeq    uint64              `yaml:"last_sequence"`
		Commitment string              `yaml:"commitment,omitempty"`
		Committer  string              `yaml:"committer,omitempty"`
		Window     *wheel.RevealWindow `yaml:"window,omitempty"`
		Outcome    *outcomeYAML        `yaml:"outcome,omitempty"`
		History    []outcomeYAML       `yaml:"history,omitempty"`
	}
)

func outcomeToYAML(o *wheel.SpinOutcome, prizes wheel.PrizeTable) outcomeYAML {
	ret := outcomeYAML{
		PrizeIndex:     o.PrizeIndex,
		Sequence:       o.Sequence,
		Beacon:         hex.EncodeToString(o.Beacon[:]),
		PreviousBeacon: hex.EncodeToString(o.PreviousBeacon[:]),
		Digest:         hex.EncodeToString(o.Digest[:]),
		Player:         o.Player.String(),
		Claimed:        o.Claimed,
	}
	if o.PrizeIndex < len(prizes) {
		ret.Prize = prizes[o.PrizeIndex].Name
	}
	return ret
}

func accountToYAML(id store.AccountID, acc *wheel.Account) *accountYAML {
	ret := &accountYAML{
		Account:    id.String(),
		State:      acc.State().String(),
		TotalSpins: acc.TotalSpins,
		LastSeq:    acc.LastSequence,
	}
	if !acc.Initialized {
		return ret
	}
	ret.Authority = acc.Authority.String()
	ret.Prizes = make(map[string]uint8)
	for _, p := range acc.Prizes {
		ret.Prizes[p.Name] = p.Weight
	}
	if acc.HasCommitment {
		ret.Commitment = acc.Commitment.String()
		ret.Committer = acc.Committer.String()
		w := acc.Window
		ret.Window = &w
	}
	if acc.Outcome != nil {
		o := outcomeToYAML(acc.Outcome, acc.Prizes)
		ret.Outcome = &o
	}
	for i := range acc.History {
		ret.History = append(ret.History, outcomeToYAML(&acc.History[i], acc.Prizes))
	}
	return ret
}

func runInfoCmd(_ *cobra.Command, _ []string) {
	defer glb.CloseStore()

	id := glb.AccountID()
	acc, err := store.LoadOrNew(glb.OpenStore(), id)
	glb.AssertNoError(err)

	if asYAML {
		data, err := yaml.Marshal(accountToYAML(id, acc))
		glb.AssertNoError(err)
		_, _ = os.Stdout.Write(data)
		return
	}
	glb.Infof("config profile: %s", viper.ConfigFileUsed())
	glb.Infof("wheel account: %s (%s)", id.String(), viper.GetString("wheel.account"))
	glb.Infof("database: %s '%s'", viper.GetString("db.type"), viper.GetString("db.name"))
	glb.Infof("clock:\n%s", clock.NewSlotClock().Lines("    ").String())
	glb.Infof("total spins: %s", util.Th(acc.TotalSpins))
	glb.Infof(acc.Lines("    ").String())
}
