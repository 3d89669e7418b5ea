package sim_cmd

import (
	"context"
	"crypto/rand"
	"fmt"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/lunfardo314/fairwheel/audit"
	"github.com/lunfardo314/fairwheel/beacon"
	"github.com/lunfardo314/fairwheel/clock"
	"github.com/lunfardo314/fairwheel/commitment"
	"github.com/lunfardo314/fairwheel/dispatch"
	"github.com/lunfardo314/fairwheel/global"
	"github.com/lunfardo314/fairwheel/metrics"
	"github.com/lunfardo314/fairwheel/store"
	"github.com/lunfardo314/fairwheel/util"
	"github.com/lunfardo314/fairwheel/wheel"
	"github.com/lunfardo314/fairwheel/wheelctl/glb"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	numSpins      int
	weightsStr    string
	exposeMetrics bool
)

func Init(rootCmd *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "simulate [-n <spins>] [--weights 50,50] [--metrics]",
		Short: "runs many spins in memory and reports observed frequencies against the weights",
		Args:  cobra.NoArgs,
		Run:   runSimulateCmd,
	}
	cmd.Flags().IntVarP(&numSpins, "spins", "n", 10000, "number of spins")
	cmd.Flags().StringVar(&weightsStr, "weights", "50,50", "comma separated weights")
	cmd.Flags().BoolVar(&exposeMetrics, "metrics", false, "expose Prometheus metrics and wait for Ctrl-C after the simulation")
	rootCmd.AddCommand(cmd)
}

func parseWeights(s string) ([]uint8, error) {
	parts := strings.Split(s, ",")
	ret := make([]uint8, len(parts))
	for i, p := range parts {
		w, err := strconv.ParseUint(strings.TrimSpace(p), 10, 8)
		if err != nil {
			return nil, fmt.Errorf("wrong weight '%s': %v", p, err)
		}
		ret[i] = uint8(w)
	}
	return ret, nil
}

// simulation spins one wheel in memory. The manual clock is moved by the minimal reveal delay
// after each commit and every outcome is claimed, so any outcome policy works
type simulation struct {
	clock     *clock.ManualClock
	minDelay  uint64
	machine   *wheel.Machine
	processor *dispatch.Processor
	monitor   *audit.Monitor
	accountID store.AccountID
	player    wheel.Identity
	signers   wheel.Signers
}

func newSimulation(ctx context.Context, weights []uint8, window int, seed [32]byte, cfg wheel.Config, log global.Logging, opts ...wheel.Option) (*simulation, error) {
	names := prizeNames(len(weights))
	monitor, err := audit.NewMonitor(weights, window)
	if err != nil {
		return nil, err
	}
	clk := clock.NewManualClock(1)
	opts = append([]wheel.Option{wheel.WithConfig(cfg), wheel.WithLogging(log)}, opts...)
	m, err := wheel.NewMachine(clk, beacon.NewHashChain(seed, clk), opts...)
	if err != nil {
		return nil, err
	}
	ret := &simulation{
		clock:     clk,
		minDelay:  cfg.MinDelay,
		machine:   m,
		processor: dispatch.NewProcessor(store.NewInMemory(), m, log),
		monitor:   monitor,
		accountID: store.AccountIDFromName("simulation"),
		player:    wheel.Identity(seed),
	}
	ret.signers = wheel.NewSignerSet(ret.player)
	if _, err = ret.process(ctx, dispatch.InitializeWheel{Prizes: names, Weights: weights}); err != nil {
		return nil, err
	}
	return ret, nil
}

func prizeNames(n int) []string {
	ret := make([]string, n)
	for i := range ret {
		ret[i] = fmt.Sprintf("prize%d", i)
	}
	return ret
}

func (s *simulation) process(ctx context.Context, instr dispatch.Instruction) (*dispatch.Result, error) {
	return s.processor.Process(ctx, s.accountID, s.player, s.signers, instr)
}

func (s *simulation) spin(ctx context.Context, secret commitment.Secret) error {
	if _, err := s.process(ctx, dispatch.CommitSpin{Commitment: commitment.Commit(secret)}); err != nil {
		return err
	}
	s.clock.Advance(s.minDelay)
	res, err := s.process(ctx, dispatch.RevealSpin{Secret: secret})
	if err != nil {
		return err
	}
	if _, err = s.process(ctx, dispatch.ClaimPrize{}); err != nil {
		return err
	}
	s.monitor.Observe(res.PrizeIndex)
	return nil
}

func runSimulateCmd(_ *cobra.Command, _ []string) {
	weights, err := parseWeights(weightsStr)
	glb.AssertNoError(err)

	env := global.New("sim", global.ParseLevel(viper.GetString(global.ConfigKeyLogLevel)), []string{"stderr"})
	if exposeMetrics {
		metrics.Start(env)
	}
	var seed [32]byte
	_, err = rand.Read(seed[:])
	glb.AssertNoError(err)

	ctx := env.Ctx()
	sim, err := newSimulation(ctx, weights, numSpins, seed, glb.WheelConfig(), env.Sub("sim"),
		wheel.WithMixer(glb.Mixer()),
		wheel.WithMetrics(metrics.NewWheel(env.MetricsRegistry())),
	)
	glb.AssertNoError(err)

	start := time.Now()
	for i := 0; i < numSpins; i++ {
		var secret commitment.Secret
		_, err = rand.Read(secret[:])
		glb.AssertNoError(err)
		glb.AssertNoError(sim.spin(ctx, secret))
	}
	glb.Infof("%s spins in %v, mixer: %s", util.Th(numSpins), time.Since(start), sim.machine.Mixer().String())
	glb.Infof(sim.monitor.Report().Lines(prizeNames(len(weights)), "    ").String())

	if !exposeMetrics {
		return
	}
	glb.Infof("metrics are exposed. Press Ctrl-C to exit")
	sigCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-sigCtx.Done()
	env.Stop()
	env.Wait()
}
