package glb

import (
	"crypto/ed25519"
	"strings"

	"github.com/lunfardo314/fairwheel/beacon"
	"github.com/lunfardo314/fairwheel/clock"
	"github.com/lunfardo314/fairwheel/dispatch"
	"github.com/lunfardo314/fairwheel/entropy"
	"github.com/lunfardo314/fairwheel/global"
	"github.com/lunfardo314/fairwheel/store"
	"github.com/lunfardo314/fairwheel/util"
	"github.com/lunfardo314/fairwheel/wheel"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const DefaultAccountName = "main"

var (
	ConfigName   string
	accountStore store.AccountStore
	logging      *global.DefaultLogging
)

func SetDefaults() {
	viper.SetDefault(global.ConfigKeyLogLevel, "info")
	viper.SetDefault(global.ConfigKeyLogOutput, []string{"stderr"})
	viper.SetDefault(global.ConfigKeyDBType, store.TypeBadger)
	viper.SetDefault(global.ConfigKeyDBName, global.DefaultDBName)
	viper.SetDefault(global.ConfigKeyAccount, DefaultAccountName)
	viper.SetDefault(global.ConfigKeyWindowMinDelay, wheel.DefaultMinDelay)
	viper.SetDefault(global.ConfigKeyWindowMaxDelay, wheel.DefaultMaxDelay)
	viper.SetDefault(global.ConfigKeyOutcomePolicy, wheel.PolicyOverwrite.String())
	viper.SetDefault(global.ConfigKeyHistoryLimit, wheel.DefaultHistoryLimit)
	viper.SetDefault(global.ConfigKeyMixRounds, entropy.DefaultRounds)
}

// BindFlag makes the command line flag override the config key
func BindFlag(fs *pflag.FlagSet, flagName, key string) {
	AssertNoError(viper.BindPFlag(key, fs.Lookup(flagName)))
}

func Logging() *global.DefaultLogging {
	if logging == nil {
		logging = global.NewDefaultLogging("wheelctl",
			global.ParseLevel(viper.GetString(global.ConfigKeyLogLevel)),
			viper.GetStringSlice(global.ConfigKeyLogOutput),
		)
		if tags := viper.GetString(global.ConfigKeyTraceTags); tags != "" {
			logging.EnableTraceTags(tags)
		}
		global.SetGlobalLogging(logging)
	}
	return logging
}

func PrivateKey() ed25519.PrivateKey {
	str := viper.GetString(global.ConfigKeyPrivateKey)
	Assertf(str != "", "private key not specified. Use 'wheelctl keygen --set'")
	ret, err := util.ED25519PrivateKeyFromHexString(str)
	AssertNoError(err)
	return ret
}

func Identity() wheel.Identity {
	return wheel.IdentityFromPublicKey(PrivateKey().Public().(ed25519.PublicKey))
}

func AccountID() store.AccountID {
	return store.ParseAccountID(viper.GetString(global.ConfigKeyAccount))
}

func WheelConfig() wheel.Config {
	policy, err := wheel.ParseOutcomePolicy(viper.GetString(global.ConfigKeyOutcomePolicy))
	AssertNoError(err)
	ret := wheel.Config{
		MinDelay:     viper.GetUint64(global.ConfigKeyWindowMinDelay),
		MaxDelay:     viper.GetUint64(global.ConfigKeyWindowMaxDelay),
		Policy:       policy,
		HistoryLimit: viper.GetInt(global.ConfigKeyHistoryLimit),
	}
	AssertNoError(ret.Validate())
	return ret
}

func Mixer() *entropy.Mixer {
	ret, err := entropy.New(entropy.WithRounds(viper.GetInt(global.ConfigKeyMixRounds)))
	AssertNoError(err)
	return ret
}

// BeaconPrivateKey falls back to the own private key
func BeaconPrivateKey() ed25519.PrivateKey {
	str := viper.GetString(global.ConfigKeyBeaconPrivateKey)
	if str == "" {
		Verbosef("beacon.private_key not set, own private key is used for the VRF beacon")
		return PrivateKey()
	}
	ret, err := util.ED25519PrivateKeyFromHexString(str)
	AssertNoError(err)
	return ret
}

func Beacon(clk clock.Clock) *beacon.VRF {
	ret, err := beacon.NewVRF(BeaconPrivateKey(), clk)
	AssertNoError(err)
	return ret
}

func OpenStore() store.AccountStore {
	if accountStore != nil {
		return accountStore
	}
	typ := strings.ToLower(viper.GetString(global.ConfigKeyDBType))
	name := viper.GetString(global.ConfigKeyDBName)
	Verbosef("opening '%s' store '%s'", typ, name)
	var err error
	accountStore, err = store.Open(typ, name)
	AssertNoError(err)
	return accountStore
}

func CloseStore() {
	if accountStore != nil {
		_ = accountStore.Close()
		accountStore = nil
	}
}

// Processor of instructions over the persisted store with the slot clock and VRF beacon
func Processor() (*dispatch.Processor, *beacon.VRF) {
	clk := clock.NewSlotClock()
	bcn := Beacon(clk)
	log := Logging()
	m, err := wheel.NewMachine(clk, bcn,
		wheel.WithConfig(WheelConfig()),
		wheel.WithMixer(Mixer()),
		wheel.WithLogging(log.Sub("wheel")),
	)
	AssertNoError(err)
	return dispatch.NewProcessor(OpenStore(), m, log.Sub("dispatch")), bcn
}
