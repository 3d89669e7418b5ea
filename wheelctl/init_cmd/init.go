package init_cmd

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"

	"github.com/lunfardo314/fairwheel/global"
	"github.com/lunfardo314/fairwheel/wheel"
	"github.com/lunfardo314/fairwheel/wheelctl/glb"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var setKey bool

// Init adds all commands in the package to the root command
func Init(rootCmd *cobra.Command) {
	initCmd := &cobra.Command{
		Use:   "init [-c profile]",
		Args:  cobra.NoArgs,
		Short: "initializes config profile with default values and a new private key",
		Run:   runInitCommand,
	}
	rootCmd.AddCommand(initCmd)

	keygenCmd := &cobra.Command{
		Use:   "keygen [--set]",
		Args:  cobra.NoArgs,
		Short: "generates new ED25519 private key",
		Run:   runKeygenCommand,
	}
	keygenCmd.Flags().BoolVar(&setKey, "set", false, "set generated key to the config profile")
	rootCmd.AddCommand(keygenCmd)
}

func profileFileName() string {
	if glb.ConfigName == "" {
		return ".wheelctl.yaml"
	}
	return glb.ConfigName + ".yaml"
}

func runInitCommand(_ *cobra.Command, _ []string) {
	fname := profileFileName()
	glb.Assertf(!glb.FileExists(fname), "profile '%s' already exists", fname)

	privateKey := generateKey()
	viper.Set(global.ConfigKeyPrivateKey, hex.EncodeToString(privateKey))
	viper.Set(global.ConfigKeyMetricsPort, 14000)
	glb.AssertNoError(viper.SafeWriteConfigAs(fname))
	glb.Infof("config profile '%s' has been created", fname)
	glb.Infof("identity: %s", identityOf(privateKey).String())
}

func runKeygenCommand(_ *cobra.Command, _ []string) {
	privateKey := generateKey()
	glb.Infof("private key: %s", hex.EncodeToString(privateKey))
	glb.Infof("identity:    %s", identityOf(privateKey).String())
	if !setKey {
		return
	}
	glb.Assertf(viper.ConfigFileUsed() != "", "config profile not found")
	if viper.GetString(global.ConfigKeyPrivateKey) != "" {
		if !glb.YesNoPrompt("Are you sure you want to replace current private key?", false) {
			glb.Infof("private key not changed")
			return
		}
	}
	viper.Set(global.ConfigKeyPrivateKey, hex.EncodeToString(privateKey))
	glb.AssertNoError(viper.WriteConfig())
	glb.Infof("private key has been set in '%s'", viper.ConfigFileUsed())
}

func generateKey() ed25519.PrivateKey {
	_, privateKey, err := ed25519.GenerateKey(rand.Reader)
	glb.AssertNoError(err)
	return privateKey
}

func identityOf(privateKey ed25519.PrivateKey) wheel.Identity {
	return wheel.IdentityFromPublicKey(privateKey.Public().(ed25519.PublicKey))
}
