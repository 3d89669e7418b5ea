package main

import (
	"fmt"
	"os"

	"github.com/lunfardo314/fairwheel/global"
	"github.com/lunfardo314/fairwheel/wheelctl/glb"
	"github.com/lunfardo314/fairwheel/wheelctl/init_cmd"
	"github.com/lunfardo314/fairwheel/wheelctl/sim_cmd"
	"github.com/lunfardo314/fairwheel/wheelctl/wheel_cmd"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	initRoot()
	init_cmd.Init(rootCmd)
	wheel_cmd.Init(rootCmd)
	sim_cmd.Init(rootCmd)
}

var rootCmd = &cobra.Command{
	Use:   "wheelctl",
	Short: "provably fair prize wheel",
	Long: `wheelctl is a CLI tool for the commit-reveal prize wheel.
It provides:
      - wheel account administration in the local database
      - commit, reveal and claim of spins
      - third-party verification of outcomes and fairness simulation
`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		initConfig()
	},
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

func initRoot() {
	rootCmd.Version = global.BannerString()
	rootCmd.PersistentFlags().StringVarP(&glb.ConfigName, "config", "c", "", "profile name")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose")
	glb.AssertNoError(viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose")))
	rootCmd.PersistentFlags().BoolP("force", "f", false, "skip confirmation prompts")
	glb.AssertNoError(viper.BindPFlag("force", rootCmd.PersistentFlags().Lookup("force")))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if glb.ConfigName != "" {
		viper.SetConfigName(glb.ConfigName)
	} else {
		viper.SetConfigName(".wheelctl")
	}
	viper.AddConfigPath(".")
	viper.SetConfigType("yaml")
	glb.SetDefaults()

	viper.SetEnvPrefix("wheel")
	viper.AutomaticEnv() // read in environment variables that match

	if err := viper.ReadInConfig(); err == nil {
		_, _ = fmt.Fprintf(os.Stderr, "Using config profile: %s\n", viper.ConfigFileUsed())
	}
}

func main() {
	cobra.CheckErr(rootCmd.Execute())
}
