package cmd

import (
	"fmt"
	"os"

	"github.com/ValentinKolb/tprobe/cmd/connect"
	"github.com/ValentinKolb/tprobe/cmd/serve"
	"github.com/ValentinKolb/tprobe/cmd/util"
	"github.com/spf13/cobra"
)

const (
	Version = "0.3.0"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "tprobe",
		Short: "point-to-point TCP throughput probe",
		Long: fmt.Sprintf(`tprobe (v%s)

Measures the raw throughput between two hosts. One side runs
"tprobe serve", the other side connects with "tprobe connect" and
uploads or downloads a stream of 0xAA bytes until the connection
fails or the run ends. Both sides log the transfer rate once per
second and can validate the received payload.`, Version),
		SilenceUsage: true,
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of tprobe",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("tprobe v%s\n", Version)
		},
	}
)

func init() {
	// initialize viper
	cobra.OnInitialize(util.InitConfig)

	// Add Commands
	RootCmd.AddCommand(serve.ServeCmd)
	RootCmd.AddCommand(connect.ConnectCmd)
	RootCmd.AddCommand(versionCmd)

	// Add Flags
	key := "transport"
	RootCmd.PersistentFlags().String(key, "tcp", util.WrapString("transport to use (tcp, unix)"))
	key = "log-level"
	RootCmd.PersistentFlags().StringP(key, "L", "info", util.WrapString("LogLevel is the level at which logs will be output (off, error, warn, info, debug, trace or their first letter)"))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
