package connect

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	cmdUtil "github.com/ValentinKolb/tprobe/cmd/util"
	"github.com/ValentinKolb/tprobe/peer/client"
	"github.com/ValentinKolb/tprobe/peer/common"
	"github.com/spf13/cobra"
)

var (
	connectCmdConfig = &common.ClientConfig{}
	ConnectCmd       = &cobra.Command{
		Use:   "connect",
		Short: "Run a probe session against a server",
		Long: `Connect to a probe server and download (default) or upload a stream of 0xAA bytes until the connection fails, the duration expires or the process is interrupted. The configuration can be set via command line flags or environment variables. The format of the environment variables is TPROBE_<flag> (e.g. TPROBE_UPLOAD=true)

Examples:
  tprobe connect --endpoint 10.0.0.2 --duration 30s
  tprobe connect --endpoint 10.0.0.2:6000 -u -e -B 1m`,
		Args:    cobra.NoArgs,
		PreRunE: processConfig,
		RunE:    run,
	}
)

func init() {
	// add flags
	cmdUtil.SetupProbeFlags(ConnectCmd, "localhost:5150")

	key := "port"
	ConnectCmd.PersistentFlags().Int(key, common.DefaultPort, cmdUtil.WrapString("The port to connect to if the endpoint has none (only for tcp)"))

	key = "upload"
	ConnectCmd.PersistentFlags().BoolP(key, "u", false, cmdUtil.WrapString("Upload to the server instead of downloading from it"))

	key = "duration"
	ConnectCmd.PersistentFlags().Duration(key, 0, cmdUtil.WrapString("End the session after this time (e.g. 30s), 0 runs until the connection fails"))
}

// processConfig reads the configuration from the command line flags and environment variables and converts them to the client configuration
func processConfig(cmd *cobra.Command, _ []string) error {
	// bind the flags to viper
	if err := cmdUtil.BindCommandFlags(cmd); err != nil {
		return err
	}

	conf, err := cmdUtil.GetClientConfig()
	if err != nil {
		return err
	}
	*connectCmdConfig = *conf

	common.InitLoggers(connectCmdConfig.Probe.LogLevel)
	return nil
}

// run connects to the server and runs one session
func run(_ *cobra.Command, _ []string) error {
	connector, err := cmdUtil.GetClientConnector()
	if err != nil {
		return err
	}

	c, err := client.NewProbeClient(*connectCmdConfig, connector, nil)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_, err = c.Run(ctx)
	return err
}
