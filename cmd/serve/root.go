package serve

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	cmdUtil "github.com/ValentinKolb/tprobe/cmd/util"
	"github.com/ValentinKolb/tprobe/lib/stats"
	"github.com/ValentinKolb/tprobe/peer/common"
	"github.com/ValentinKolb/tprobe/peer/server"
	"github.com/spf13/cobra"
)

var (
	serveCmdConfig = &common.ServerConfig{}
	ServeCmd       = &cobra.Command{
		Use:     "serve",
		Short:   "Start the probe server",
		Long:    `Start the probe server. It accepts one client at a time, answers its upload or download request and goes back to listening once the connection ends. The configuration can be set via command line flags or environment variables. The format of the environment variables is TPROBE_<flag> (e.g. TPROBE_BUFFER_SIZE=1m)`,
		Args:    cobra.NoArgs,
		PreRunE: processConfig,
		RunE:    run,
	}
)

func init() {
	// add flags
	cmdUtil.SetupProbeFlags(ServeCmd, "0.0.0.0:5150")

	key := "metrics-endpoint"
	ServeCmd.PersistentFlags().String(key, "", cmdUtil.WrapString("Address of the Prometheus metrics endpoint (e.g. localhost:9150), empty disables it"))
}

// processConfig reads the configuration from the command line flags and environment variables and converts them to the server configuration
func processConfig(cmd *cobra.Command, _ []string) error {
	// bind the flags to viper
	if err := cmdUtil.BindCommandFlags(cmd); err != nil {
		return err
	}

	conf, err := cmdUtil.GetServerConfig()
	if err != nil {
		return err
	}
	*serveCmdConfig = *conf

	common.InitLoggers(serveCmdConfig.Probe.LogLevel)
	return nil
}

// run starts the probe server and serves until SIGINT or SIGTERM
func run(_ *cobra.Command, _ []string) error {
	connector, err := cmdUtil.GetServerConnector()
	if err != nil {
		return err
	}

	serv, err := server.NewProbeServer(*serveCmdConfig, connector, stats.NewRecorder())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return serv.ListenAndServe(ctx)
}
