// Command sinojtagd serves the SinoWealth JTAG/ICP RPC adapter over a
// serial port, bit-banging the target through a selected GPIO backend.
package main

import (
	"flag"
	"os"

	"github.com/golang/glog"
	"github.com/spf13/cobra"

	"github.com/MadnessASAP/SinoJTAG/internal/rpcsvc"
	"github.com/MadnessASAP/SinoJTAG/pkg/phy"
	"github.com/MadnessASAP/SinoJTAG/pkg/phy/driverhid"
	"github.com/MadnessASAP/SinoJTAG/pkg/phy/driverperiph"
)

var (
	serialPort  string
	baudRate    int
	backendName string
	hidIndex    int
)

var rootCmd = &cobra.Command{
	Use:   "sinojtagd",
	Short: "sinojtagd bridges a serial RPC client to SinoWealth JTAG/ICP hardware",
	RunE:  run,
}

func init() {
	rootCmd.Flags().StringVar(&serialPort, "port", "", "serial port to serve the RPC adapter on (required)")
	rootCmd.Flags().IntVar(&baudRate, "baud", 115200, "serial baud rate")
	rootCmd.Flags().StringVar(&backendName, "backend", "hid", "GPIO backend: hid or periph")
	rootCmd.Flags().IntVar(&hidIndex, "hid-index", 0, "MCP2221A device index when --backend=hid")
	rootCmd.MarkFlagRequired("port")

	// glog registers -v, -logtostderr, etc. on the standard flag package;
	// merge them into cobra's pflag set so they show up alongside the
	// adapter's own flags instead of needing separate parsing.
	rootCmd.PersistentFlags().AddGoFlagSet(flag.CommandLine)
}

func openBackend() (phy.Driver, error) {
	switch backendName {
	case "hid":
		return driverhid.Open(byte(hidIndex))
	case "periph":
		return driverperiph.Open(driverperiph.DefaultPinNames())
	default:
		glog.Fatalf("unknown backend %q (want hid or periph)", backendName)
		return nil, nil
	}
}

func run(cmd *cobra.Command, args []string) error {
	drv, err := openBackend()
	if err != nil {
		return err
	}

	adapter := rpcsvc.New(drv)

	port, err := rpcsvc.OpenSerial(serialPort, baudRate)
	if err != nil {
		return err
	}
	defer port.Close()

	glog.Infof("serving RPC adapter on %s at %d baud, backend=%s", serialPort, baudRate, backendName)
	return rpcsvc.Serve(port, adapter)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		glog.Error(err)
		os.Exit(1)
	}
}
