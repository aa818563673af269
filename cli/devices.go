package cli

import (
	"github.com/mobile-next/adbocr/commands"
	"github.com/mobile-next/adbocr/devices"
	"github.com/spf13/cobra"
)

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List connected devices",
	Long:  `List the devices known to the adb server. With --scan, also list local TCP ports from 5555 up that are listening and may be emulators.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return printError(err)
		}

		transport := devices.NewAdbTransport(cfg.Device.AdbPath, cfg.Device.Timeout)
		response := commands.DevicesCommand(cmd.Context(), transport, commands.DevicesRequest{Scan: scanPorts})
		return printResponse(response)
	},
}

func init() {
	rootCmd.AddCommand(devicesCmd)

	// devices command flags
	devicesCmd.Flags().BoolVar(&scanPorts, "scan", false, "also list listening local ports that may be emulators")
}
