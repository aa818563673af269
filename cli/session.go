package cli

import (
	"context"
	"fmt"

	"github.com/mobile-next/adbocr/commands"
	"github.com/mobile-next/adbocr/config"
	"github.com/mobile-next/adbocr/session"
	"github.com/spf13/cobra"
)

// addDeviceFlags registers the flags that pick a device and its screen
// profile. Unset flags fall back to the config file.
func addDeviceFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&deviceHost, "host", "", "device host (default from config, 'localhost')")
	cmd.Flags().IntVar(&devicePort, "port", 0, "device adb port (default from config, 5555)")
	cmd.Flags().StringVar(&deviceSerial, "serial", "", "adb serial of an attached device, instead of host and port")
	cmd.Flags().IntVar(&screenWidth, "width", 0, "logical screen width")
	cmd.Flags().IntVar(&screenHeight, "height", 0, "logical screen height")
	cmd.Flags().IntVar(&screenDensity, "density", 0, "screen density in dpi")
	cmd.Flags().BoolVar(&noScan, "no-scan", false, "do not scan local ports when connecting to localhost fails")
}

// sessionRequest merges the config file with the flags that were set.
func sessionRequest(cmd *cobra.Command, cfg *config.Config) commands.SessionRequest {
	req := commands.SessionRequest{
		Host:    cfg.Device.Host,
		Port:    cfg.Device.Port,
		Serial:  cfg.Device.Serial,
		Width:   cfg.Device.Width,
		Height:  cfg.Device.Height,
		Density: cfg.Device.Density,
	}

	flags := cmd.Flags()
	if flags.Changed("host") {
		req.Host = deviceHost
		req.Serial = ""
	}
	if flags.Changed("port") {
		req.Port = devicePort
		req.Serial = ""
	}
	if flags.Changed("serial") {
		req.Serial = deviceSerial
	}
	if flags.Changed("width") {
		req.Width = screenWidth
	}
	if flags.Changed("height") {
		req.Height = screenHeight
	}
	if flags.Changed("density") {
		req.Density = screenDensity
	}

	return req
}

func sessionOptions(cmd *cobra.Command, cfg *config.Config) []session.Option {
	opts := session.OptionsFromConfig(cfg)
	if cmd.Flags().Changed("no-scan") && noScan {
		opts = append(opts, session.WithScan(false))
	}
	return opts
}

// openSession loads a session from the config file and flags. The caller
// closes it.
func openSession(cmd *cobra.Command) (context.Context, *session.Session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	s, err := commands.LoadSession(ctx, sessionRequest(cmd, cfg), sessionOptions(cmd, cfg)...)
	if err != nil {
		return nil, nil, err
	}
	shutdownHook.RegisterCloser("session "+s.ID(), s)
	return ctx, s, nil
}

// runWithSession opens a session, runs fn, prints its response and closes
// the session again.
func runWithSession(cmd *cobra.Command, fn func(ctx context.Context, s *session.Session) *commands.CommandResponse) error {
	ctx, s, err := openSession(cmd)
	if err != nil {
		return printError(err)
	}
	defer s.Close()

	return printResponse(fn(ctx, s))
}

func printResponse(response *commands.CommandResponse) error {
	printJson(response)
	if response.Status == "error" {
		return fmt.Errorf("%s", response.Error)
	}
	return nil
}

func printError(err error) error {
	return printResponse(commands.NewErrorResponse(err))
}
