package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/mobile-next/adbocr/commands"
	"github.com/mobile-next/adbocr/config"
	"github.com/mobile-next/adbocr/daemon"
	"github.com/mobile-next/adbocr/devices"
	"github.com/mobile-next/adbocr/server"
	"github.com/mobile-next/adbocr/session"
	"github.com/mobile-next/adbocr/utils"
	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Server management commands",
	Long:  `Commands for managing the adbocr JSON-RPC server.`,
}

var serverStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the adbocr server",
	Long:  `Starts the JSON-RPC server on /rpc and /ws. Each session_load call opens an independent device session.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		// GetBool/GetString/GetInt cannot fail for defined flags
		listenAddr, _ := cmd.Flags().GetString("listen")
		if listenAddr == "" {
			listenAddr = cfg.Server.Listen
		}
		enableCORS := cfg.Server.CORS
		if cmd.Flags().Changed("cors") {
			enableCORS, _ = cmd.Flags().GetBool("cors")
		}
		maxSessions := cfg.Server.MaxSessions
		if cmd.Flags().Changed("max-sessions") {
			maxSessions, _ = cmd.Flags().GetInt("max-sessions")
		}
		isDaemon, _ := cmd.Flags().GetBool("daemon")
		logFile, _ := cmd.Flags().GetString("log-file")

		host, port, err := utils.NormalizeListenAddr(listenAddr, "localhost")
		if err != nil {
			return err
		}
		if !utils.IsPortAvailable(host, port) {
			return fmt.Errorf("port %d is already in use on %s", port, host)
		}

		if isDaemon && !daemon.IsChild() {
			if err := daemonize(logFile); err != nil {
				return err
			}

			fmt.Printf("Server daemon spawned, attempting to listen on %s\n", listenAddr)
			return nil
		}

		srv, err := server.New(server.Options{
			Loader:      sessionLoader(cfg),
			Lister:      devices.NewAdbTransport(cfg.Device.AdbPath, cfg.Device.Timeout),
			MaxSessions: maxSessions,
			EnableCORS:  enableCORS,
		})
		if err != nil {
			return err
		}
		shutdownHook.RegisterCloser("server", srv)

		return srv.ListenAndServe(listenAddr)
	},
}

var serverKillCmd = &cobra.Command{
	Use:   "kill",
	Short: "Stop the daemonized adbocr server",
	Long:  `Connects to the server and sends a shutdown command via JSON-RPC.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		// GetString cannot fail for defined flags
		addr, _ := cmd.Flags().GetString("listen")
		if addr == "" {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			addr = cfg.Server.Listen
		}

		err := daemon.KillServer(addr)
		if err != nil {
			return err
		}

		fmt.Printf("Server shutdown command sent successfully\n")
		return nil
	},
}

// sessionLoader opens sessions with the configured adb and OCR settings.
// Requests without a host or serial use the configured device.
func sessionLoader(cfg *config.Config) server.Loader {
	opts := session.OptionsFromConfig(cfg)
	return func(ctx context.Context, req commands.SessionRequest) (*session.Session, error) {
		if req.Host == "" && req.Serial == "" {
			req.Host, req.Port, req.Serial = cfg.Device.Host, cfg.Device.Port, cfg.Device.Serial
		}
		return commands.LoadSession(ctx, req, opts...)
	}
}

// daemonize forks the server. The child runs in "/", so relative paths are
// resolved first.
func daemonize(logFile string) error {
	if logFile != "" {
		abs, err := filepath.Abs(logFile)
		if err != nil {
			return fmt.Errorf("invalid log file: %w", err)
		}
		logFile = abs
	}

	var env []string
	if configPath != "" {
		abs, err := filepath.Abs(configPath)
		if err != nil {
			return fmt.Errorf("invalid config path: %w", err)
		}
		env = append(env, ConfigEnvVar+"="+abs)
	}

	if _, err := daemon.Daemonize(logFile, env...); err != nil {
		return fmt.Errorf("failed to start daemon: %w", err)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(serverCmd)

	// add server subcommands
	serverCmd.AddCommand(serverStartCmd)
	serverCmd.AddCommand(serverKillCmd)

	// server start flags
	serverStartCmd.Flags().String("listen", "", fmt.Sprintf("Address to listen on (default from config, %s)", config.DefaultListen))
	serverStartCmd.Flags().Bool("cors", false, "Enable CORS support")
	serverStartCmd.Flags().Int("max-sessions", config.DefaultMaxSessions, "Maximum number of open device sessions")
	serverStartCmd.Flags().BoolP("daemon", "d", false, "Run server in daemon mode (background)")
	serverStartCmd.Flags().String("log-file", "", "Log file for the daemon (default: discard)")

	// server kill flags
	serverKillCmd.Flags().String("listen", "", fmt.Sprintf("Address of server to kill (default from config, %s)", config.DefaultListen))
}
