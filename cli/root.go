package cli

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/mobile-next/adbocr/config"
	"github.com/mobile-next/adbocr/daemon"
	"github.com/mobile-next/adbocr/devices"
	_ "github.com/mobile-next/adbocr/ocr/tesseract"
	"github.com/mobile-next/adbocr/utils"
	"github.com/spf13/cobra"
)

const version = "dev"

// ConfigEnvVar carries the absolute config path into a daemon child, whose
// working directory is "/".
const ConfigEnvVar = "ADBOCR_CONFIG"

var shutdownHook = devices.NewShutdownHook()

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "adbocr",
	Short: "Drive an Android device over adb and read its screen with OCR",
	Long:  `Connects to an Android device or emulator through adb, taps and swipes in a configurable logical coordinate space, and extracts on-screen text with Tesseract.`,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func initConfig() {
	utils.SetVerbose(verbose)
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (default ~/.adbocr/config.ini)")
}

// SetShutdownHook replaces the hook sessions and servers register their
// cleanup with.
func SetShutdownHook(hook *devices.ShutdownHook) {
	shutdownHook = hook
}

// Execute runs the root command
func Execute() error {
	// enable microseconds in logs
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	return rootCmd.Execute()
}

// loadConfig reads the config file named by --config, the daemon
// environment or the default location, in that order.
func loadConfig() (*config.Config, error) {
	path := configPath
	if daemon.IsChild() && os.Getenv(ConfigEnvVar) != "" {
		path = os.Getenv(ConfigEnvVar)
	}
	if path == "" {
		path = config.DefaultPath()
	}
	return config.Load(path)
}

// printJson is a helper function to print JSON responses
func printJson(data interface{}) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(string(jsonData))
}
