package cli

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"

	"github.com/mobile-next/adbocr/commands"
	"github.com/mobile-next/adbocr/session"
	"github.com/spf13/cobra"
)

var screenCmd = &cobra.Command{
	Use:   "screen",
	Short: "Screen capture and text recognition",
	Long:  `Commands that capture the device screen, recognize text on it and report screen information.`,
}

var screenTextCmd = &cobra.Command{
	Use:   "text",
	Short: "Print the text recognized on the device screen",
	Long:  `Captures the screen and runs OCR on it. Every hit reports its text and center in screen pixels.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWithSession(cmd, func(ctx context.Context, s *session.Session) *commands.CommandResponse {
			return commands.ScreenTextCommand(ctx, s)
		})
	},
}

var screenshotCmd = &cobra.Command{
	Use:   "screenshot",
	Short: "Take a screenshot of the device",
	Long:  `Takes a screenshot and saves it locally as PNG or JPEG. Use --output - to write the image to stdout.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, s, err := openSession(cmd)
		if err != nil {
			return printError(err)
		}
		defer s.Close()

		response := commands.ScreenshotCommand(ctx, s, commands.ScreenshotRequest{
			Format:     screenshotFormat,
			Quality:    screenshotJpegQuality,
			OutputPath: screenshotOutputPath,
		})

		// Handle stdout output for binary data
		if screenshotOutputPath == "-" && response.Status == "ok" {
			return writeScreenshotToStdout(response)
		}

		return printResponse(response)
	},
}

var screenInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Get device screen info",
	Long:  `Reports the device's window manager size and density together with the session's screen profile.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWithSession(cmd, func(ctx context.Context, s *session.Session) *commands.CommandResponse {
			return commands.DeviceInfoCommand(ctx, s)
		})
	},
}

func writeScreenshotToStdout(response *commands.CommandResponse) error {
	screenshotResp, ok := response.Data.(commands.ScreenshotResponse)
	if !ok || screenshotResp.Data == "" {
		return fmt.Errorf("no image data returned")
	}

	imageBytes, err := base64.StdEncoding.DecodeString(screenshotResp.Data)
	if err != nil {
		return fmt.Errorf("failed to decode image data: %v", err)
	}
	if _, err := os.Stdout.Write(imageBytes); err != nil {
		return fmt.Errorf("failed to write to stdout: %v", err)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(screenCmd)

	screenCmd.AddCommand(screenTextCmd)
	screenCmd.AddCommand(screenshotCmd)
	screenCmd.AddCommand(screenInfoCmd)

	for _, cmd := range []*cobra.Command{screenTextCmd, screenshotCmd, screenInfoCmd} {
		addDeviceFlags(cmd)
	}

	screenshotCmd.Flags().StringVarP(&screenshotOutputPath, "output", "o", "", "Output file path for screenshot (e.g., screen.png, or '-' for stdout)")
	screenshotCmd.Flags().StringVarP(&screenshotFormat, "format", "f", "png", "Output format for screenshot (png or jpeg)")
	screenshotCmd.Flags().IntVarP(&screenshotJpegQuality, "quality", "q", 90, "JPEG quality (1-100, only applies if format is jpeg)")
}
