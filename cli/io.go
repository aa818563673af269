package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/mobile-next/adbocr/commands"
	"github.com/mobile-next/adbocr/session"
	"github.com/mobile-next/adbocr/types"
	"github.com/spf13/cobra"
)

const defaultSwipeDurationMs = 300

var ioCmd = &cobra.Command{
	Use:   "io",
	Short: "Input operations with devices",
	Long:  `Perform input operations like tapping, swiping, pressing back and tapping recognized text. Coordinates are logical when --width and --height are set.`,
}

var ioTapCmd = &cobra.Command{
	Use:   "tap [x,y]",
	Short: "Tap on a device screen at the given coordinates",
	Long:  `Sends a tap event to the device at the given x,y coordinates. Coordinates should be provided as a single string "x,y".`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		coords, err := parseCoordinates(args[0], 2)
		if err != nil {
			return printError(err)
		}

		return runWithSession(cmd, func(ctx context.Context, s *session.Session) *commands.CommandResponse {
			if err := commands.EnsureCapture(ctx, s); err != nil {
				return commands.NewErrorResponse(err)
			}
			return commands.TapCommand(ctx, s, commands.TapRequest{X: coords[0], Y: coords[1]})
		})
	},
}

var ioSwipeCmd = &cobra.Command{
	Use:   "swipe [x1,y1,x2,y2]",
	Short: "Swipe on a device screen",
	Long:  `Sends a swipe gesture from x1,y1 to x2,y2. Coordinates should be provided as a single string "x1,y1,x2,y2".`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		coords, err := parseCoordinates(args[0], 4)
		if err != nil {
			return printError(err)
		}
		if err := validateSwipeDuration(swipeDurationMs); err != nil {
			return printError(err)
		}

		return runWithSession(cmd, func(ctx context.Context, s *session.Session) *commands.CommandResponse {
			if err := commands.EnsureCapture(ctx, s); err != nil {
				return commands.NewErrorResponse(err)
			}
			return commands.SwipeCommand(ctx, s, commands.SwipeRequest{
				X1:         coords[0],
				Y1:         coords[1],
				X2:         coords[2],
				Y2:         coords[3],
				DurationMs: swipeDurationMs,
			})
		})
	},
}

var ioBackCmd = &cobra.Command{
	Use:   "back",
	Short: "Press the back button",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWithSession(cmd, func(ctx context.Context, s *session.Session) *commands.CommandResponse {
			return commands.BackCommand(ctx, s)
		})
	},
}

var ioClickTextCmd = &cobra.Command{
	Use:   "click-text [text]",
	Short: "Tap the first on-screen text containing the given string",
	Long:  `Captures the screen, runs OCR and taps the center of the first recognized text that contains the argument, ignoring case.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWithSession(cmd, func(ctx context.Context, s *session.Session) *commands.CommandResponse {
			return commands.ClickTextCommand(ctx, s, commands.ClickTextRequest{Text: args[0]})
		})
	},
}

// parseCoordinates splits "a,b,..." into exactly n integers.
func parseCoordinates(value string, n int) ([]int, error) {
	parts := strings.Split(value, ",")
	if len(parts) != n {
		return nil, fmt.Errorf("invalid coordinate format. Expected %d comma separated integers, got '%s'", n, value)
	}

	coords := make([]int, n)
	for i, part := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid coordinate value '%s'. Coordinates must be integers", part)
		}
		coords[i] = v
	}
	return coords, nil
}

// validateSwipeDuration rejects a bad --duration before any device is
// contacted.
func validateSwipeDuration(durationMs int) error {
	if durationMs <= 0 {
		return fmt.Errorf("%w: swipe duration must be positive, got %dms", types.ErrInvalidConfig, durationMs)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(ioCmd)

	// add io subcommands
	ioCmd.AddCommand(ioTapCmd)
	ioCmd.AddCommand(ioSwipeCmd)
	ioCmd.AddCommand(ioBackCmd)
	ioCmd.AddCommand(ioClickTextCmd)

	for _, cmd := range []*cobra.Command{ioTapCmd, ioSwipeCmd, ioBackCmd, ioClickTextCmd} {
		addDeviceFlags(cmd)
	}

	ioSwipeCmd.Flags().IntVar(&swipeDurationMs, "duration", defaultSwipeDurationMs, "swipe duration in milliseconds")
}
