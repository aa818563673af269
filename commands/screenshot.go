package commands

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mobile-next/adbocr/session"
	"github.com/mobile-next/adbocr/utils"
)

// ScreenshotRequest represents the parameters for taking a screenshot
type ScreenshotRequest struct {
	Format     string `json:"format,omitempty"`     // "png" or "jpeg"
	Quality    int    `json:"quality,omitempty"`    // 1-100, only used for JPEG
	OutputPath string `json:"outputPath,omitempty"` // file path, "-" for base64 data, or empty for default naming
}

// ScreenshotResponse represents the response for a screenshot command
type ScreenshotResponse struct {
	Format   string `json:"format"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Data     string `json:"data,omitempty"`     // base64 encoded image data
	FilePath string `json:"filePath,omitempty"` // path where file was saved
}

// ScreenshotCommand takes a screenshot of the session's device. It also
// refreshes the native size used for coordinate conversion.
func ScreenshotCommand(ctx context.Context, s *session.Session, req ScreenshotRequest) *CommandResponse {
	if req.Format == "" {
		req.Format = "png"
	}

	req.Format = strings.ToLower(req.Format)
	if req.Format == "jpg" {
		req.Format = "jpeg"
	}
	if req.Format != "png" && req.Format != "jpeg" {
		return NewErrorResponse(fmt.Errorf("invalid format '%s'. Supported formats are 'png' and 'jpeg'", req.Format))
	}

	capture, err := s.Capture(ctx)
	if err != nil {
		return NewErrorResponse(fmt.Errorf("error taking screenshot: %w", err))
	}

	// screencap already produces png
	imageBytes := capture.Encoded
	if req.Format == "jpeg" {
		imageBytes, err = utils.EncodeImage(capture.Image, "jpeg", req.Quality)
		if err != nil {
			return NewErrorResponse(fmt.Errorf("error converting to JPEG: %v", err))
		}
	}

	response := ScreenshotResponse{
		Format: req.Format,
		Width:  capture.Width,
		Height: capture.Height,
	}

	if req.OutputPath == "-" {
		response.Data = base64.StdEncoding.EncodeToString(imageBytes)
		return NewSuccessResponse(response)
	}

	finalPath, err := screenshotPath(req.OutputPath, s.ID(), req.Format)
	if err != nil {
		return NewErrorResponse(err)
	}

	if err := os.WriteFile(finalPath, imageBytes, 0o600); err != nil {
		return NewErrorResponse(fmt.Errorf("error writing file: %v", err))
	}

	response.FilePath = finalPath
	return NewSuccessResponse(response)
}

func screenshotPath(outputPath, deviceID, format string) (string, error) {
	if outputPath != "" {
		finalPath, err := filepath.Abs(outputPath)
		if err != nil {
			return "", fmt.Errorf("invalid output path: %v", err)
		}
		return finalPath, nil
	}

	timestamp := time.Now().Format("20060102150405")
	safeDeviceID := strings.ReplaceAll(deviceID, ":", "_")
	extension := "png"
	if format == "jpeg" {
		extension = "jpg"
	}
	fileName := fmt.Sprintf("screenshot-%s-%s.%s", safeDeviceID, timestamp, extension)

	finalPath, err := filepath.Abs("./" + fileName)
	if err != nil {
		return "", fmt.Errorf("error creating default path: %v", err)
	}
	return finalPath, nil
}
