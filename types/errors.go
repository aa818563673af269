package types

import "errors"

var (
	// ErrConnection means the transport could not be established at load time.
	ErrConnection = errors.New("connection error")
	// ErrTransport means a device command round-trip failed after connecting.
	ErrTransport = errors.New("transport error")
	// ErrDecode means the captured image payload could not be decoded.
	ErrDecode = errors.New("decode error")
	// ErrRecognition means the OCR engine failed or rejected the input.
	ErrRecognition = errors.New("recognition error")
	// ErrInvalidConfig means a caller-supplied configuration value is invalid.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrInvalidCoordinate means computed native coordinates are off screen.
	ErrInvalidCoordinate = errors.New("invalid coordinate")
	// ErrNoCaptureAvailable means native dimensions are unknown because no
	// capture has been taken yet.
	ErrNoCaptureAvailable = errors.New("no capture available")
	// ErrTextNotFound means no recognized text matched a lookup.
	ErrTextNotFound = errors.New("text not found")
)

var errorKinds = []struct {
	err  error
	kind string
}{
	{ErrConnection, "connection"},
	{ErrTransport, "transport"},
	{ErrDecode, "decode"},
	{ErrRecognition, "recognition"},
	{ErrInvalidConfig, "invalid_config"},
	{ErrInvalidCoordinate, "invalid_coordinate"},
	{ErrNoCaptureAvailable, "no_capture_available"},
	{ErrTextNotFound, "text_not_found"},
}

// ErrorKind returns the short kind name of the sentinel wrapped by err, or
// "internal" when err wraps none of them. A nil error has no kind.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}

	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}

	return "internal"
}
