package types

import "fmt"

// Size represents width and height dimensions.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// IsEmpty reports whether either dimension is non-positive.
func (s Size) IsEmpty() bool {
	return s.Width <= 0 || s.Height <= 0
}

// Contains reports whether (x, y) lies inside [0, Width) x [0, Height).
func (s Size) Contains(x, y int) bool {
	return x >= 0 && y >= 0 && x < s.Width && y < s.Height
}

func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

// PointerCommand is one input event sent to a device. Coordinates are
// native device pixels at dispatch time.
type PointerCommand interface {
	isPointerCommand()
	String() string
}

// Tap is a single touch at (X, Y).
type Tap struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Swipe drags from (X1, Y1) to (X2, Y2) over DurationMs milliseconds.
type Swipe struct {
	X1         int `json:"x1"`
	Y1         int `json:"y1"`
	X2         int `json:"x2"`
	Y2         int `json:"y2"`
	DurationMs int `json:"durationMs"`
}

// Back is the platform back navigation.
type Back struct{}

func (Tap) isPointerCommand()   {}
func (Swipe) isPointerCommand() {}
func (Back) isPointerCommand()  {}

func (t Tap) String() string {
	return fmt.Sprintf("tap(%d,%d)", t.X, t.Y)
}

func (s Swipe) String() string {
	return fmt.Sprintf("swipe(%d,%d -> %d,%d, %dms)", s.X1, s.Y1, s.X2, s.Y2, s.DurationMs)
}

func (Back) String() string {
	return "back"
}
