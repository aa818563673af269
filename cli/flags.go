package cli

var (
	verbose    bool
	configPath string

	// device selection, shared by every command that opens a session
	deviceHost    string
	devicePort    int
	deviceSerial  string
	screenWidth   int
	screenHeight  int
	screenDensity int
	noScan        bool

	// for screenshot command
	screenshotOutputPath  string
	screenshotFormat      string
	screenshotJpegQuality int

	// for swipe command
	swipeDurationMs int

	// for devices command
	scanPorts bool
)
