package cli

// GlobalFlags holds flags available to all subcommands.
type GlobalFlags struct {
	Config  string `long:"config" description:"Path to config file" default:""`
	JSON    bool   `long:"json" description:"Output in JSON format"`
	Verbose bool   `long:"verbose" description:"Enable verbose output"`
	Version bool   `long:"version" description:"Show version and exit"`
}

// GenerateCommand — write a finished History file to disk.
type GenerateCommand struct {
	Out   string `long:"out" description:"Output path for the History file" default:"History"`
	Weeks int    `long:"weeks" description:"Weeks of history to generate (overrides config default)"`
	Seed  *int64 `long:"seed" description:"Random seed (default: time-based)"`
	Start string `long:"start" description:"Window start, RFC3339 (requires --end)"`
	End   string `long:"end" description:"Window end, RFC3339 (requires --start)"`
	Force bool   `long:"force" description:"Overwrite an existing output file"`

	globals *GlobalFlags
	version string
}

// PreviewCommand — generate in memory and print the most recent visits.
type PreviewCommand struct {
	Weeks int    `long:"weeks" description:"Weeks of history to generate (overrides config default)"`
	Seed  *int64 `long:"seed" description:"Random seed (default: time-based)"`
	Limit int    `long:"limit" description:"Maximum visits to show" default:"20"`

	globals *GlobalFlags
	version string
}

// ServeCommand — run the HTTP generation API.
type ServeCommand struct {
	Host string `long:"host" description:"Override listen host"`
	Port int    `long:"port" description:"Override listen port"`

	globals *GlobalFlags
	version string
}

// InspectCommand — print statistics about an existing History file.
type InspectCommand struct {
	DB string `long:"db" description:"Path to a History file (required)"`

	globals *GlobalFlags
	version string
}
