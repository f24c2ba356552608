package logger

// Config holds the logger settings.
type Config struct {
	// Level is one of debug, info, warn or error.
	Level string `mapstructure:"level" default:"info"`
	// Format is console or json.
	Format string `mapstructure:"format" default:"console"`
	// File, when set, also writes JSON logs to a rotated file at this path.
	File string `mapstructure:"file" default:""`
}
