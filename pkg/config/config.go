package config

// this holds the resolved configuration values from CLI
//
//nolint:lll // readablity
var (
	LogLevel        string // sets the log level (zap log level values)
	LogFormat       string // text vs json
	LogFilter       string // zapfilter rules, for example "debug:race info+:*"
	OddsFile        string // path to odds file (yaml), empty means default odds
	EnableTelemetry bool   // enable telemetry (metrics are written to stderr)
	TelemetryPeriod string // export interval for telemetry data
)

// Config holds the race and betting parameters which are used by the commands
type Config struct {
	StartBalance   int64 // tokens at the start of a session
	FinishDistance int   // length of the track
	MinStep        int   // minimum step per tick
	MaxStep        int   // maximum step per tick
	WinningRank    int   // finishing rank required to win a bet
	Seed           int64 // 0 means random
}
