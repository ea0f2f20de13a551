package config

// inject version by '-X' flag
// go build -ldflags "-X github.com/krau/ocw-saver/config.Version=${VERSION}"
var (
	Version   string = "dev"
	BuildTime string = "unknown"
	GitCommit string = "unknown"
)
