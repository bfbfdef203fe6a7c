// Package version carries the SDK release identifier and build metadata.
package version

import "runtime"

const Version = "0.1.2"

// Commit is set at build time via
// -ldflags "-X github.com/appnigma/go-integrations-client/version.Commit=$(git rev-parse --short HEAD)".
var Commit = "dev"

type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	GoVersion string `json:"goVersion"`
	Platform  string `json:"platform"`
}

func Get() Info {
	return Info{
		Version:   Version,
		Commit:    Commit,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// UserAgent is the default User-Agent sent by the client.
func UserAgent() string {
	return "appnigma-integrations-client-go/" + Version
}
