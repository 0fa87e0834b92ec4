package version

import "time"

// set at build time with -ldflags "-X github.com/replicatedhq/pulsar-diag/pkg/version.version=..."
var (
	version   string
	gitSHA    string
	buildTime string
)

var RunAt = time.Now()

func init() {
	initBuild()
}
