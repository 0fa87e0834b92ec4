package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

var (
	build Build
)

// Build holds details about this build of the binary
type Build struct {
	Version      string     `json:"version,omitempty" yaml:"version,omitempty"`
	GitSHA       string     `json:"git,omitempty" yaml:"git,omitempty"`
	BuildTime    time.Time  `json:"buildTime,omitempty" yaml:"buildTime,omitempty"`
	TimeFallback string     `json:"buildTimeFallback,omitempty" yaml:"buildTimeFallback,omitempty"`
	GoInfo       GoInfo     `json:"go,omitempty" yaml:"go,omitempty"`
	RunAt        *time.Time `json:"runAt,omitempty" yaml:"runAt,omitempty"`
}

type GoInfo struct {
	Version  string `json:"version,omitempty" yaml:"version,omitempty"`
	Compiler string `json:"compiler,omitempty" yaml:"compiler,omitempty"`
	OS       string `json:"os,omitempty" yaml:"os,omitempty"`
	Arch     string `json:"arch,omitempty" yaml:"arch,omitempty"`
}

const moduleName = "github.com/replicatedhq/pulsar-diag"

// initBuild sets up the version info from build args or the main module build info
func initBuild() {
	if version == "" {
		// Its OK if we cannot read the buildinfo, we just won't have a version set
		if bi, ok := debug.ReadBuildInfo(); ok && bi.Main.Path == moduleName && bi.Main.Version != "(devel)" {
			version = bi.Main.Version
		}
	}

	build.Version = version
	if len(gitSHA) >= 7 {
		build.GitSHA = gitSHA[:7]
	}

	var err error
	build.BuildTime, err = time.Parse(time.RFC3339, buildTime)
	if err != nil {
		build.TimeFallback = buildTime
	}

	build.GoInfo = getGoInfo()
	build.RunAt = &RunAt
}

// GetBuild gets the build
func GetBuild() Build {
	return build
}

// Version gets the version
func Version() string {
	return build.Version
}

// GitSHA gets the gitsha
func GitSHA() string {
	return build.GitSHA
}

// BuildTime gets the build time
func BuildTime() time.Time {
	return build.BuildTime
}

func getGoInfo() GoInfo {
	return GoInfo{
		Version:  runtime.Version(),
		Compiler: runtime.Compiler,
		OS:       runtime.GOOS,
		Arch:     runtime.GOARCH,
	}
}

func GetUserAgent() string {
	return fmt.Sprintf("Replicated_PulsarDiag/%s", Version())
}

type versionFile struct {
	Tool  string `yaml:"tool"`
	Build Build  `yaml:"build"`
}

// GetVersionFile renders the build of the running binary for the output directory.
func GetVersionFile() (string, error) {
	b, err := yaml.Marshal(versionFile{
		Tool:  "pulsar-diag",
		Build: GetBuild(),
	})
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal version data")
	}

	return string(b), nil
}
