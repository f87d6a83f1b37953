package report

import (
	"os"
	"runtime"
	"runtime/debug"
)

// Environment captures the audit metadata every report carries, so a stored
// artifact can be tied back to the code and machine that produced it.
type Environment struct {
	Platform    string `json:"platform"`
	GoVersion   string `json:"go_version"`
	CPUCount    int    `json:"cpu_count"`
	Hostname    string `json:"hostname"`
	InContainer bool   `json:"in_container"`
	GitCommit   string `json:"git_commit"`
}

// CaptureEnvironment collects the current process environment.
func CaptureEnvironment() Environment {
	hostname, _ := os.Hostname()
	return Environment{
		Platform:    runtime.GOOS + "/" + runtime.GOARCH,
		GoVersion:   runtime.Version(),
		CPUCount:    runtime.NumCPU(),
		Hostname:    hostname,
		InContainer: detectInContainer(),
		GitCommit:   DetectGitCommit(),
	}
}

// DetectGitCommit resolves the commit the binary was built from. An explicit
// GIT_COMMIT environment variable wins so CI can pin the value; otherwise the
// module build info's VCS revision is used, then "unknown".
func DetectGitCommit() string {
	if commit := os.Getenv("GIT_COMMIT"); commit != "" {
		return commit
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range info.Settings {
			if setting.Key == "vcs.revision" && setting.Value != "" {
				return setting.Value
			}
		}
	}
	return "unknown"
}

func detectInContainer() bool {
	if os.Getenv("CI") == "true" {
		return true
	}
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true
	}
	return false
}
