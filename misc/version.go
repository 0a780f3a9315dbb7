// Package misc holds build time program information.
package misc

// Set with -ldflags "-X cssstat/misc.version=... -X cssstat/misc.gitHash=..."
var (
	appName = "cssstat"
	version = "dev"
	gitHash = "unknown"
)

func GetAppName() string {
	return appName
}

func GetVersion() string {
	return version
}

func GetGitHash() string {
	return gitHash
}
