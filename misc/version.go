// Package misc holds build time information.
package misc

// Set by linker: -ldflags "-X docx2nav/misc.version=... -X docx2nav/misc.githash=..."
var (
	version = "dev"
	githash = "unknown"
	appName = "d2n"
)

func GetAppName() string {
	return appName
}

func GetVersion() string {
	return version
}

func GetGitHash() string {
	return githash
}
