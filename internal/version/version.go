package version

import (
	"fmt"
	"strconv"
	"strings"
)

// Version values are set at build time using -ldflags.
var Version = "dev"
var Major = "0"
var Minor = "0"
var Patch = "0"
var Built = ""
var GitCommit = ""

type VersionInfo struct {
	Version   string
	Major     int
	Minor     int
	Patch     int
	Built     string
	GitCommit string
}

func GetVersionInfo() VersionInfo {
	return VersionInfo{
		Version:   Version,
		Major:     parseInt(Major),
		Minor:     parseInt(Minor),
		Patch:     parseInt(Patch),
		Built:     Built,
		GitCommit: GitCommit,
	}
}

// String renders the --version line for program.
func String(program string) string {
	info := GetVersionInfo()
	if info.Version == "" || info.Version == "dev" {
		return program + " dev"
	}
	var details []string
	if info.GitCommit != "" {
		details = append(details, "commit "+info.GitCommit)
	}
	if info.Built != "" {
		details = append(details, "built "+info.Built)
	}
	if len(details) == 0 {
		return fmt.Sprintf("%s %s", program, info.Version)
	}
	return fmt.Sprintf("%s %s (%s)", program, info.Version, strings.Join(details, ", "))
}

func parseInt(value string) int {
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return parsed
}
