package envar

import "os"

const (
	SnapcatVerbose = "SNAPCAT_VERBOSE"
)

func Getenv(key, defaultValue string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultValue
	}
	return val
}
