// Package env reads the environment variables that configure structview
// outside of flags.
package env

import (
	"os"
	"strconv"
)

func Debug() bool {
	return os.Getenv("STRUCTVIEW_DEBUG") != "" || os.Getenv("DEBUG") != ""
}

// Timeout returns $STRUCTVIEW_TIMEOUT in seconds when it is a valid integer.
func Timeout() (int, bool) {
	n, err := strconv.Atoi(os.Getenv("STRUCTVIEW_TIMEOUT"))
	if err != nil {
		return 0, false
	}
	return n, true
}

// ThemeBase is where relative theme URLs are resolved, for serving
// prebuilt themes when running offline.
func ThemeBase() string {
	return os.Getenv("STRUCTVIEW_THEME_BASE")
}
