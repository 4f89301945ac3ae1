// Package xbrowser opens the watch preview.
package xbrowser

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/pkg/browser"

	"oss.terrastruct.com/xos"
)

// Disabled is the $BROWSER value that turns opening off.
const Disabled = "0"

// OpenURL opens url with the command in $BROWSER, or the system default
// browser when it is unset. It does nothing when $BROWSER is Disabled.
func OpenURL(ctx context.Context, env *xos.Env, url string) error {
	cmd := env.Getenv("BROWSER")
	switch cmd {
	case Disabled:
		return nil
	case "":
		return browser.OpenURL(url)
	}
	c := exec.CommandContext(ctx, "sh", "-c", cmd+` "$1"`, "--", url)
	out, err := c.CombinedOutput()
	if err != nil {
		return fmt.Errorf("failed to run $BROWSER %q (out: %q): %w", cmd, out, err)
	}
	return nil
}
