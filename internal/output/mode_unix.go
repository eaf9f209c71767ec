//go:build linux || darwin || freebsd || netbsd || openbsd

package output

import (
	"os"

	"golang.org/x/sys/unix"
)

// newFileMode is the mode os.Create would give a new file: 0666 minus the
// umask. Reading the umask means setting it; qshuf creates no other files
// while a sink is being opened.
func newFileMode() os.FileMode {
	mask := unix.Umask(0)
	unix.Umask(mask)
	return os.FileMode(0o666 &^ mask)
}
