//go:build !(linux || darwin || freebsd || netbsd || openbsd)

package output

import "os"

func newFileMode() os.FileMode {
	return 0o666
}
