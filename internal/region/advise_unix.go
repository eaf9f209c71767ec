//go:build linux || darwin || freebsd || netbsd || openbsd

package region

import (
	"golang.org/x/sys/unix"
)

func advise(b []byte, a Advice) error {
	if len(b) == 0 {
		return nil
	}
	switch a {
	case AdviceRandom:
		return unix.Madvise(b, unix.MADV_RANDOM)
	case AdviceSequential:
		return unix.Madvise(b, unix.MADV_SEQUENTIAL)
	default:
		return unix.Madvise(b, unix.MADV_NORMAL)
	}
}
