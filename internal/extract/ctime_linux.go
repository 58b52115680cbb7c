//go:build linux

package extract

import (
	"os"
	"syscall"
	"time"
)

// ctime returns the filesystem change time.
func ctime(st os.FileInfo) time.Time {
	if sys, ok := st.Sys().(*syscall.Stat_t); ok {
		return time.Unix(sys.Ctim.Sec, sys.Ctim.Nsec)
	}
	return st.ModTime()
}
