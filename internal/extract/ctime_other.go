//go:build !linux

package extract

import (
	"os"
	"time"
)

// ctime falls back to mtime on platforms without a portable change time.
func ctime(st os.FileInfo) time.Time {
	return st.ModTime()
}
