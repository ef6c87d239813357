//go:build unix

package pager

import (
	"os"

	"golang.org/x/sys/unix"
)

// durableFlush commits the given file's data to stable storage. On unix it
// prefers Fdatasync, which skips the inode-metadata sync os.File.Sync
// performs and is cheaper for the write-page-then-flush pattern every
// mutating Pager call goes through.
func durableFlush(f *os.File) error {
	if err := unix.Fdatasync(int(f.Fd())); err != nil {
		return f.Sync()
	}
	return nil
}
