//go:build !unix

package pager

import "os"

// durableFlush commits the given file's data to stable storage.
func durableFlush(f *os.File) error {
	return f.Sync()
}
