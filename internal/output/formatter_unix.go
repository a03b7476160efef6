//go:build !windows

package output

import "os"

// enableANSI returns true on Unix-like systems if the file is a terminal
// Colors are supported by default on Unix terminals
func enableANSI(_ *os.File) bool {
	return true
}
