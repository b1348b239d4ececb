//go:build windows

package cmd

import "os"

// shutdownSignals returns the OS signals that cancel a running command.
func shutdownSignals() []os.Signal {
	return []os.Signal{os.Interrupt}
}
