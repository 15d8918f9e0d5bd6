package cmd

import (
	"bytes"
	"io"
	"os"
)

// captureOutput captures stdout and stderr during function execution.
func captureOutput(f func()) (stdout, stderr string) {
	oldStdout := os.Stdout
	oldStderr := os.Stderr

	rOut, wOut, _ := os.Pipe()
	rErr, wErr, _ := os.Pipe()
	os.Stdout = wOut
	os.Stderr = wErr

	var bufOut, bufErr bytes.Buffer
	done := make(chan struct{})
	go func() {
		io.Copy(&bufOut, rOut)
		done <- struct{}{}
	}()
	go func() {
		io.Copy(&bufErr, rErr)
		done <- struct{}{}
	}()

	f()

	wOut.Close()
	wErr.Close()
	<-done
	<-done
	os.Stdout = oldStdout
	os.Stderr = oldStderr
	return bufOut.String(), bufErr.String()
}
