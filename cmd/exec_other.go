//go:build !unix

package cmd

import "errors"

var execShell = func(path string, argv, env []string) error {
	return errors.New("replacing the process is not supported on this platform")
}
