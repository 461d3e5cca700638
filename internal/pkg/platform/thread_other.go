//go:build !linux

package platform

import (
	"errors"
	"runtime"
)

const pinSupported = false

var errPinUnavailable = errors.New("cpu affinity unavailable on " + runtime.GOOS)

func pinCurrentThread(int) error {
	return errPinUnavailable
}
