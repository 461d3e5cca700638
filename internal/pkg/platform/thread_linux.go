//go:build linux

package platform

import (
	"errors"

	"golang.org/x/sys/unix"
)

const pinSupported = true

var errPinUnavailable = errors.New("cpu affinity unavailable")

func pinCurrentThread(cpu int) error {
	var set unix.CPUSet
	set.Zero()
	set.Set(cpu)
	return unix.SchedSetaffinity(0, &set)
}
