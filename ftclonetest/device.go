// Package ftclonetest provides a simulated FT232R for tests.
package ftclonetest

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrTimeout is returned by FailAfter transfers.
var ErrTimeout = errors.New("simulated timeout")

// Transfer records one control transfer seen by the device.
type Transfer struct {
	RType, Request uint8
	Value, Index   uint16
}

// Device simulates the EEPROM side of an FT232R over control transfers.
type Device struct {
	Words [64]uint16

	// Genuine makes the device ignore EEPROM writes.
	Genuine bool
	// Locked rejects writes until the unlock request arrives, like a clone
	// that honors the unlock sequence.
	Locked bool
	// ShortRead makes reads return a single byte.
	ShortRead bool
	// FailAfter makes every transfer after the first FailAfter ones fail.
	// Zero disables failures.
	FailAfter int
	// FailWriteTo makes writes to these addresses fail.
	FailWriteTo map[uint16]bool

	Transfers []Transfer
	unlocked  bool
}

// New returns a clone device holding words.
func New(words [64]uint16) *Device {
	return &Device{Words: words}
}

// Writes returns the write transfers in order as address/value pairs.
func (d *Device) Writes() []Transfer {
	var w []Transfer
	for _, t := range d.Transfers {
		if t.Request == 0x91 {
			w = append(w, t)
		}
	}
	return w
}

func (d *Device) Control(rType, request uint8, val, idx uint16, data []byte) (int, error) {
	d.Transfers = append(d.Transfers, Transfer{rType, request, val, idx})
	if d.FailAfter > 0 && len(d.Transfers) > d.FailAfter {
		return 0, ErrTimeout
	}

	switch {
	case rType == 0x40 && request == 0x09:
		if val == 0x77 && idx == 1 {
			d.unlocked = true
		}
		return 0, nil
	case rType == 0xC0 && request == 0x90:
		if int(idx) >= len(d.Words) {
			return 0, fmt.Errorf("stall: read address 0x%x", idx)
		}
		if len(data) < 2 {
			return 0, errors.New("buffer too small")
		}
		binary.LittleEndian.PutUint16(data, d.Words[idx])
		if d.ShortRead {
			return 1, nil
		}
		return 2, nil
	case rType == 0x40 && request == 0x91:
		if d.FailWriteTo[idx] {
			return 0, ErrTimeout
		}
		if int(idx) >= len(d.Words) {
			return 0, fmt.Errorf("stall: write address 0x%x", idx)
		}
		if d.Genuine || (d.Locked && !d.unlocked) {
			return 0, nil
		}
		d.Words[idx] = val
		return 0, nil
	}
	return 0, fmt.Errorf("stall: request type 0x%02x request 0x%02x", rType, request)
}
