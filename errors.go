package ftclone

import (
	"errors"
	"fmt"
)

var (
	ErrNoDevice        = errors.New("no devices found")
	ErrMultipleDevices = errors.New("more than one device found, please connect only one FTDI device")
)

// PreconditionError reports that the bus did not hold exactly one matching device.
type PreconditionError struct {
	Found int
}

func (e *PreconditionError) Error() string {
	if e.Found == 0 {
		return ErrNoDevice.Error()
	}
	return fmt.Sprintf("%v (found %d)", ErrMultipleDevices, e.Found)
}

func (e *PreconditionError) Is(target error) bool {
	switch target {
	case ErrNoDevice:
		return e.Found == 0
	case ErrMultipleDevices:
		return e.Found > 1
	}
	return false
}

// TransportError wraps a failed or timed out control transfer.
type TransportError struct {
	Op   string // open, unlock, read, write
	Addr int    // EEPROM word address, -1 for open and unlock
	Err  error
}

func (e *TransportError) Error() string {
	if e.Addr < 0 {
		return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("eeprom %s at 0x%02x failed: %v", e.Op, e.Addr, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ProtocolError indicates a read returned fewer bytes than a word.
type ProtocolError struct {
	Addr int
	Got  int
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("eeprom read at 0x%02x: short response (%d of 2 bytes)", e.Addr, e.Got)
}
