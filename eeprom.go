package ftclone

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// Controller issues USB control transfers. *gousb.Device implements it.
type Controller interface {
	Control(rType, request uint8, val, idx uint16, data []byte) (int, error)
}

// Control request types (bmRequestType): vendor request to the device.
const (
	reqTypeVendorOut = 0x40 // host-to-device | vendor | device
	reqTypeVendorIn  = 0xC0 // device-to-host | vendor | device
)

// FT232R vendor requests for the configuration EEPROM.
// These are not documented by FTDI; they match what libftdi issues.
const (
	eepromCmdUnlock = 0x09 // latency-timer request, doubles as EEPROM write unlock
	eepromCmdRead   = 0x90
	eepromCmdWrite  = 0x91

	eepromUnlockValue = 0x0077
	eepromUnlockIndex = 1
)

// EEPROM layout of the FT232R (64 words).
const (
	EEPROMWords = 0x40

	AddrProductID = 0x02
	AddrUser      = 0x3E // last free word, used as the write probe target
	AddrChecksum  = 0x3F
)

// Image is the full 64-word configuration EEPROM.
type Image [EEPROMWords]uint16

// ProductID returns the USB product ID word.
func (img *Image) ProductID() uint16 { return img[AddrProductID] }

// Valid reports whether the stored checksum matches the computed one.
func (img *Image) Valid() bool { return Checksum(img) == img[AddrChecksum] }

// String formats the image as 8 words per line.
func (img *Image) String() string {
	var b strings.Builder
	for i := 0; i < EEPROMWords; i += 8 {
		b.WriteString(" ")
		for _, w := range img[i : i+8] {
			fmt.Fprintf(&b, " %04x", w)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// EEPROM reads and writes FT232R configuration memory words.
type EEPROM struct {
	ctrl Controller

	// Tracef, when set, is called for every control transfer.
	Tracef func(format string, a ...any)
}

func NewEEPROM(c Controller) *EEPROM {
	return &EEPROM{ctrl: c}
}

func (e *EEPROM) tracef(format string, a ...any) {
	if e.Tracef != nil {
		e.Tracef(format, a...)
	}
}

func checkAddr(addr int) error {
	if addr < 0 || addr >= EEPROMWords {
		return fmt.Errorf("address 0x%X out of EEPROM range", addr)
	}
	return nil
}

// Unlock enables EEPROM writes. It must precede any Write.
func (e *EEPROM) Unlock() error {
	e.tracef("unlock")
	if _, err := e.ctrl.Control(reqTypeVendorOut, eepromCmdUnlock, eepromUnlockValue, eepromUnlockIndex, nil); err != nil {
		return &TransportError{Op: "unlock", Addr: -1, Err: err}
	}
	return nil
}

// Read returns the word at addr.
func (e *EEPROM) Read(addr int) (uint16, error) {
	if err := checkAddr(addr); err != nil {
		return 0, err
	}
	buf := make([]byte, 2)
	n, err := e.ctrl.Control(reqTypeVendorIn, eepromCmdRead, 0, uint16(addr), buf)
	if err != nil {
		return 0, &TransportError{Op: "read", Addr: addr, Err: err}
	}
	if n < len(buf) {
		return 0, &ProtocolError{Addr: addr, Got: n}
	}
	v := binary.LittleEndian.Uint16(buf)
	e.tracef("read  0x%02x = %04x", addr, v)
	return v, nil
}

// Write stores v at addr. The chip does not acknowledge writes; genuine
// parts silently drop them, so only a read-back tells whether it landed.
func (e *EEPROM) Write(addr int, v uint16) error {
	if err := checkAddr(addr); err != nil {
		return err
	}
	e.tracef("write 0x%02x = %04x", addr, v)
	if _, err := e.ctrl.Control(reqTypeVendorOut, eepromCmdWrite, v, uint16(addr), nil); err != nil {
		return &TransportError{Op: "write", Addr: addr, Err: err}
	}
	return nil
}

// ReadImage reads all 64 words in address order.
func (e *EEPROM) ReadImage() (img Image, err error) {
	for addr := range img {
		if img[addr], err = e.Read(addr); err != nil {
			return img, err
		}
	}
	return img, nil
}
