package ftclone

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/gousb"
)

const (
	VendorID = 0x0403 // FTDI

	// [DS_FT232R|8.1 Default Values] bcdDevice 0x0600 identifies the FT232R.
	deviceVersionMajor = "06"
)

// Product IDs that may be an FT232R: the stock one, and zero as left
// behind by the hostile driver.
var productIDs = []uint16{ProductIDFT232R, 0x0000}

// DefaultTimeout bounds each control transfer.
const DefaultTimeout = 100 * time.Millisecond

// Candidate is the identity of a device on the bus.
type Candidate struct {
	Vendor  uint16
	Product uint16
	Version string // bcdDevice as "MM.mm"
}

func (c Candidate) String() string {
	return fmt.Sprintf("%04x:%04x v%s", c.Vendor, c.Product, c.Version)
}

// Match reports whether c looks like an FT232R.
func Match(c Candidate) bool {
	if c.Vendor != VendorID {
		return false
	}
	pidOK := false
	for _, pid := range productIDs {
		if c.Product == pid {
			pidOK = true
			break
		}
	}
	major, _, _ := strings.Cut(c.Version, ".")
	return pidOK && major == deviceVersionMajor
}

func versionString(bcd gousb.BCD) string {
	return fmt.Sprintf("%02x.%02x", uint16(bcd)>>8, uint16(bcd)&0xff)
}

func candidateOf(desc *gousb.DeviceDesc) Candidate {
	return Candidate{
		Vendor:  uint16(desc.Vendor),
		Product: uint16(desc.Product),
		Version: versionString(desc.Device),
	}
}

// selectOne enforces that exactly one candidate matched.
func selectOne(found int) error {
	if found != 1 {
		return &PreconditionError{Found: found}
	}
	return nil
}

// Device is an open FT232R candidate.
type Device struct {
	USB       *gousb.Device
	EEPROM    *EEPROM
	Candidate Candidate

	ctx *gousb.Context
}

// Open finds the single FT232R candidate on the bus and opens it. Zero or
// several candidates yield a *PreconditionError.
func Open(timeout time.Duration) (*Device, error) {
	ctx := gousb.NewContext()

	var matched []Candidate
	devs, err := ctx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		c := candidateOf(desc)
		if !Match(c) {
			return false
		}
		matched = append(matched, c)
		return true
	})
	closeAll := func() {
		for _, d := range devs {
			d.Close()
		}
		ctx.Close()
	}

	if err := selectOne(len(matched)); err != nil {
		closeAll()
		return nil, err
	}
	if err != nil || len(devs) != 1 {
		closeAll()
		if err == nil {
			err = fmt.Errorf("device %s matched but could not be opened", matched[0])
		}
		return nil, &TransportError{Op: "open", Addr: -1, Err: err}
	}

	usb := devs[0]
	usb.ControlTimeout = timeout
	return &Device{
		USB:       usb,
		EEPROM:    NewEEPROM(usb),
		Candidate: matched[0],
		ctx:       ctx,
	}, nil
}

func (d *Device) Close() error {
	err := d.USB.Close()
	if cerr := d.ctx.Close(); err == nil {
		err = cerr
	}
	return err
}
