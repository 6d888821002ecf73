package ftclone

// State is the progress of a clone detection run.
type State int

const (
	StateStart State = iota
	StateProbeWritten
	StateProbeVerified
	StateGenuine
	StateClone
)

func (s State) String() string {
	switch s {
	case StateStart:
		return "start"
	case StateProbeWritten:
		return "probe written"
	case StateProbeVerified:
		return "probe verified"
	case StateGenuine:
		return "genuine"
	case StateClone:
		return "clone"
	}
	return "unknown"
}

// Detection is the result of probing a device.
type Detection struct {
	State State

	Image    Image  // as read before the probe
	Checksum uint16 // computed over Image
	Valid    bool   // Checksum matches the stored word

	ProbeOld  uint16 // user word before the probe
	ProbeNew  uint16 // value written by the probe
	ProbeRead uint16 // user word read back after the probe

	// RestoreErr is set when writing ProbeOld back after an accepted probe
	// failed. The run still classifies the device as a clone.
	RestoreErr error
}

// Genuine reports whether the device ignored the probe write.
func (d *Detection) Genuine() bool { return d.State == StateGenuine }

// Detector classifies a device as genuine or clone by checking whether
// it accepts an EEPROM write. Genuine FT232R silicon ignores writes to
// the user word; clones store them.
type Detector struct {
	EEPROM *EEPROM

	// OnState, when set, is called after every state transition.
	OnState func(*Detection)
}

func (dt *Detector) enter(d *Detection, s State) {
	d.State = s
	if dt.OnState != nil {
		dt.OnState(d)
	}
}

// Detect runs the probe. A transport or protocol error aborts the run;
// the partially filled Detection is returned along with it.
func (dt *Detector) Detect() (*Detection, error) {
	e := dt.EEPROM
	d := &Detection{}

	if err := e.Unlock(); err != nil {
		return d, err
	}
	img, err := e.ReadImage()
	if err != nil {
		return d, err
	}
	d.Image = img
	d.Checksum = Checksum(&img)
	d.Valid = d.Checksum == img[AddrChecksum]
	dt.enter(d, StateStart)

	if d.ProbeOld, err = e.Read(AddrUser); err != nil {
		return d, err
	}
	d.ProbeNew = d.ProbeOld + 1
	if err := e.Write(AddrUser, d.ProbeNew); err != nil {
		return d, err
	}
	dt.enter(d, StateProbeWritten)

	if d.ProbeRead, err = e.Read(AddrUser); err != nil {
		return d, err
	}
	dt.enter(d, StateProbeVerified)

	if d.ProbeRead == d.ProbeOld {
		dt.enter(d, StateGenuine)
		return d, nil
	}

	d.RestoreErr = e.Write(AddrUser, d.ProbeOld)
	dt.enter(d, StateClone)
	return d, nil
}
