package ftclone

// Confirmation strings. Matching is exact and case-sensitive.
const (
	ConfirmRestoreProductID = "YES"
	ConfirmCorruptChecksum  = "CORRUPTME"
	ConfirmRestoreChecksum  = "FIXME"
)

const (
	ProductIDFT232R = 0x6001

	// Sentinels written over the checksum to invalidate it. The second is
	// used when the first is already stored, so the write is never a no-op.
	ChecksumSentinel    = 0xDEAD
	ChecksumSentinelAlt = 0xBEEF
)

// Stage is the remediation step awaiting confirmation.
type Stage int

const (
	StageRestoreProductID Stage = iota
	StageCorruptChecksum
	StageRestoreChecksum
	StageDone
)

func (s Stage) String() string {
	switch s {
	case StageRestoreProductID:
		return "restore product ID"
	case StageCorruptChecksum:
		return "corrupt checksum"
	case StageRestoreChecksum:
		return "restore checksum"
	case StageDone:
		return "done"
	}
	return "unknown"
}

// Confirmation returns the answer that accepts the stage.
func (s Stage) Confirmation() string {
	switch s {
	case StageRestoreProductID:
		return ConfirmRestoreProductID
	case StageCorruptChecksum:
		return ConfirmCorruptChecksum
	case StageRestoreChecksum:
		return ConfirmRestoreChecksum
	}
	return ""
}

// WordWrite is a single EEPROM word to store.
type WordWrite struct {
	Addr  int
	Value uint16
}

// Outcome is the effect of answering a stage.
type Outcome struct {
	Stage   Stage // the stage that was answered
	Aborted bool  // answer did not match; nothing is written
	Writes  []WordWrite

	// UserWordCleared is set by StageRestoreProductID when the forged
	// user word is zero, i.e. the driver's change to it was exactly undone.
	UserWordCleared bool

	// Reconnect is set whenever Writes is non-empty: the device only picks
	// up the new EEPROM contents after re-enumeration.
	Reconnect bool
}

// Remediator walks the remediation stages for a clone. It performs no
// I/O: callers prompt for Stage, pass the answer to Confirm and apply the
// returned writes.
type Remediator struct {
	img   Image
	check uint16
	stage Stage
}

// NewRemediator starts remediation for d. Genuine devices get a
// Remediator that is already done.
func NewRemediator(d *Detection) *Remediator {
	r := &Remediator{img: d.Image, check: d.Checksum}
	switch {
	case d.State != StateClone:
		r.stage = StageDone
	case !d.Valid:
		r.stage = StageRestoreChecksum
	case d.Image[AddrProductID] == 0:
		r.stage = StageRestoreProductID
	default:
		r.stage = StageCorruptChecksum
	}
	return r
}

func (r *Remediator) Stage() Stage { return r.stage }

func (r *Remediator) Done() bool { return r.stage == StageDone }

// Image returns the in-memory image including confirmed changes.
func (r *Remediator) Image() Image { return r.img }

// Confirm answers the current stage and advances. Any answer other than
// the stage's confirmation string aborts the session.
func (r *Remediator) Confirm(answer string) Outcome {
	out := Outcome{Stage: r.stage}
	if r.stage == StageDone {
		out.Aborted = true
		return out
	}
	if answer != r.stage.Confirmation() {
		out.Aborted = true
		r.stage = StageDone
		return out
	}

	switch r.stage {
	case StageRestoreProductID:
		r.img[AddrProductID] = ProductIDFT232R
		r.img[AddrUser] = Forge(&r.img)
		out.Writes = []WordWrite{
			{AddrProductID, r.img[AddrProductID]},
			{AddrUser, r.img[AddrUser]},
		}
		out.UserWordCleared = r.img[AddrUser] == 0
		// The forged image is still valid, so the checksum can be corrupted next.
		r.stage = StageCorruptChecksum
	case StageCorruptChecksum:
		v := uint16(ChecksumSentinel)
		if r.img[AddrChecksum] == ChecksumSentinel {
			v = ChecksumSentinelAlt
		}
		r.img[AddrChecksum] = v
		out.Writes = []WordWrite{{AddrChecksum, v}}
		r.stage = StageDone
	case StageRestoreChecksum:
		r.img[AddrChecksum] = r.check
		out.Writes = []WordWrite{{AddrChecksum, r.check}}
		r.stage = StageDone
	}
	out.Reconnect = len(out.Writes) > 0
	return out
}

// Apply stores the outcome's writes in order. The image is not read back.
func (e *EEPROM) Apply(out Outcome) error {
	for _, w := range out.Writes {
		if err := e.Write(w.Addr, w.Value); err != nil {
			return err
		}
	}
	return nil
}
