package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/gentam/ftclone"
)

const rule = "===================================================================="

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Probe the device and offer remediation (default)",
	Args:  cobra.NoArgs,
	RunE:  runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	d, err := openDevice(cmd)
	if err != nil {
		return err
	}
	defer d.Close()

	con := newConsole(cmd.InOrStdin(), cmd.OutOrStdout(), isTerminal(os.Stdin))
	return check(d.EEPROM, con)
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// console reads line answers. Pauses are only shown to a terminal.
type console struct {
	in          *bufio.Reader
	out         io.Writer
	interactive bool
}

func newConsole(in io.Reader, out io.Writer, interactive bool) *console {
	return &console{in: bufio.NewReader(in), out: out, interactive: interactive}
}

func (c *console) printf(format string, a ...any) {
	fmt.Fprintf(c.out, format, a...)
}

// prompt returns the next line without its line ending. EOF reads as an
// empty answer.
func (c *console) prompt() (string, error) {
	c.printf("> ")
	line, err := c.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (c *console) pause(msg string) {
	if !c.interactive {
		return
	}
	c.printf("%s\n", msg)
	c.in.ReadString('\n')
}

// check runs detection on e and walks the user through remediation.
func check(e *ftclone.EEPROM, c *console) error {
	dt := &ftclone.Detector{EEPROM: e, OnState: func(d *ftclone.Detection) { reportState(c, d) }}
	d, err := dt.Detect()
	if err != nil {
		return err
	}

	if d.Genuine() {
		c.printf("Chip is GENUINE or a more accurate clone. EEPROM write failed.\n")
		c.printf("Nothing else to do.\n")
		return nil
	}

	c.printf("%s\n", rule)
	c.printf("Chip is a CLONE or not an FT232RL. EEPROM write succeeded.\n")

	r := ftclone.NewRemediator(d)
	for !r.Done() {
		stage := r.Stage()
		c.printf("%s\n", rule)
		c.printf("%s", stageText[stage])
		c.printf(" - Type %s (all caps) to %s.\n", stage.Confirmation(), stageAction[stage])
		c.printf(" - Type anything else (or just press enter) to exit.\n")

		answer, err := c.prompt()
		if err != nil {
			return err
		}
		out := r.Confirm(answer)
		if out.Aborted {
			c.printf("%s\n", abortText[stage])
			return nil
		}
		if err := e.Apply(out); err != nil {
			return err
		}
		reportOutcome(c, out)
	}
	return nil
}

func reportState(c *console, d *ftclone.Detection) {
	switch d.State {
	case ftclone.StateStart:
		c.printf("EEPROM contents:\n%s", d.Image.String())
		if d.Valid {
			c.printf("  EEPROM checksum: %04x (correct)\n", d.Image[ftclone.AddrChecksum])
		} else {
			c.printf("  EEPROM checksum: %04x (incorrect, expected %04x)\n", d.Image[ftclone.AddrChecksum], d.Checksum)
		}
		c.printf("Detecting clone chip...\n")
		c.printf("  Current EEPROM value at 0x3e: %04x\n", d.Image[ftclone.AddrUser])
	case ftclone.StateProbeWritten:
		c.printf("  Writing value: %04x\n", d.ProbeNew)
	case ftclone.StateProbeVerified:
		c.printf("  New EEPROM value at 0x3e: %04x\n", d.ProbeRead)
	case ftclone.StateClone:
		c.printf("  Reverting value: %04x\n", d.ProbeOld)
		if d.RestoreErr != nil {
			c.printf("  Reverting failed: %v\n", d.RestoreErr)
		}
	}
}

func reportOutcome(c *console, out ftclone.Outcome) {
	switch out.Stage {
	case ftclone.StageRestoreProductID:
		if out.UserWordCleared {
			c.printf("Product ID restored to 0x6001. All changes made by FTDI's driver\n")
			c.printf("have been reverted.\n")
		} else {
			c.printf("%s", userWordNotice)
		}
		c.pause("Press enter to continue.")
	case ftclone.StageCorruptChecksum:
		c.printf("EEPROM checksum corrupted. Run this tool again to revert the change.\n")
		c.printf("Disconnect and reconnect your device for the changes to take effect.\n")
		c.pause("Press enter to exit.")
	case ftclone.StageRestoreChecksum:
		c.printf("EEPROM checksum corrected. Disconnect and reconnect your device for\n")
		c.printf("the changes to take effect.\n")
		c.pause("Press enter to exit.")
	}
}

var stageAction = map[ftclone.Stage]string{
	ftclone.StageRestoreProductID: "continue",
	ftclone.StageCorruptChecksum:  "set an invalid EEPROM checksum",
	ftclone.StageRestoreChecksum:  "restore your EEPROM checksum",
}

var abortText = map[ftclone.Stage]string{
	ftclone.StageRestoreProductID: "No changes made.",
	ftclone.StageCorruptChecksum:  "EEPROM checksum left unchanged.",
	ftclone.StageRestoreChecksum:  "EEPROM checksum left unchanged.",
}

var stageText = map[ftclone.Stage]string{
	ftclone.StageRestoreProductID: `Your device has a Product ID of 0, which likely means that it
has been bricked by FTDI's malicious Windows driver.

Do you want to fix this?
`,
	ftclone.StageCorruptChecksum: `Deliberately corrupting the checksum of your device's EEPROM will
protect it from being bricked by the malicious FTDI Windows driver,
while still functioning with said driver. However, if you do this,
ALL SETTINGS WILL REVERT TO DEFAULTS AND THE DEVICE SERIAL NUMBER
WILL NO LONGER BE VISIBLE. Most devices that use the FT232 as a
standard USB-serial converter will function with default settings,
though the LEDs on some converters might be inverted. Specialty
devices, devices which use bitbang mode, and devices which use
GPIOs or nonstandard control signal configurations may cease to
work properly. If you are NOT 100% certain that this is what you
want, please do not do this. YOU HAVE BEEN WARNED. You can revert
this change by using this tool again.

`,
	ftclone.StageRestoreChecksum: `Your device has an incorrect EEPROM checksum, probably because you
ran this tool to do so, with the intent of protecting your device
from the malicious Windows driver.

`,
}

const userWordNotice = `Product ID restored to 0x6001. However, the value at 0x3e has not
been set to zero. Reasons why this may have happened:
 - The PID was set to 0 by other means, not FTDI's driver.
 - The original PID was not 0x6001
 - The PID was set to 0 by FTDI's driver, then fixed with
   another tool, then set to 0 again by FTDI's driver.
 - Your device has very long vendor/product/serial number strings,
   and FTDI's driver may have accidentally corrupted the last
   character. If this is the case, it has been restored.
 - You or your software have used the EEPROM's free/user area and
   FTDI's driver has corrupted the last word. If this is the case,
   it has been restored.
 - For some other reason the free area of your EEPROM was not
   filled with zeros.
This is probably harmless, but you may want to take note.
`
