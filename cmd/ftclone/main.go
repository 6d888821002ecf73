package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/gentam/ftclone"
)

var (
	timeout time.Duration
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "ftclone",
	Short: "Detect FT232R clones and protect them from the FTDI driver",
	Long: `ftclone probes the single FT232R attached to this machine, tells genuine
chips from clones, and for clones offers to restore a product ID cleared
by the FTDI Windows driver, or to corrupt/restore the EEPROM checksum.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runCheck,
}

func init() {
	rootCmd.PersistentFlags().DurationVarP(&timeout, "timeout", "t", ftclone.DefaultTimeout, "USB control transfer timeout")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "trace every control transfer")
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}

// openDevice opens the single FT232R candidate and reports it.
func openDevice(cmd *cobra.Command) (*ftclone.Device, error) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Detecting device...")
	d, err := ftclone.Open(timeout)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(out, "Found FTDI FT232R device (%s)\n", d.Candidate)
	if verbose {
		d.EEPROM.Tracef = func(format string, a ...any) {
			fmt.Fprintf(cmd.ErrOrStderr(), "  usb: "+format+"\n", a...)
		}
	}
	return d, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fatalf("ftclone: %v", err)
	}
}
