package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"periph.io/x/conn/v3/driver/driverreg"
	"periph.io/x/host/v3"
	"periph.io/x/host/v3/ftdi"

	"github.com/gentam/ftclone"
)

var infoDrivers bool

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "List FTDI devices seen by the D2XX driver",
	Long: `info lists FTDI devices through periph.io's D2XX host driver. It does not
probe the EEPROM. A device the D2XX driver cannot open (for example one
already bound to the kernel's ftdi_sio) is not listed.`,
	Args: cobra.NoArgs,
	RunE: runInfo,
}

func init() {
	infoCmd.Flags().BoolVar(&infoDrivers, "drivers", false, "also list periph host drivers")
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	state, err := host.Init()
	if err != nil {
		return fmt.Errorf("host initialization failed: %w", err)
	}
	out := cmd.OutOrStdout()
	if infoDrivers {
		printDrivers(out, state)
	}

	devs := ftdi.All()
	if len(devs) == 0 {
		fmt.Fprintln(out, "No FTDI devices found")
		return nil
	}
	for _, dev := range devs {
		printFTDI(out, dev)
	}
	return nil
}

func printDrivers(w io.Writer, state *driverreg.State) {
	for _, d := range state.Loaded {
		fmt.Fprintf(w, "loaded:  %s\n", d)
	}
	for _, f := range state.Skipped {
		fmt.Fprintf(w, "skipped: %s: %v\n", f.D, f.Err)
	}
	for _, f := range state.Failed {
		fmt.Fprintf(w, "failed:  %s: %v\n", f.D, f.Err)
	}
}

// Reference: https://github.com/periph/cmd/tree/main/ftdi-list
func printFTDI(w io.Writer, dev ftdi.Dev) {
	i := ftdi.Info{}
	dev.Info(&i)
	fmt.Fprintf(w, "%s\n", dev)
	fmt.Fprintf(w, "  Type:            %s\n", i.Type)
	fmt.Fprintf(w, "  Vendor ID:       %#04x\n", i.VenID)
	fmt.Fprintf(w, "  Device ID:       %#04x\n", i.DevID)
	// D2XX does not expose bcdDevice; the type name stands in for the version check.
	if i.VenID == ftclone.VendorID && (i.DevID == ftclone.ProductIDFT232R || i.DevID == 0) && i.Type == "FT232R" {
		fmt.Fprintf(w, "  FT232R candidate, run 'ftclone check' with the D2XX driver unloaded\n")
	}

	ee := ftdi.EEPROM{}
	if err := dev.EEPROM(&ee); err != nil {
		fmt.Fprintf(w, "  EEPROM:          %v\n", err)
		return
	}
	fmt.Fprintf(w, "  Manufacturer:    %s\n", ee.Manufacturer)
	fmt.Fprintf(w, "  ManufacturerID:  %s\n", ee.ManufacturerID)
	fmt.Fprintf(w, "  Desc:            %s\n", ee.Desc)
	fmt.Fprintf(w, "  Serial:          %s\n", ee.Serial)

	h := ee.AsHeader()
	fmt.Fprintf(w, "  MaxPower:        %dmA\n", h.MaxPower)
	fmt.Fprintf(w, "  SelfPowered:     %x\n", h.SelfPowered)
	fmt.Fprintf(w, "  RemoteWakeup:    %x\n", h.RemoteWakeup)

	for _, p := range dev.Header() {
		fmt.Fprintf(w, "  %s: %s\n", p, p.Function())
	}
}
