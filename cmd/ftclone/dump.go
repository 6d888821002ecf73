package main

import (
	"encoding/binary"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gentam/ftclone"
)

var dumpOutFile string

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Print the EEPROM image and checksum status without writing",
	Args:  cobra.NoArgs,
	RunE:  runDump,
}

func init() {
	dumpCmd.Flags().StringVarP(&dumpOutFile, "output", "o", "", "also save the raw image (little-endian words) to this file")
	rootCmd.AddCommand(dumpCmd)
}

func runDump(cmd *cobra.Command, args []string) error {
	d, err := openDevice(cmd)
	if err != nil {
		return err
	}
	defer d.Close()

	img, err := d.EEPROM.ReadImage()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "EEPROM contents:\n%s", img.String())
	fmt.Fprintf(out, "  Product ID:      %04x\n", img.ProductID())
	if check := ftclone.Checksum(&img); img.Valid() {
		fmt.Fprintf(out, "  EEPROM checksum: %04x (correct)\n", check)
	} else {
		fmt.Fprintf(out, "  EEPROM checksum: %04x (incorrect, expected %04x)\n", img[ftclone.AddrChecksum], check)
	}

	if dumpOutFile == "" {
		return nil
	}
	buf := make([]byte, 0, 2*ftclone.EEPROMWords)
	for _, w := range img {
		buf = binary.LittleEndian.AppendUint16(buf, w)
	}
	if err := os.WriteFile(dumpOutFile, buf, 0644); err != nil {
		return fmt.Errorf("write file failed: %w", err)
	}
	return nil
}
