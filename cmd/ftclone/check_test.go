package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/gentam/ftclone"
	"github.com/gentam/ftclone/ftclonetest"
)

func validImage() ftclone.Image {
	var img ftclone.Image
	img[0x00] = 0x4000
	img[0x01] = 0x0403
	img[0x02] = 0x6001
	img[0x03] = 0x0600
	img[0x04] = 0xA02D
	img[0x05] = 0x0008
	img[0x3F] = ftclone.Checksum(&img)
	return img
}

func bricked() ftclone.Image {
	img := validImage()
	img[ftclone.AddrProductID] = 0
	img[ftclone.AddrUser] = ftclone.Forge(&img)
	return img
}

func runWith(t *testing.T, dev *ftclonetest.Device, input string) string {
	t.Helper()
	var out bytes.Buffer
	if err := check(ftclone.NewEEPROM(dev), newConsole(strings.NewReader(input), &out, false)); err != nil {
		t.Fatalf("check() error = %v\n%s", err, out.String())
	}
	return out.String()
}

// userWrites drops the probe and its revert.
func userWrites(dev *ftclonetest.Device) []ftclonetest.Transfer {
	w := dev.Writes()
	if !dev.Genuine {
		w = w[2:]
	}
	return w
}

func TestCheckGenuine(t *testing.T) {
	dev := ftclonetest.New(validImage())
	dev.Genuine = true
	out := runWith(t, dev, "CORRUPTME\n")

	if !strings.Contains(out, "Chip is GENUINE") {
		t.Errorf("output does not report genuine:\n%s", out)
	}
	if strings.Contains(out, "> ") {
		t.Errorf("genuine device was prompted:\n%s", out)
	}
	if diff := cmp.Diff(validImage(), ftclone.Image(dev.Words)); diff != "" {
		t.Errorf("device words mismatch (-want +got):\n%s", diff)
	}
}

func TestCheckRestoreProductIDDeclined(t *testing.T) {
	for _, input := range []string{"", "\n", "yes\n", "YESS\n"} {
		dev := ftclonetest.New(bricked())
		out := runWith(t, dev, input)
		if !strings.Contains(out, "Product ID of 0") || !strings.Contains(out, "No changes made.") {
			t.Errorf("input %q: unexpected output:\n%s", input, out)
		}
		if w := userWrites(dev); len(w) != 0 {
			t.Errorf("input %q: writes %v", input, w)
		}
		if diff := cmp.Diff(bricked(), ftclone.Image(dev.Words)); diff != "" {
			t.Errorf("input %q: device words mismatch (-want +got):\n%s", input, diff)
		}
	}
}

func TestCheckRestoreProductID(t *testing.T) {
	dev := ftclonetest.New(bricked())
	out := runWith(t, dev, "YES\n\n")

	if !strings.Contains(out, "have been reverted") {
		t.Errorf("output does not report full revert:\n%s", out)
	}
	if !strings.Contains(out, "EEPROM checksum left unchanged.") {
		t.Errorf("corrupt checksum not offered after restore:\n%s", out)
	}
	if diff := cmp.Diff(validImage(), ftclone.Image(dev.Words)); diff != "" {
		t.Errorf("device words mismatch (-want +got):\n%s", diff)
	}
}

func TestCheckCorruptChecksum(t *testing.T) {
	img := validImage()
	img[0x3F] = 0x1234
	img[ftclone.AddrUser] = ftclone.Forge(&img)
	dev := ftclonetest.New(img)

	out := runWith(t, dev, "CORRUPTME\n")
	if !strings.Contains(out, "EEPROM checksum corrupted") {
		t.Errorf("unexpected output:\n%s", out)
	}
	want := []ftclonetest.Transfer{{RType: 0x40, Request: 0x91, Value: 0xDEAD, Index: 0x3F}}
	if diff := cmp.Diff(want, userWrites(dev)); diff != "" {
		t.Errorf("writes mismatch (-want +got):\n%s", diff)
	}
	if dev.Words[0x3F] != 0xDEAD {
		t.Errorf("checksum word = 0x%04X, want 0xDEAD", dev.Words[0x3F])
	}
}

func TestCheckRestoreChecksum(t *testing.T) {
	img := validImage()
	want := img[0x3F]
	img[0x3F] = 0xDEAD
	dev := ftclonetest.New(img)

	out := runWith(t, dev, "FIXME\n")
	if !strings.Contains(out, "incorrect, expected") || !strings.Contains(out, "EEPROM checksum corrected") {
		t.Errorf("unexpected output:\n%s", out)
	}
	if dev.Words[0x3F] != want {
		t.Errorf("checksum word = 0x%04X, want 0x%04X", dev.Words[0x3F], want)
	}
}

func TestCheckTransportError(t *testing.T) {
	dev := ftclonetest.New(validImage())
	dev.FailAfter = 3
	var out bytes.Buffer
	if err := check(ftclone.NewEEPROM(dev), newConsole(strings.NewReader(""), &out, false)); err == nil {
		t.Error("check() succeeded with a failing device")
	}
}

func TestConsolePause(t *testing.T) {
	var out bytes.Buffer
	c := newConsole(strings.NewReader("\nFIXME\r\n"), &out, true)
	c.pause("Press enter to exit.")
	answer, err := c.prompt()
	if err != nil {
		t.Fatal(err)
	}
	if answer != "FIXME" {
		t.Errorf("prompt() = %q, want FIXME", answer)
	}
	if out.String() != "Press enter to exit.\n> " {
		t.Errorf("output = %q", out.String())
	}
}
