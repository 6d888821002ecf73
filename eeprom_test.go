package ftclone

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/gentam/ftclone/ftclonetest"
)

func TestEEPROMTransfers(t *testing.T) {
	dev := ftclonetest.New([64]uint16{0x02: 0x6001})
	e := NewEEPROM(dev)

	if err := e.Unlock(); err != nil {
		t.Fatal(err)
	}
	v, err := e.Read(AddrProductID)
	if err != nil {
		t.Fatal(err)
	}
	if v != 0x6001 {
		t.Errorf("Read(0x02) = 0x%04X, want 0x6001", v)
	}
	if err := e.Write(AddrUser, 0x1234); err != nil {
		t.Fatal(err)
	}

	want := []ftclonetest.Transfer{
		{RType: 0x40, Request: 0x09, Value: 0x0077, Index: 1},
		{RType: 0xC0, Request: 0x90, Value: 0, Index: 0x02},
		{RType: 0x40, Request: 0x91, Value: 0x1234, Index: 0x3E},
	}
	if diff := cmp.Diff(want, dev.Transfers); diff != "" {
		t.Errorf("transfers mismatch (-want +got):\n%s", diff)
	}
	if dev.Words[AddrUser] != 0x1234 {
		t.Errorf("user word = 0x%04X, want 0x1234", dev.Words[AddrUser])
	}
}

func TestEEPROMReadImage(t *testing.T) {
	var words [64]uint16
	for i := range words {
		words[i] = uint16(i) << 8
	}
	dev := ftclonetest.New(words)
	img, err := NewEEPROM(dev).ReadImage()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(Image(words), img); diff != "" {
		t.Errorf("image mismatch (-want +got):\n%s", diff)
	}
	if len(dev.Transfers) != EEPROMWords {
		t.Errorf("%d transfers, want %d", len(dev.Transfers), EEPROMWords)
	}
}

func TestEEPROMShortRead(t *testing.T) {
	dev := ftclonetest.New([64]uint16{})
	dev.ShortRead = true
	_, err := NewEEPROM(dev).Read(5)
	var pe *ProtocolError
	if !errors.As(err, &pe) {
		t.Fatalf("Read() error = %v, want *ProtocolError", err)
	}
	if pe.Addr != 5 || pe.Got != 1 {
		t.Errorf("ProtocolError = %+v", pe)
	}
}

func TestEEPROMTransportError(t *testing.T) {
	dev := ftclonetest.New([64]uint16{})
	dev.FailAfter = 1
	e := NewEEPROM(dev)
	if err := e.Unlock(); err != nil {
		t.Fatal(err)
	}
	_, err := e.Read(0)
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("Read() error = %v, want *TransportError", err)
	}
	if te.Op != "read" || !errors.Is(err, ftclonetest.ErrTimeout) {
		t.Errorf("TransportError = %v", te)
	}
	if len(dev.Transfers) != 2 {
		t.Errorf("%d transfers, want 2 (no retry)", len(dev.Transfers))
	}
}

func TestEEPROMAddressRange(t *testing.T) {
	dev := ftclonetest.New([64]uint16{})
	e := NewEEPROM(dev)
	if _, err := e.Read(EEPROMWords); err == nil {
		t.Error("Read(0x40) succeeded")
	}
	if err := e.Write(-1, 0); err == nil {
		t.Error("Write(-1) succeeded")
	}
	if len(dev.Transfers) != 0 {
		t.Errorf("out of range access reached the bus: %v", dev.Transfers)
	}
}

func TestImageString(t *testing.T) {
	img := sampleImage()
	lines := strings.Split(strings.TrimSuffix(img.String(), "\n"), "\n")
	if len(lines) != 8 {
		t.Fatalf("%d lines, want 8", len(lines))
	}
	if want := "  4000 0403 6001 0600 a02d 0008 0000 0000"; lines[0] != want {
		t.Errorf("first line = %q, want %q", lines[0], want)
	}
	if !strings.HasSuffix(lines[7], " d534") {
		t.Errorf("last line = %q, want checksum at the end", lines[7])
	}
}
