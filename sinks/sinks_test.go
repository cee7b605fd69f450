package sinks

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"github.com/kantuck/rawmosaic/internal/mosaic"
)

func TestPPM24_HeaderDimensionsAndYMag(t *testing.T) {
	im := mosaic.New(4, 3)
	for i := range im.Pix {
		im.Pix[i] = mosaic.Site{100, 100, 100, 5000}
	}

	var buf bytes.Buffer
	style := Style{Bright: 1, Gamma: 1, White: 10000, YMag: 2}
	if err := (PPM24{}).Write(&buf, im, style); err != nil {
		t.Fatalf("Write: %v", err)
	}

	r := bufio.NewReader(&buf)
	magic, _ := r.ReadString('\n')
	dims, _ := r.ReadString('\n')
	if strings.TrimSpace(magic) != "P6" {
		t.Fatalf("magic = %q, want P6", magic)
	}
	if want := "4 6\n"; dims != want {
		t.Fatalf("dimensions line = %q, want %q (height doubled by YMag)", dims, want)
	}
}

func TestPPM24_TrimRejectsEmptyImage(t *testing.T) {
	im := mosaic.New(2, 2)
	var buf bytes.Buffer
	err := (PPM24{}).Write(&buf, im, Style{Trim: 1, Gamma: 1})
	if err == nil {
		t.Fatal("expected an error trimming a 2x2 image down to nothing")
	}
}

func TestPPM48_NoYMagApplied(t *testing.T) {
	im := mosaic.New(3, 2)
	for i := range im.Pix {
		im.Pix[i] = mosaic.Site{1000, 2000, 3000, 0}
	}
	var buf bytes.Buffer
	style := Style{Bright: 1, YMag: 2} // YMag must be ignored by PPM48
	if err := (PPM48{}).Write(&buf, im, style); err != nil {
		t.Fatalf("Write: %v", err)
	}
	r := bufio.NewReader(&buf)
	r.ReadString('\n')
	dims, _ := r.ReadString('\n')
	if want := "3 2\n"; dims != want {
		t.Fatalf("dimensions line = %q, want %q (YMag must not affect PPM48)", dims, want)
	}
}

func TestPPM48_ClampsToMax(t *testing.T) {
	im := mosaic.New(1, 1)
	im.Pix[0] = mosaic.Site{0xffff, 0, 0, 0}
	var buf bytes.Buffer
	if err := (PPM48{}).Write(&buf, im, Style{Bright: 2}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	data := buf.Bytes()
	// header is "P6\n1 1\n65535\n" (13 bytes), then 2 bytes per channel.
	body := data[len(data)-6:]
	got := uint16(body[0])<<8 | uint16(body[1])
	if got != 0xffff {
		t.Errorf("red channel = %#x, want clamped to 0xffff", got)
	}
}

func TestPSD48_HeaderPatchesDimensions(t *testing.T) {
	im := mosaic.New(5, 7)
	var buf bytes.Buffer
	if err := (PSD48{}).Write(&buf, im, Style{Bright: 1}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	head := buf.Bytes()[:40]
	if string(head[:4]) != "8BPS" {
		t.Fatalf("signature = %q, want 8BPS", head[:4])
	}
	height := uint32(head[14])<<24 | uint32(head[15])<<16 | uint32(head[16])<<8 | uint32(head[17])
	width := uint32(head[18])<<24 | uint32(head[19])<<16 | uint32(head[20])<<8 | uint32(head[21])
	if height != 7 || width != 5 {
		t.Errorf("header dims = %dx%d, want 5x7", width, height)
	}
}
