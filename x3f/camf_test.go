package x3f

import (
	"bytes"
	"errors"
	"testing"
)

func TestDecodeCAMFType2Symmetric(t *testing.T) {
	t.Parallel()
	plain := []byte("CMbT entries are XOR obfuscated with a key stream")
	enc := decodeCAMFType2(plain, 0xbeef)
	if bytes.Equal(enc, plain) {
		t.Fatal("encoding did not change the data")
	}
	if got := decodeCAMFType2(enc, 0xbeef); !bytes.Equal(got, plain) {
		t.Fatalf("got %q want %q", got, plain)
	}
	if got := decodeCAMFType2(enc, 0xbee0); bytes.Equal(got, plain) {
		t.Fatal("wrong key decoded the data")
	}
}

func TestParseCAMFEntries(t *testing.T) {
	t.Parallel()
	var data []byte
	data = append(data, camfText("Text", "abc")...)
	data = append(data, camfProps("List", "k1", "v1", "k2", "v2")...)
	data = append(data, camfMatrixFloat("Vec", "idx", []float32{1.5, -2, 3})...)

	entries := parseCAMFEntries(data)
	if len(entries) != 3 {
		t.Fatalf("entries: got %d want 3", len(entries))
	}
	if e := entries[0]; e.ID != CMbT || e.Name != "Text" || e.Text != "abc" {
		t.Errorf("text entry: %+v", e)
	}
	if e := entries[1]; len(e.PropertyNames) != 2 || e.PropertyNames[1] != "k2" || e.PropertyValues[1] != "v2" {
		t.Errorf("property entry: %+v", e)
	}
	e := entries[2]
	if len(e.MatrixDims) != 1 || e.MatrixDims[0].Name != "idx" || e.MatrixDims[0].Size != 3 {
		t.Fatalf("matrix dims: %+v", e.MatrixDims)
	}
	if len(e.Matrix) != 3 || e.Matrix[0] != 1.5 || e.Matrix[1] != -2 || e.Matrix[2] != 3 {
		t.Errorf("matrix: %v", e.Matrix)
	}
}

func TestParseCAMFEntryRejects(t *testing.T) {
	t.Parallel()

	badID := camfText("T", "x")
	copy(badID, "XXXX")
	if _, _, err := parseCAMFEntry(badID); !errors.Is(err, ErrFormat) {
		t.Errorf("bad id: %v", err)
	}

	badName := camfText("T", "x")
	le.PutUint32(badName[12:], 4) // name offset inside the entry header
	if _, _, err := parseCAMFEntry(badName); !errors.Is(err, ErrFormat) {
		t.Errorf("bad name offset: %v", err)
	}

	for _, n := range []int{0, 4, 19} {
		if _, _, err := parseCAMFEntry(camfText("T", "x")[:n]); !errors.Is(err, ErrBounds) {
			t.Errorf("%d-byte entry: expected ErrBounds, got %v", n, err)
		}
	}

	huge := camfMatrixFloat("M", "d", []float32{1})
	valueOff := le.Uint32(huge[16:])
	le.PutUint32(huge[valueOff+12:], 1<<30) // dimension size
	if _, _, err := parseCAMFEntry(huge); !errors.Is(err, ErrResourceLimit) {
		t.Errorf("huge matrix: %v", err)
	}
}
