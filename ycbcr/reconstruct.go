package ycbcr

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/weaming/x3fraw/x3f"
)

// Subsampling is the chroma subsampling factor (horizontal, vertical).
type Subsampling struct {
	H, V int
}

var (
	Sub422 = Subsampling{H: 2, V: 1}
	Sub420 = Subsampling{H: 2, V: 2}
)

func (s Subsampling) String() string {
	switch s {
	case Sub422:
		return "4:2:2"
	case Sub420:
		return "4:2:0"
	}
	return fmt.Sprintf("(%d,%d)", s.H, s.V)
}

// neutralChroma is the stored chroma value meaning "no color".
const neutralChroma = 16384

// Params configures one reconstruction pass. They are supplied by the
// camera-model resolver and stay fixed for the whole pass.
type Params struct {
	Version     Version
	Subsampling Subsampling
	RawHue      int
	Coeffs      Coefficients
	// Workers bounds 4:2:2 row parallelism; <= 0 means runtime.NumCPU().
	Workers int
}

// Hue returns the bias subtracted from stored chroma.
func (p Params) Hue() int { return neutralChroma - p.RawHue }

// LastHue returns the bias used for the final pixel pair of a 4:2:2 row.
// Version 0 firmware leaves the last pair unbiased.
func (p Params) LastHue() int {
	if p.Version == V0 {
		return neutralChroma
	}
	return p.Hue()
}

// Reconstruct converts the subsampled YCbCr samples in p to RGB in place.
// The plane is at final resolution; each macropixel stores Y, Cb, Cr in
// the slots of its top-left pixel and Y only in the others.
func Reconstruct(p Plane, params Params) error {
	t, err := params.Version.kernel(params.Coeffs)
	if err != nil {
		return err
	}

	width, height := p.Bounds()
	sub := params.Subsampling
	if sub != Sub422 && sub != Sub420 {
		return x3f.Unsupportedf("subsampling %s", sub)
	}
	if sub == Sub420 && params.Version == V0 {
		return x3f.Unsupportedf("transform version 0 with 4:2:0 subsampling")
	}
	if width < sub.H || height < sub.V || width%sub.H != 0 || height%sub.V != 0 {
		return fmt.Errorf("ycbcr: %dx%d is not a whole number of %s macropixels", width, height, sub)
	}
	if img, ok := p.(*Image); ok {
		if err := img.validate(); err != nil {
			return err
		}
	}
	for y := 0; y < height; y++ {
		if n := len(p.Row(y)); n < width*3 {
			return fmt.Errorf("ycbcr: row %d has %d samples, need %d", y, n, width*3)
		}
	}

	if sub == Sub422 {
		interpolate422(p, width/sub.H, height, params.Hue(), params.LastHue(), t, params.Workers)
		return nil
	}
	interpolate420(p, width/sub.H, height/sub.V, params.Hue(), t)
	return nil
}

// interpolate422 splits the rows into contiguous ranges, one per worker.
// Rows never read each other.
func interpolate422(p Plane, w, h, hue, hueLast int, t kernelFunc, workers int) {
	numWorkers := workers
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	if numWorkers > h {
		numWorkers = h
	}

	rowsPerWorker := h / numWorkers
	var wg sync.WaitGroup
	for workerID := 0; workerID < numWorkers; workerID++ {
		startRow := workerID * rowsPerWorker
		endRow := startRow + rowsPerWorker
		if workerID == numWorkers-1 {
			endRow = h
		}

		wg.Add(1)
		go func(startY, endY int) {
			defer wg.Done()
			for y := startY; y < endY; y++ {
				interpolate422Row(p.Row(y), w, hue, hueLast, t)
			}
		}(startRow, endRow)
	}
	wg.Wait()
}

// interpolate422Row reconstructs one row of w macropixels. The second
// pixel of a pair averages its chroma with the next macropixel; the last
// pair has no right neighbour and reuses its own chroma.
func interpolate422Row(line []uint16, w, hue, hueLast int, t kernelFunc) {
	off := 0
	for x := 0; x < w-1; x++ {
		y := int(line[off])
		cb := int(line[off+1]) - hue
		cr := int(line[off+2]) - hue
		t(y, cb, cr, line[off:])
		off += 3

		y = int(line[off])
		cb2 := (cb + int(line[off+1+3]) - hue) >> 1
		cr2 := (cr + int(line[off+2+3]) - hue) >> 1
		t(y, cb2, cr2, line[off:])
		off += 3
	}

	y := int(line[off])
	cb := int(line[off+1]) - hueLast
	cr := int(line[off+2]) - hueLast
	t(y, cb, cr, line[off:])

	y = int(line[off+3])
	t(y, cb, cr, line[off+3:])
}

// interpolate420 reconstructs h row pairs of w macropixels in place.
// Row pair n reads the untouched chroma of row pair n+1, so the pairs
// must be processed top to bottom on a single goroutine.
func interpolate420(p Plane, w, h, hue int, t kernelFunc) {
	endH := h - 1

	for row := 0; row < endH; row++ {
		cLine := p.Row(row * 2)
		nLine := p.Row(row*2 + 1)
		nnLine := p.Row(row*2 + 2)

		off := 0
		for x := 0; x < w-1; x++ {
			y := int(cLine[off])
			cb := int(cLine[off+1]) - hue
			cr := int(cLine[off+2]) - hue
			t(y, cb, cr, cLine[off:])

			y = int(cLine[off+3])
			cb2 := (cb + int(cLine[off+1+6]) - hue) >> 1
			cr2 := (cr + int(cLine[off+2+6]) - hue) >> 1
			t(y, cb2, cr2, cLine[off+3:])

			// next line
			y = int(nLine[off])
			cb3 := (cb + int(nnLine[off+1]) - hue) >> 1
			cr3 := (cr + int(nnLine[off+2]) - hue) >> 1
			t(y, cb3, cr3, nLine[off:])

			// left + above + right + below
			y = int(nLine[off+3])
			cb4 := (cb + cb2 + cb3 + int(nnLine[off+1+6]) - hue) >> 2
			cr4 := (cr + cr2 + cr3 + int(nnLine[off+2+6]) - hue) >> 2
			t(y, cb4, cr4, nLine[off+3:])

			off += 6
		}

		// last macropixel of the row: no right neighbour
		y := int(cLine[off])
		cb := int(cLine[off+1]) - hue
		cr := int(cLine[off+2]) - hue
		t(y, cb, cr, cLine[off:])

		y = int(cLine[off+3])
		t(y, cb, cr, cLine[off+3:])

		y = int(nLine[off])
		cb = (cb + int(nnLine[off+1]) - hue) >> 1
		cr = (cr + int(nnLine[off+2]) - hue) >> 1
		t(y, cb, cr, nLine[off:])

		y = int(nLine[off+3])
		t(y, cb, cr, nLine[off+3:])
	}

	// last row pair: no row below, chroma is reused unaveraged
	cLine := p.Row(endH * 2)
	nLine := p.Row(endH*2 + 1)
	off := 0
	for x := 0; x < w; x++ {
		y := int(cLine[off])
		cb := int(cLine[off+1]) - hue
		cr := int(cLine[off+2]) - hue
		t(y, cb, cr, cLine[off:])

		y = int(cLine[off+3])
		t(y, cb, cr, cLine[off+3:])

		y = int(nLine[off])
		t(y, cb, cr, nLine[off:])

		y = int(nLine[off+3])
		t(y, cb, cr, nLine[off+3:])

		off += 6
	}
}
