package output

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/weaming/x3fraw/ycbcr"
)

// WritePPM 导出为 16-bit 二进制 PPM (P6, maxval 65535)
//
// 采样按 big-endian 写出，不做任何处理，用于和其它工具的输出逐字节对比。
func WritePPM(w io.Writer, img *ycbcr.Image) error {
	bw := bufio.NewWriter(w)

	// 写入 PPM 头部
	if _, err := fmt.Fprintf(bw, "P6\n%d %d\n65535\n", img.Width, img.Height); err != nil {
		return err
	}

	buf := make([]byte, img.Width*3*2)
	for y := 0; y < img.Height; y++ {
		row := img.Row(y)
		for i, v := range row {
			binary.BigEndian.PutUint16(buf[i*2:], v)
		}
		if _, err := bw.Write(buf); err != nil {
			return err
		}
	}
	return bw.Flush()
}
