package luminance

import (
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
)

const tgaHeaderSize = 18

// TGA image types.
const (
	tgaTrueColor    = 2
	tgaTrueColorRLE = 10
)

type tgaHeader struct {
	idLength    int
	colorMap    byte
	imageType   byte
	width       int
	height      int
	bpp         int
	topToBottom bool
}

func parseTGAHeader(data []byte) (tgaHeader, error) {
	if len(data) < tgaHeaderSize {
		return tgaHeader{}, fmt.Errorf("tga: header truncated (%d bytes)", len(data))
	}
	h := tgaHeader{
		idLength:    int(data[0]),
		colorMap:    data[1],
		imageType:   data[2],
		width:       int(binary.LittleEndian.Uint16(data[12:14])),
		height:      int(binary.LittleEndian.Uint16(data[14:16])),
		bpp:         int(data[16]),
		topToBottom: data[17]&0x20 != 0,
	}
	switch {
	case h.colorMap != 0:
		return h, fmt.Errorf("tga: color-mapped images not supported")
	case h.imageType != tgaTrueColor && h.imageType != tgaTrueColorRLE:
		return h, fmt.Errorf("tga: unsupported image type %d", h.imageType)
	case h.bpp != 24 && h.bpp != 32:
		return h, fmt.Errorf("tga: unsupported bit depth %d", h.bpp)
	}
	return h, nil
}

// decodeTGA decodes uncompressed and RLE true-colour TGA images. TGA has no
// magic number, so Load picks it by file extension.
func decodeTGA(data []byte) (image.Image, error) {
	h, err := parseTGAHeader(data)
	if err != nil {
		return nil, err
	}
	offset := tgaHeaderSize + h.idLength
	if offset > len(data) {
		return nil, fmt.Errorf("tga: image id truncated")
	}
	px := data[offset:]
	bytesPer := h.bpp / 8
	total := h.width * h.height

	img := image.NewRGBA(image.Rect(0, 0, h.width, h.height))
	n := 0
	put := func(c color.RGBA) {
		x, y := n%h.width, n/h.width
		if !h.topToBottom {
			y = h.height - 1 - y
		}
		img.SetRGBA(x, y, c)
		n++
	}
	read := func() (color.RGBA, bool) {
		if len(px) < bytesPer {
			return color.RGBA{}, false
		}
		c := color.RGBA{R: px[2], G: px[1], B: px[0], A: 0xff}
		if bytesPer == 4 {
			c.A = px[3]
		}
		px = px[bytesPer:]
		return c, true
	}

	if h.imageType == tgaTrueColor {
		if len(px) < total*bytesPer {
			return nil, fmt.Errorf("tga: pixel data truncated")
		}
		for n < total {
			c, _ := read()
			put(c)
		}
		return img, nil
	}

	for n < total && len(px) > 0 {
		packet := px[0]
		px = px[1:]
		count := int(packet&0x7f) + 1
		if packet&0x80 != 0 {
			c, ok := read()
			if !ok {
				break
			}
			for i := 0; i < count && n < total; i++ {
				put(c)
			}
			continue
		}
		for i := 0; i < count && n < total; i++ {
			c, ok := read()
			if !ok {
				break
			}
			put(c)
		}
	}
	if n < total {
		return nil, fmt.Errorf("tga: RLE data ended after %d of %d pixels", n, total)
	}
	return img, nil
}
