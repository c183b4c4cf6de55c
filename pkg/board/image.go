package board

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"strings"
	"sync"

	"github.com/notnil/chess"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

const (
	unit = 100

	lightSquare = "#f0d9b5"
	darkSquare  = "#b58863"
	lightMoved  = "#cdd26a"
	darkMoved   = "#aaa23a"
	checkRing   = "#e03c31"
	whiteDisc   = "#fafafa"
	blackDisc   = "#262421"
)

const (
	MinImageSize = 64
	MaxImageSize = 2048
)

var ErrImageSize = errors.New("image size out of range")

var (
	boldOnce sync.Once
	boldFont *opentype.Font
	boldErr  error
)

func loadBold() (*opentype.Font, error) {
	boldOnce.Do(func() {
		boldFont, boldErr = opentype.Parse(gobold.TTF)
	})
	return boldFont, boldErr
}

// RenderImage draws s as a size x size picture. The board itself is built as
// SVG and rasterized; piece letters are drawn on top with Go Bold.
func RenderImage(s Snapshot, size int) (*image.RGBA, error) {
	if size < MinImageSize || size > MaxImageSize {
		return nil, fmt.Errorf("%w: %d is not within [%d, %d]", ErrImageSize, size, MinImageSize, MaxImageSize)
	}
	b, err := boardOf(s.FEN)
	if err != nil {
		return nil, err
	}

	svg := boardSVG(s, b)
	icon, err := oksvg.ReadIconStream(strings.NewReader(svg))
	if err != nil {
		return nil, fmt.Errorf("read board svg: %w", err)
	}
	icon.SetTarget(0, 0, float64(size), float64(size))

	rgba := image.NewRGBA(image.Rect(0, 0, size, size))
	scanner := rasterx.NewScannerGV(size, size, rgba, rgba.Bounds())
	raster := rasterx.NewDasher(size, size, scanner)
	icon.Draw(raster, 1.0)

	if err := letterPieces(rgba, s, b, size); err != nil {
		return nil, err
	}
	return rgba, nil
}

func EncodePNG(w io.Writer, s Snapshot, size int) error {
	img, err := RenderImage(s, size)
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}

func PNG(s Snapshot, size int) ([]byte, error) {
	var buf bytes.Buffer
	if err := EncodePNG(&buf, s, size); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func boardSVG(s Snapshot, b *chess.Board) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`,
		8*unit, 8*unit, 8*unit, 8*unit)

	files, ranks := axes(s.Orientation)
	for row, r := range ranks {
		for col, f := range files {
			sq := chess.Square(r*8 + f)
			name := sq.String()
			light := (r+f)%2 == 1
			fill := darkSquare
			if light {
				fill = lightSquare
			}
			if s.LastMove != nil && (s.LastMove.From == name || s.LastMove.To == name) {
				fill = darkMoved
				if light {
					fill = lightMoved
				}
			}
			x, y := col*unit, row*unit
			fmt.Fprintf(&sb, `<rect x="%d" y="%d" width="%d" height="%d" fill="%s"/>`, x, y, unit, unit, fill)

			p := b.Piece(sq)
			if p == chess.NoPiece {
				continue
			}
			cx, cy := x+unit/2, y+unit/2
			if s.Check && p.Type() == chess.King && colorName(p.Color()) == string(s.Turn) {
				fmt.Fprintf(&sb, `<circle cx="%d" cy="%d" r="%d" fill="%s"/>`, cx, cy, unit*48/100, checkRing)
			}
			disc, edge := whiteDisc, blackDisc
			if p.Color() == chess.Black {
				disc, edge = blackDisc, whiteDisc
			}
			fmt.Fprintf(&sb, `<circle cx="%d" cy="%d" r="%d" fill="%s" stroke="%s" stroke-width="4"/>`,
				cx, cy, unit*38/100, disc, edge)
		}
	}
	sb.WriteString(`</svg>`)
	return sb.String()
}

func letterPieces(dst *image.RGBA, s Snapshot, b *chess.Board, size int) error {
	f, err := loadBold()
	if err != nil {
		return fmt.Errorf("load font: %w", err)
	}
	cell := float64(size) / 8
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    cell * 0.45,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return fmt.Errorf("font face: %w", err)
	}
	defer face.Close()

	ascent := face.Metrics().Ascent
	files, ranks := axes(s.Orientation)
	for row, r := range ranks {
		for col, fl := range files {
			p := b.Piece(chess.Square(r*8 + fl))
			if p == chess.NoPiece {
				continue
			}
			ink := color.RGBA{0x26, 0x24, 0x21, 0xff}
			if p.Color() == chess.Black {
				ink = color.RGBA{0xfa, 0xfa, 0xfa, 0xff}
			}
			d := &font.Drawer{Dst: dst, Src: image.NewUniform(ink), Face: face}
			l := strings.ToUpper(pieceLetters[p.Type()])
			width := d.MeasureString(l)
			cx := fixed.I(int(cell*float64(col) + cell/2))
			cy := fixed.I(int(cell*float64(row) + cell/2))
			d.Dot = fixed.Point26_6{X: cx - width/2, Y: cy + ascent/2 - fixed.I(1)}
			d.DrawString(l)
		}
	}
	return nil
}

func colorName(c chess.Color) string {
	if c == chess.White {
		return "white"
	}
	return "black"
}
