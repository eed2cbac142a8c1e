// Package qr reads facility QR codes from image files and renders QR codes
// for the terminal.
package qr

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	stddraw "image/draw"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"strings"

	"github.com/makiuchi-d/gozxing"
	gzqr "github.com/makiuchi-d/gozxing/qrcode"
	qrcode "github.com/skip2/go-qrcode"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/webp"
)

const (
	// maxImageBytes bounds the size of an image file we will read.
	maxImageBytes = 12 << 20
	// maxDecodeSide is the longest side an image is scaled down to before
	// decoding. Phone photos are much larger than a QR code needs.
	maxDecodeSide = 1600
	// maxImageSide bounds either dimension declared by an image header. A
	// small compressed file can declare a canvas far too large to allocate.
	maxImageSide = 10000
)

var (
	// ErrUnreadableImage means the file is not a PNG, JPEG or WebP image.
	ErrUnreadableImage = errors.New("unreadable image")

	// ErrNoCode means the image does not contain a readable QR code.
	ErrNoCode = errors.New("no QR code found")

	// ErrImageTooLarge means the image declares dimensions above maxImageSide.
	ErrImageTooLarge = errors.New("image dimensions too large")
)

// DecodeFile reads a QR code from the image at path.
func DecodeFile(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnreadableImage, err)
	}
	if info.Size() > maxImageBytes {
		return "", fmt.Errorf("%w: file is larger than %d bytes", ErrUnreadableImage, maxImageBytes)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnreadableImage, err)
	}
	return Decode(raw)
}

// Decode reads a QR code from encoded image bytes.
func Decode(raw []byte) (string, error) {
	img, err := decodeImage(raw)
	if err != nil {
		return "", err
	}

	bmp, err := gozxing.NewBinaryBitmapFromImage(downscale(img))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoCode, err)
	}

	hints := map[gozxing.DecodeHintType]interface{}{
		gozxing.DecodeHintType_TRY_HARDER: true,
	}
	result, err := gzqr.NewQRCodeReader().Decode(bmp, hints)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoCode, err)
	}

	return result.GetText(), nil
}

func decodeImage(raw []byte) (image.Image, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableImage, err)
	}
	if cfg.Width > maxImageSide || cfg.Height > maxImageSide {
		return nil, fmt.Errorf("%w: %w: %dx%d", ErrUnreadableImage, ErrImageTooLarge, cfg.Width, cfg.Height)
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err == nil {
		return img, nil
	}
	if decoded, webpErr := webp.Decode(bytes.NewReader(raw)); webpErr == nil {
		return decoded, nil
	}
	return nil, fmt.Errorf("%w: %v", ErrUnreadableImage, err)
}

// downscale shrinks img so its longest side is at most maxDecodeSide.
func downscale(img image.Image) image.Image {
	b := img.Bounds()
	longest := max(b.Dx(), b.Dy())
	if longest <= maxDecodeSide {
		return img
	}

	w := b.Dx() * maxDecodeSide / longest
	h := b.Dy() * maxDecodeSide / longest
	dst := image.NewNRGBA(image.Rect(0, 0, max(w, 1), max(h, 1)))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, stddraw.Src, nil)
	return dst
}

// Render returns text as a QR code drawn with half-block characters, two
// modules per terminal row.
func Render(text string) (string, error) {
	q, err := qrcode.New(text, qrcode.Medium)
	if err != nil {
		return "", fmt.Errorf("failed to encode QR code: %w", err)
	}
	return strings.TrimRight(q.ToSmallString(false), "\n"), nil
}

// PNG returns text as a PNG QR code of size by size pixels.
func PNG(text string, size int) ([]byte, error) {
	png, err := qrcode.Encode(text, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("failed to encode QR code: %w", err)
	}
	return png, nil
}
