package blob

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"
)

const (
	thumbMaxWidth  = 360
	thumbMaxHeight = 220
)

// MaybeStoreImageThumbnail decodes data as an image and writes a downscaled
// PNG preview alongside original, named "<hash>-thumb.png". Unrecognized
// image data is not an error: it returns ("", nil) so callers can still
// treat the attachment as a plain file.
func (s *Store) MaybeStoreImageThumbnail(originalPath string, data []byte) (string, error) {
	thumbPath := thumbnailPathFor(originalPath)
	if _, err := os.Stat(thumbPath); err == nil {
		return thumbPath, nil
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", nil
	}

	thumb := scaleToFit(src, thumbMaxWidth, thumbMaxHeight)

	tmpDir := s.tmpDir()
	if err := os.MkdirAll(tmpDir, 0755); err != nil {
		return "", fmt.Errorf("create tmp dir: %w", err)
	}
	tmp := filepath.Join(tmpDir, "thumb-"+randomSuffix())

	f, err := os.Create(tmp)
	if err != nil {
		return "", fmt.Errorf("create tmp thumbnail: %w", err)
	}
	if err := png.Encode(f, thumb); err != nil {
		f.Close()
		os.Remove(tmp)
		return "", fmt.Errorf("encode thumbnail: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("close tmp thumbnail: %w", err)
	}

	if err := renameOrAcceptExisting(tmp, thumbPath); err != nil {
		return "", err
	}
	return thumbPath, nil
}

func thumbnailPathFor(originalPath string) string {
	dir := filepath.Dir(originalPath)
	base := filepath.Base(originalPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" {
		stem = "image"
	}
	return filepath.Join(dir, stem+"-thumb.png")
}

// scaleToFit returns a copy of src scaled down to fit within maxW x maxH,
// preserving aspect ratio. Images already within bounds are returned
// unscaled.
func scaleToFit(src image.Image, maxW, maxH int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxW && h <= maxH {
		return src
	}

	scale := float64(maxW) / float64(w)
	if hs := float64(maxH) / float64(h); hs < scale {
		scale = hs
	}
	newW := int(float64(w) * scale)
	newH := int(float64(h) * scale)
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}
