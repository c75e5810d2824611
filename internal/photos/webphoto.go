package photos

import (
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"github.com/rs/zerolog/log"
	_ "golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// WebName returns the output filename for a source photo: the original stem
// with a .webp extension.
func WebName(id string) string {
	return strings.TrimSuffix(id, filepath.Ext(id)) + ".webp"
}

// EncodeWeb writes a web-sized webp copy of the source photo into outDir.
// Existing outputs are kept unless force is set.
//
// Sources the standard decoders cannot handle (HEIC in particular) are
// reported as an error; the caller keeps the visit and just loses the
// preview image.
func EncodeWeb(srcPath, outDir string, maxPx int, quality float32, force bool) (string, error) {
	outPath := filepath.Join(outDir, WebName(filepath.Base(srcPath)))

	if !force {
		if info, err := os.Stat(outPath); err == nil && info.Size() > 0 {
			return outPath, nil
		}
	}

	f, err := os.Open(srcPath)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	src, _, err := image.Decode(f)
	if err != nil {
		return "", err
	}

	dst := downscale(src, maxPx)

	if err := os.MkdirAll(outDir, 0755); err != nil {
		return "", err
	}

	out, err := os.Create(outPath)
	if err != nil {
		return "", err
	}

	// We care about write errors on close
	defer func() {
		if closeErr := out.Close(); closeErr != nil {
			log.Error().Err(closeErr).Str("path", outPath).Msg("Failed to close file")
		}
	}()

	if err := webp.Encode(out, dst, &webp.Options{Lossless: false, Quality: quality}); err != nil {
		return "", err
	}

	return outPath, nil
}

// downscale fits the image into a maxPx square, preserving aspect ratio.
// Images already small enough pass through untouched.
func downscale(src image.Image, maxPx int) image.Image {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	if w <= maxPx && h <= maxPx {
		return src
	}

	if w >= h {
		h = h * maxPx / w
		w = maxPx
	} else {
		w = w * maxPx / h
		h = maxPx
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)

	return dst
}
