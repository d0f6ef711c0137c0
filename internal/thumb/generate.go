package thumb

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"os/exec"
	"time"

	"github.com/nfnt/resize"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/wethinkt/go-pikeru/internal/fsview"
)

// ErrUnsupported is returned for kinds that have no picture thumbnail.
// The UI draws an icon tile for them.
var ErrUnsupported = errors.New("thumb: no picture for this kind")

// ffmpegPath is resolved lazily so tests can run without ffmpeg.
var ffmpegPath = func() (string, error) { return exec.LookPath("ffmpeg") }

// Generate produces a thumbnail of src that fits in size x size pixels.
func Generate(ctx context.Context, src string, kind fsview.Kind, size int) (image.Image, error) {
	start := time.Now()
	defer func() { generateSeconds.Observe(time.Since(start).Seconds()) }()

	var (
		img image.Image
		err error
	)
	switch kind {
	case fsview.KindImage:
		img, err = decodeFile(src)
	case fsview.KindVideo:
		img, err = firstFrame(ctx, src)
	default:
		return nil, ErrUnsupported
	}
	if err != nil {
		thumbErrors.WithLabelValues(kind.String()).Inc()
		return nil, err
	}
	return Fit(img, size), nil
}

// Fit scales img down so neither side exceeds size. Smaller images are
// returned unchanged.
func Fit(img image.Image, size int) image.Image {
	if size <= 0 {
		return img
	}
	return resize.Thumbnail(uint(size), uint(size), img, resize.Lanczos3)
}

func decodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

func firstFrame(ctx context.Context, path string) (image.Image, error) {
	bin, err := ffmpegPath()
	if err != nil {
		return nil, ErrUnsupported
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, bin,
		"-loglevel", "error",
		"-i", path,
		"-vframes", "1",
		"-f", "image2pipe",
		"-vcodec", "png",
		"-")
	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg %s: %w: %s", path, err, bytes.TrimSpace(stderr.Bytes()))
	}
	img, _, err := image.Decode(&out)
	if err != nil {
		return nil, fmt.Errorf("decode frame of %s: %w", path, err)
	}
	return img, nil
}
