package fsview

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
)

// Kind classifies an entry for thumbnailing and selection rules.
type Kind int

const (
	KindUnknown Kind = iota
	KindFile
	KindImage
	KindVideo
	KindDoc
	KindDir
	KindNotExist
)

func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindImage:
		return "image"
	case KindVideo:
		return "video"
	case KindDoc:
		return "doc"
	case KindDir:
		return "dir"
	case KindNotExist:
		return "missing"
	default:
		return "unknown"
	}
}

// Visual reports whether the kind has a picture thumbnail.
func (k Kind) Visual() bool {
	return k == KindImage || k == KindVideo
}

var extKinds = map[string]Kind{
	"png": KindImage, "jpg": KindImage, "jpeg": KindImage, "bmp": KindImage,
	"tiff": KindImage, "gif": KindImage, "webp": KindImage,
	"webm": KindVideo, "mkv": KindVideo, "mp4": KindVideo, "av1": KindVideo,
	"txt": KindDoc, "pdf": KindDoc, "doc": KindDoc, "docx": KindDoc,
	"xls": KindDoc, "xlsx": KindDoc,
}

func init() {
	filetype.AddType("jpeg", "image/jpeg")
	filetype.AddType("txt", "text/plain")
	filetype.AddType("av1", "video/AV1")
}

// sniffLen is the header size filetype needs to match every known type.
const sniffLen = 262

// Ext returns the lowercase extension of path without the dot.
func Ext(path string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
}

// Classify guesses the Kind and MIME type of a regular file. The extension
// decides; files without one have their header sniffed.
func Classify(path string) (Kind, string) {
	ext := Ext(path)
	if ext != "" {
		kind, ok := extKinds[ext]
		if !ok {
			kind = KindFile
		}
		mime := filetype.GetType(ext).MIME.Value
		return kind, mime
	}
	return sniff(path)
}

func sniff(path string) (Kind, string) {
	f, err := os.Open(path)
	if err != nil {
		return KindUnknown, ""
	}
	defer f.Close()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF {
		return KindFile, ""
	}
	head = head[:n]

	t, err := filetype.Match(head)
	if err != nil || t == filetype.Unknown {
		return KindFile, ""
	}
	switch {
	case filetype.IsImage(head):
		return KindImage, t.MIME.Value
	case filetype.IsVideo(head):
		return KindVideo, t.MIME.Value
	case filetype.IsDocument(head):
		return KindDoc, t.MIME.Value
	}
	return KindFile, t.MIME.Value
}
