package tui

import (
	"bytes"
	"fmt"
	"image"
	_ "image/png"
	"os"
	"strings"
	"sync"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/charmbracelet/x/ansi/kitty"

	"github.com/wethinkt/go-pikeru/internal/thumb"
)

// Typical terminal cell size in pixels.
const cellW, cellH = 8, 16

// graphicsProtocol represents which terminal image protocol to use.
type graphicsProtocol int

const (
	protocolNone graphicsProtocol = iota
	protocolKitty
)

// detectGraphicsProtocol checks the terminal for kitty graphics support.
// PIKERU_GRAPHICS=none forces text tiles.
func detectGraphicsProtocol() graphicsProtocol {
	switch os.Getenv("PIKERU_GRAPHICS") {
	case "none":
		return protocolNone
	case "kitty":
		return protocolKitty
	}
	term := os.Getenv("TERM")
	termProgram := os.Getenv("TERM_PROGRAM")
	if strings.Contains(term, "kitty") || termProgram == "kitty" {
		return protocolKitty
	}
	// Ghostty and WezTerm implement unicode placeholders too.
	if termProgram == "ghostty" || termProgram == "WezTerm" || strings.Contains(term, "ghostty") {
		return protocolKitty
	}
	return protocolNone
}

var cachedProtocol struct {
	once     sync.Once
	protocol graphicsProtocol
}

func getGraphicsProtocol() graphicsProtocol {
	cachedProtocol.once.Do(func() {
		cachedProtocol.protocol = detectGraphicsProtocol()
	})
	return cachedProtocol.protocol
}

// placement is an image known to the terminal and the cells it covers.
type placement struct {
	ID      int32
	Columns int
	Rows    int
}

// imageTracker assigns stable kitty image IDs keyed by file path.
type imageTracker struct {
	mu          sync.Mutex
	nextID      int32
	assignments map[string]placement
}

func newImageTracker() *imageTracker {
	return &imageTracker{assignments: make(map[string]placement)}
}

// lookup returns the placement registered for key.
func (t *imageTracker) lookup(key string) (placement, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	p, ok := t.assignments[key]
	return p, ok
}

// assign registers key and returns its new placement. The ID stays below
// 2^24 so it fits the placeholder foreground color.
func (t *imageTracker) assign(key string, columns, rows int) placement {
	t.mu.Lock()
	defer t.mu.Unlock()
	if p, ok := t.assignments[key]; ok {
		return p
	}
	t.nextID = t.nextID%0xFFFFFF + 1
	p := placement{ID: t.nextID, Columns: columns, Rows: rows}
	t.assignments[key] = p
	return p
}

// forget drops key so it is transmitted again on next use.
func (t *imageTracker) forget(key string) {
	t.mu.Lock()
	delete(t.assignments, key)
	t.mu.Unlock()
}

// reset forgets every image and returns the sequence deleting them from
// the terminal, or "" when there were none.
func (t *imageTracker) reset() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.assignments) == 0 {
		return ""
	}
	clear(t.assignments)
	return ansi.KittyGraphics(nil, "a=d", "d=A", "q=2")
}

// fitCells scales a w x h pixel image into at most maxCols x maxRows cells.
func fitCells(w, h, maxCols, maxRows int) (columns, rows int) {
	if w <= 0 || h <= 0 || maxCols <= 0 || maxRows <= 0 {
		return 0, 0
	}
	columns = min(maxCols, max(1, (w+cellW-1)/cellW))
	rows = max(1, h*columns*cellW/w/cellH)
	if rows > maxRows {
		rows = maxRows
		columns = max(1, w*rows*cellH/h/cellW)
		columns = min(columns, maxCols)
	}
	return columns, rows
}

// loadImage decodes the image at path.
func loadImage(path string) (image.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("image decode: %w", err)
	}
	return img, nil
}

// transmitSequence generates the escape sequence to transmit img with
// virtual placement (U=1).
func transmitSequence(img image.Image, p placement) (string, error) {
	var buf bytes.Buffer
	err := kitty.EncodeGraphics(&buf, img, &kitty.Options{
		Action:           kitty.TransmitAndPut,
		Format:           kitty.PNG,
		Transmission:     kitty.Direct,
		ID:               int(p.ID),
		Columns:          p.Columns,
		Rows:             p.Rows,
		VirtualPlacement: true,
		Chunk:            true,
		Quite:            2,
	})
	if err != nil {
		return "", fmt.Errorf("kitty encode: %w", err)
	}
	return buf.String(), nil
}

// prepareImage registers the image at path under key, sized to fit
// maxCols x maxRows, and returns the transmit sequence. fit, when set,
// resizes the decoded image first. It returns "" when the terminal shows
// no images.
func (t *imageTracker) prepareImage(key, path string, maxCols, maxRows int, fit int) (string, error) {
	if getGraphicsProtocol() != protocolKitty {
		return "", nil
	}
	if _, ok := t.lookup(key); ok {
		return "", nil
	}
	img, err := loadImage(path)
	if err != nil {
		return "", err
	}
	if fit > 0 {
		img = thumb.Fit(img, fit)
	}
	b := img.Bounds()
	columns, rows := fitCells(b.Dx(), b.Dy(), maxCols, maxRows)
	if columns == 0 {
		return "", fmt.Errorf("empty image %s", path)
	}
	return transmitSequence(img, t.assign(key, columns, rows))
}

// placeholderGrid generates the Unicode placeholder cells the terminal
// replaces with image id.
func placeholderGrid(p placement) []string {
	r := byte((p.ID >> 16) & 0xFF)
	g := byte((p.ID >> 8) & 0xFF)
	b := byte(p.ID & 0xFF)

	fgColor := fmt.Sprintf("\x1b[38;2;%d;%d;%dm", r, g, b)
	reset := "\x1b[39m"
	ph := string(kitty.Placeholder)

	lines := make([]string, p.Rows)
	for row := range p.Rows {
		var sb strings.Builder
		sb.WriteString(fgColor)
		diacritic := string(kitty.Diacritic(row))
		for range p.Columns {
			sb.WriteString(ph)
			sb.WriteString(diacritic)
		}
		sb.WriteString(reset)
		lines[row] = sb.String()
	}
	return lines
}

// rawCmd sends seq straight to the terminal.
func rawCmd(seq string) tea.Cmd {
	if seq == "" {
		return nil
	}
	return tea.Raw(seq)
}
