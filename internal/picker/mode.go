package picker

import (
	"fmt"
	"strings"
)

// Mode is what the dialog was opened to pick.
type Mode int

const (
	ModeFile  Mode = iota // one file
	ModeFiles             // any number of files
	ModeSave              // a path to write
	ModeDir               // one directory
)

func (m Mode) String() string {
	switch m {
	case ModeFiles:
		return "files"
	case ModeSave:
		return "save"
	case ModeDir:
		return "dir"
	default:
		return "file"
	}
}

// ParseMode maps the -m flag value to a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "file":
		return ModeFile, nil
	case "files", "":
		return ModeFiles, nil
	case "save":
		return ModeSave, nil
	case "dir":
		return ModeDir, nil
	}
	return ModeFiles, fmt.Errorf("unknown mode %q (want file, files, save or dir)", s)
}

// Multi reports whether several items may be selected at once.
func (m Mode) Multi() bool { return m == ModeFiles }

