package config

import (
	"os"
	"os/exec"
	"path/filepath"
)

const wrapperName = "pikeru-wrapper.sh"

var wrapperDirs = []string{
	"/usr/share/xdg-desktop-portal-pikeru",
	"/usr/local/share/xdg-desktop-portal-pikeru",
	"/opt/pikeru/contrib",
}

// FindPickerWrapper locates the script the portal launches the picker
// through. It looks next to the running executable, in
// ../share/xdg-desktop-portal-pikeru relative to it, on PATH and then in
// the system share directories. The first system location is returned
// when nothing is found so the config still names a path.
func FindPickerWrapper() string {
	if p := findWrapper(os.Executable, os.Stat, exec.LookPath, wrapperDirs); p != "" {
		return p
	}
	return filepath.Join(wrapperDirs[0], wrapperName)
}

type executablePathFn func() (string, error)
type statFn func(string) (os.FileInfo, error)
type lookPathFn func(string) (string, error)

func findWrapper(executable executablePathFn, stat statFn, lookPath lookPathFn, systemDirs []string) string {
	isFile := func(p string) bool {
		info, err := stat(p)
		return err == nil && !info.IsDir()
	}

	if execPath, err := executable(); err == nil {
		binDir := filepath.Dir(execPath)
		for _, dir := range []string{
			binDir,
			filepath.Join(binDir, "..", "share", "xdg-desktop-portal-pikeru"),
			filepath.Join(binDir, "..", "contrib"),
		} {
			if c := filepath.Join(dir, wrapperName); isFile(c) {
				return filepath.Clean(c)
			}
		}
	}

	if p, err := lookPath(wrapperName); err == nil {
		return p
	}

	for _, dir := range systemDirs {
		if c := filepath.Join(dir, wrapperName); isFile(c) {
			return c
		}
	}
	return ""
}
