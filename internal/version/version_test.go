package version

import (
	"runtime"
	"strings"
	"testing"
)

func TestGetPrefersLdflags(t *testing.T) {
	old := Version
	Version = "v9.9.9"
	t.Cleanup(func() { Version = old })

	if got := Get(); got != "v9.9.9" {
		t.Errorf("Get() = %q", got)
	}
	info := GetInfo("pikeru")
	if info.Name != "pikeru" || info.Version != "v9.9.9" {
		t.Errorf("GetInfo = %+v", info)
	}
	if info.GoVersion != runtime.Version() || info.Platform != runtime.GOOS+"/"+runtime.GOARCH {
		t.Errorf("runtime fields = %q %q", info.GoVersion, info.Platform)
	}
}

func TestString(t *testing.T) {
	old := Version
	Version = "v1.2.3"
	t.Cleanup(func() { Version = old })

	s := String("pikeru")
	if !strings.HasPrefix(s, "pikeru version v1.2.3 (") {
		t.Errorf("String() = %q", s)
	}
}
