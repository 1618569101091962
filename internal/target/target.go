// Package target describes the platforms generated libraries are built for.
package target

import (
	"fmt"
	"strings"
)

// Platform is the operating system family of the produced library.
type Platform uint8

const (
	Linux Platform = iota
	MacOS
	Windows
)

func (p Platform) String() string {
	switch p {
	case Linux:
		return "linux"
	case MacOS:
		return "macos"
	case Windows:
		return "windows"
	default:
		return fmt.Sprintf("Platform(%d)", p)
	}
}

// ParsePlatform accepts the manifest and flag spellings.
func ParsePlatform(s string) (Platform, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "linux":
		return Linux, nil
	case "macos", "darwin", "osx":
		return MacOS, nil
	case "windows", "mingw", "win":
		return Windows, nil
	default:
		return Linux, fmt.Errorf("unknown platform %q (expected linux|macos|windows)", s)
	}
}

// Target describes the ABI target triple and its pointer properties.
type Target struct {
	Platform Platform
	Triple   string
	PtrSize  int // bytes
	PtrAlign int // bytes
}

// For returns the default 64-bit target of a platform.
func For(p Platform) Target {
	switch p {
	case MacOS:
		return Target{Platform: MacOS, Triple: "arm64-apple-macos", PtrSize: 8, PtrAlign: 8}
	case Windows:
		return Target{Platform: Windows, Triple: "x86_64-pc-windows-gnu", PtrSize: 8, PtrAlign: 8}
	default:
		return Target{Platform: Linux, Triple: "x86_64-unknown-linux-gnu", PtrSize: 8, PtrAlign: 8}
	}
}

// NeedsExportList reports whether the linker needs an explicit list of
// exported symbols (a module-definition file).
func (t Target) NeedsExportList() bool {
	return t.Platform == Windows
}

// LibraryName returns the file name of the shared library for base.
func (t Target) LibraryName(base string) string {
	switch t.Platform {
	case MacOS:
		return "lib" + base + ".dylib"
	case Windows:
		return base + ".dll"
	default:
		return "lib" + base + ".so"
	}
}
