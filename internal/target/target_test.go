package target

import "testing"

func TestParsePlatform(t *testing.T) {
	tests := []struct {
		in      string
		want    Platform
		wantErr bool
	}{
		{in: "", want: Linux},
		{in: "Linux", want: Linux},
		{in: "darwin", want: MacOS},
		{in: "mingw", want: Windows},
		{in: "plan9", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParsePlatform(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParsePlatform(%q) error = %v", tt.in, err)
		}
		if !tt.wantErr && got != tt.want {
			t.Fatalf("ParsePlatform(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestExportListOnlyOnWindows(t *testing.T) {
	if For(Linux).NeedsExportList() || For(MacOS).NeedsExportList() {
		t.Fatalf("only windows needs an export list")
	}
	win := For(Windows)
	if !win.NeedsExportList() || win.LibraryName("demo") != "demo.dll" {
		t.Fatalf("unexpected windows target %+v", win)
	}
	if For(MacOS).LibraryName("demo") != "libdemo.dylib" {
		t.Fatalf("unexpected macos library name")
	}
}
