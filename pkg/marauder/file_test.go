package marauder

import (
	"errors"
	"os"
	"testing"

	"github.com/spf13/afero"
)

func TestMoveFile_SameDevice(t *testing.T) {
	fs := afero.NewMemMapFs()
	_ = afero.WriteFile(fs, "/stage/1.jpg", []byte("payload"), 0644)
	_ = fs.MkdirAll("/dest", 0755)

	if err := moveFile(fs, "/stage/1.jpg", "/dest/1.jpg"); err != nil {
		t.Fatalf("moveFile: %v", err)
	}
	if ok, _ := afero.Exists(fs, "/stage/1.jpg"); ok {
		t.Error("source should be gone")
	}
	data, err := afero.ReadFile(fs, "/dest/1.jpg")
	if err != nil || string(data) != "payload" {
		t.Fatalf("destination content = %q, %v", data, err)
	}
}

func TestMoveFile_MissingSource(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := moveFile(fs, "/stage/nope.jpg", "/dest/nope.jpg"); err == nil {
		t.Fatal("expected error for missing source")
	}
}

func TestCopyAndDelete(t *testing.T) {
	fs := afero.NewMemMapFs()
	_ = afero.WriteFile(fs, "/stage/2.png", []byte("png-bytes"), 0600)
	_ = fs.MkdirAll("/dest", 0755)

	if err := copyAndDelete(fs, "/stage/2.png", "/dest/2.png"); err != nil {
		t.Fatalf("copyAndDelete: %v", err)
	}
	if ok, _ := afero.Exists(fs, "/stage/2.png"); ok {
		t.Error("source should be removed after copy")
	}
	info, err := fs.Stat("/dest/2.png")
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("permissions not preserved: %v", info.Mode().Perm())
	}
}

func TestCopyAndDelete_ReadOnlyDestination(t *testing.T) {
	base := afero.NewMemMapFs()
	_ = afero.WriteFile(base, "/stage/3.jpg", []byte("x"), 0644)
	ro := afero.NewReadOnlyFs(base)

	if err := copyAndDelete(ro, "/stage/3.jpg", "/dest/3.jpg"); err == nil {
		t.Fatal("expected error on read-only filesystem")
	}
	if ok, _ := afero.Exists(base, "/stage/3.jpg"); !ok {
		t.Error("source must survive a failed copy")
	}
}

func TestIsCrossDeviceError_Other(t *testing.T) {
	if isCrossDeviceError(nil) {
		t.Error("nil is not a cross-device error")
	}
	if isCrossDeviceError(errors.New("boom")) {
		t.Error("plain error is not a cross-device error")
	}
	if isCrossDeviceError(&os.LinkError{Op: "rename", Old: "a", New: "b", Err: os.ErrPermission}) {
		t.Error("permission error is not a cross-device error")
	}
}
