package marauder

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/afero"
)

const DEF_CHUNK_SIZE = 32 * 1024

// moveFile moves src to dst on fs.
//
// It first tries a rename. If the rename fails because src and dst live on
// different devices (the staging directory may sit on another mount than the
// output root), it falls back to copy+delete.
func moveFile(fs afero.Fs, src, dst string) error {
	err := fs.Rename(src, dst)
	if err == nil {
		return nil
	}
	if !isCrossDeviceError(err) {
		return fmt.Errorf("moveFile %s -> %s: %w", src, dst, err)
	}
	if err := copyAndDelete(fs, src, dst); err != nil {
		return fmt.Errorf("moveFile %s -> %s (cross-device): %w", src, dst, err)
	}
	return nil
}

// copyAndDelete copies src to dst keeping its permissions, then removes src.
// A partially written dst is removed on failure; src is only removed after
// dst has been synced and closed.
func copyAndDelete(fs afero.Fs, src, dst string) error {
	srcInfo, err := fs.Stat(src)
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}
	srcFile, err := fs.Open(src)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer srcFile.Close()

	dstFile, err := fs.OpenFile(dst, os.O_RDWR|os.O_CREATE|os.O_TRUNC, srcInfo.Mode().Perm())
	if err != nil {
		return fmt.Errorf("create destination: %w", err)
	}
	copied := false
	defer func() {
		dstFile.Close()
		if !copied {
			fs.Remove(dst)
		}
	}()

	buf := make([]byte, DEF_CHUNK_SIZE)
	if _, err = io.CopyBuffer(dstFile, srcFile, buf); err != nil {
		return fmt.Errorf("copy content: %w", err)
	}
	if err := dstFile.Sync(); err != nil {
		return fmt.Errorf("sync destination: %w", err)
	}
	if err := dstFile.Close(); err != nil {
		return fmt.Errorf("close destination: %w", err)
	}
	copied = true

	srcFile.Close()
	if err := fs.Remove(src); err != nil {
		return fmt.Errorf("remove source: %w", err)
	}
	return nil
}
