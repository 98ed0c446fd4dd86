package loguru

import (
	"io/fs"
	"os"
	"time"
)

// fakeFileInfo is a minimal os.FileInfo stand-in for retention-policy
// tests, which only ever inspect Name and ModTime.
type fakeFileInfo struct {
	name string
	mod  time.Time
}

func (f fakeFileInfo) Name() string       { return f.name }
func (f fakeFileInfo) Size() int64        { return 0 }
func (f fakeFileInfo) Mode() fs.FileMode  { return 0 }
func (f fakeFileInfo) ModTime() time.Time { return f.mod }
func (f fakeFileInfo) IsDir() bool        { return false }
func (f fakeFileInfo) Sys() interface{}   { return nil }

func toFileInfos(fakes []fakeFileInfo) []os.FileInfo {
	out := make([]os.FileInfo, len(fakes))
	for i, f := range fakes {
		out[i] = f
	}
	return out
}
