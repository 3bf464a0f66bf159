package filemover

import (
	"os"
	"path/filepath"
)

// FileMover ...
type FileMover interface {
	MkdirAll(dir string) error
	Files(dir string) ([]string, error)
	Move(src, dst string) error
}

type fileMover struct{}

// NewFileMover ...
func NewFileMover() FileMover {
	return fileMover{}
}

func (m fileMover) MkdirAll(dir string) error {
	return os.MkdirAll(dir, 0755)
}

// Files lists the regular files directly inside dir, as absolute paths.
func (m fileMover) Files(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	return files, nil
}

func (m fileMover) Move(src, dst string) error {
	return os.Rename(src, dst)
}
