package storage

import (
	"context"
	"os"
)

type FileScriptState struct {
	FilePath string
}

func NewFileScriptState(filePath string) *FileScriptState {
	return &FileScriptState{FilePath: filePath}
}

func (f *FileScriptState) Load(ctx context.Context) ([]byte, error) {
	return os.ReadFile(f.FilePath)
}
