// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package persistence

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/ffutop/m18link/internal/emulator/model"
)

// FileStorage implements persistence using plain file reads and writes.
// The whole image is written back on every change.
type FileStorage struct {
	path string
	file *os.File
	data []byte
}

// NewFileStorage creates a new FileStorage.
func NewFileStorage(path string) *FileStorage {
	return &FileStorage{
		path: path,
	}
}

// Load reads the image from the file, creating it if necessary.
func (fs *FileStorage) Load() (*model.Image, bool, error) {
	f, err := os.OpenFile(fs.path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, false, fmt.Errorf("failed to open file: %w", err)
	}
	fs.file = f

	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, false, err
	}
	if fi.Size() != int64(totalSize) {
		if err := f.Truncate(int64(totalSize)); err != nil {
			f.Close()
			return nil, false, fmt.Errorf("failed to resize file: %w", err)
		}
	}

	data, err := io.ReadAll(f)
	if err != nil {
		f.Close()
		return nil, false, fmt.Errorf("failed to read file: %w", err)
	}
	fs.data = data

	img, fresh, err := mapBytesToImage(data)
	if err != nil {
		fs.Close()
		return nil, false, err
	}
	return img, fresh, nil
}

// Save flushes the data to disk.
func (fs *FileStorage) Save(img *model.Image) error {
	return fs.sync()
}

// OnWrite syncs the file so a crash loses no writes.
func (fs *FileStorage) OnWrite(address uint16, length int) {
	if err := fs.sync(); err != nil {
		slog.Error("Failed to sync file", "err", err)
	}
}

func (fs *FileStorage) sync() error {
	if fs.data == nil || fs.file == nil {
		return nil
	}
	if _, err := fs.file.WriteAt(fs.data, 0); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := fs.file.Sync(); err != nil {
		return fmt.Errorf("failed to sync file to disk: %w", err)
	}
	return nil
}

// Close the file.
func (fs *FileStorage) Close() error {
	if fs.file == nil {
		return nil
	}
	err := fs.file.Close()
	fs.file = nil
	return err
}
