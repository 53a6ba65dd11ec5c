// Package vfs writes track files into a FAT32 disk image instead of
// the host filesystem, so a split disc can be copied to a thumb drive
// or flashed to a device in one piece.
package vfs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/diskfs/go-diskfs"
	"github.com/diskfs/go-diskfs/disk"
	"github.com/diskfs/go-diskfs/filesystem"
	"github.com/diskfs/go-diskfs/filesystem/fat32"
	"github.com/diskfs/go-diskfs/partition/mbr"

	"github.com/matja/mdf2wav/split"
)

// DefaultSize is the default image size, enough for one full CD of
// uncompressed audio.
const DefaultSize = int64(700 * fat32.MB)

const sectorSize = 512

// Filesystem is a FAT32 filesystem inside a disk image on the host.
// It implements split.SinkCreator, so track files can be written
// directly into the image.
type Filesystem struct {
	fs   filesystem.FileSystem
	Path string
}

// ensure interface conformation
var _ split.SinkCreator = (*Filesystem)(nil)

// Create builds a new disk image at path with an MBR partition table
// and a single FAT32 partition of the given size. It fails if path
// already exists. Be sure to Close() the Filesystem after use.
func Create(path string, size int64) (*Filesystem, error) {
	if _, err := os.Stat(path); err == nil {
		return nil, fmt.Errorf("%q: %w, won't overwrite", path, fs.ErrExist)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	dsk, err := diskfs.Create(path, size, diskfs.SectorSizeDefault)
	if err != nil {
		return nil, err
	}

	// an MBR with one partition spanning the image
	table := &mbr.Table{
		LogicalSectorSize:  sectorSize,
		PhysicalSectorSize: sectorSize,
		Partitions: []*mbr.Partition{
			{
				Bootable: false,
				Type:     mbr.Linux,
				Start:    0,
				Size:     uint32(size / sectorSize),
			},
		},
	}
	if err := dsk.Partition(table); err != nil {
		defer os.Remove(path)
		return nil, err
	}
	fatfs, err := dsk.CreateFilesystem(disk.FilesystemSpec{
		Partition:   1,
		FSType:      filesystem.TypeFat32,
		VolumeLabel: "MDF2WAV",
	})
	if err != nil {
		defer os.Remove(path)
		return nil, err
	}

	return &Filesystem{fs: fatfs, Path: path}, nil
}

// Create opens a new track file at the root of the image. FAT32 has no
// equivalent of O_EXCL, so the root directory is scanned for the name
// first.
func (f *Filesystem) Create(name string) (split.Sink, error) {
	entries, err := f.fs.ReadDir("/")
	if err != nil {
		return nil, err
	}
	for _, fi := range entries {
		if !fi.IsDir() && strings.EqualFold(fi.Name(), name) {
			return nil, fmt.Errorf("%q: %w, won't overwrite", name, split.ErrTrackExists)
		}
	}
	file, err := f.fs.OpenFile("/"+name, os.O_CREATE|os.O_RDWR)
	if err != nil {
		return nil, fmt.Errorf("create track %v: %w", name, err)
	}
	return file, nil
}

// Close flushes the filesystem to the underlying image file.
func (f *Filesystem) Close() error {
	return f.fs.Close()
}
