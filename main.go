// Command mdf2wav converts a raw CD-DA disc image with subchannel data,
// read from stdin, into one WAV file per track, using the subcode P
// channel to identify track positions.
//
// Output files are named "track_XX.wav" where XX is the track number
// starting from 01. Existing files are never overwritten: a name
// collision aborts the run.
//
// usage:
//
//	mdf2wav [-C dir] [-prefix name] [-z] < disk.mdf
//	mdf2wav -img disk.img [-img-size bytes] [-z] < disk.mdf
package main

import (
	"flag"
	"io"
	"log"
	"os"

	"github.com/golang/snappy"

	"github.com/matja/mdf2wav/split"
	"github.com/matja/mdf2wav/vfs"
)

func main() {
	logger := log.New(os.Stderr, "", 0)
	if err := run(logger); err != nil {
		logger.Println(err)
		os.Exit(1)
	}
}

func run(logger *log.Logger) error {
	dir := flag.String("C", ".", "directory to write track files into")
	prefix := flag.String("prefix", "track_", "track file name prefix")
	img := flag.String("img", "", "write tracks into a FAT32 disk image at this path instead of a directory")
	imgSize := flag.Int64("img-size", vfs.DefaultSize, "disk image size in bytes (with -img)")
	compressed := flag.Bool("z", false, "input is a snappy-compressed stream")
	flag.Parse()

	var in io.Reader = os.Stdin
	if *compressed {
		in = snappy.NewReader(in)
	}

	var creator split.SinkCreator = split.Dir(*dir)
	if *img != "" {
		fsys, err := vfs.Create(*img, *imgSize)
		if err != nil {
			return err
		}
		defer fsys.Close()
		creator = fsys
	}

	return split.Run(in, &split.Session{
		Creator: creator,
		Prefix:  *prefix,
		Logger:  logger,
	})
}
