package main

import (
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/bodgit/pcx"
	"github.com/urfave/cli/v2"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:  "version, V",
		Usage: "print the version",
	}
}

func decodeFile(file string) (image.Image, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	return img, err
}

func encodeFile(file string, img image.Image, paletted bool) error {
	f, err := os.Create(file)
	if err != nil {
		return err
	}
	defer f.Close()

	var encode func(io.Writer, image.Image) error

	switch strings.ToLower(filepath.Ext(file)) {
	case ".pcx":
		encode = pcx.Encode
		if paletted {
			encode = pcx.EncodePaletted
		}
	case ".png":
		encode = png.Encode
	case ".bmp":
		encode = bmp.Encode
	case ".tif", ".tiff":
		encode = func(w io.Writer, m image.Image) error {
			return tiff.Encode(w, m, nil)
		}
	case ".jpg", ".jpeg":
		encode = func(w io.Writer, m image.Image) error {
			return jpeg.Encode(w, m, nil)
		}
	default:
		return fmt.Errorf("unsupported output format \"%s\"", filepath.Ext(file))
	}

	return encode(f, img)
}

func main() {
	app := cli.NewApp()

	app.Name = "pcx"
	app.Usage = "PCX image conversion utility"
	app.Version = "1.0.0"

	app.Commands = []*cli.Command{
		{
			Name:      "info",
			Usage:     "Print the header of a PCX file",
			ArgsUsage: "FILE",
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				f, err := os.Open(c.Args().First())
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				defer f.Close()

				h, err := pcx.LoadHeader(f)
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				fmt.Printf("version:      %d\n", h.Version)
				fmt.Printf("compressed:   %t\n", h.Compressed)
				fmt.Printf("size:         %dx%d\n", h.Width, h.Height)
				fmt.Printf("planes:       %d\n", h.Planes)
				fmt.Printf("bit depth:    %d\n", h.BitDepth)
				fmt.Printf("lane length:  %d\n", h.LaneLength)
				fmt.Printf("dpi:          %dx%d\n", h.DPIX, h.DPIY)
				if h.IsPaletted() {
					fmt.Printf("palette:      %d colors\n", h.PaletteLength())
				} else {
					fmt.Printf("palette:      none (24-bit RGB)\n")
				}

				return nil
			},
		},
		{
			Name:      "convert",
			Usage:     "Convert an image to or from PCX format",
			ArgsUsage: "SRC DST",
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:  "paletted",
					Usage: "quantize to a 256-color paletted PCX",
				},
			},
			Action: func(c *cli.Context) error {
				if c.NArg() < 2 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				img, err := decodeFile(c.Args().Get(0))
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				if err := encodeFile(c.Args().Get(1), img, c.Bool("paletted")); err != nil {
					return cli.NewExitError(err, 1)
				}

				return nil
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
