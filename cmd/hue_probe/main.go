// Command hue_probe reads the stop bar hue from a saved screenshot. Use it to
// check the region config and the hue references against real captures.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"

	"github.com/ConserveLee/questr/internal/config"
	"github.com/ConserveLee/questr/internal/constants"
	"github.com/ConserveLee/questr/internal/engine/screen"
	"github.com/ConserveLee/questr/internal/engine/vision"
)

func main() {
	fs := pflag.NewFlagSet("hue_probe", pflag.ExitOnError)
	cfgPath := fs.String("config", "config.yaml", "Region config file location.")
	region := fs.String("region", string(config.RegionStopBar), "Box region to sample.")
	unspun := fs.Uint8("unspun", constants.HueUnspun, "Hue of an unspun stop.")
	spun := fs.Uint8("spun", constants.HueSpun, "Hue of a spun stop.")
	dump := fs.String("dump", "", "Directory to write each sampled crop to.")
	_ = fs.Parse(os.Args[1:])

	if fs.NArg() == 0 {
		fmt.Println("usage: hue_probe [flags] screenshot.png...")
		os.Exit(2)
	}

	layout, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	box, err := layout.Box(config.Region(*region))
	if err != nil {
		fmt.Printf("Bad region: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Region %s: %v, references unspun=%d spun=%d\n", *region, box, *unspun, *spun)

	failed := false
	for _, path := range fs.Args() {
		img, err := screen.LoadImage(path)
		if err != nil {
			fmt.Printf("Failed to load %s: %v\n", path, err)
			failed = true
			continue
		}
		crop, err := screen.Crop(img, box)
		if err != nil {
			fmt.Printf("%s (%dx%d): %v\n", path, img.Bounds().Dx(), img.Bounds().Dy(), err)
			failed = true
			continue
		}

		fmt.Printf("\n=== %s (%dx%d) ===\n", path, img.Bounds().Dx(), img.Bounds().Dy())
		if *dump != "" {
			name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)) + "_" + *region + ".png"
			if err := screen.SaveImage(filepath.Join(*dump, name), crop); err != nil {
				fmt.Printf("  Failed to dump crop: %v\n", err)
			} else {
				fmt.Printf("  Crop written to %s\n", filepath.Join(*dump, name))
			}
		}
		h, s, v := screen.RGBToHSV(screen.Shrink(crop))
		fmt.Printf("  Centre pixel HSV: %d/%d/%d\n", h, s, v)

		r, err := vision.ImageAffinity(crop, *unspun, *spun)
		fmt.Printf("  Dominant hue: %d (dist unspun %d, spun %d)\n", r.Hue, r.DistA, r.DistB)
		if err != nil {
			fmt.Printf("  -> ambiguous: %v\n", err)
			continue
		}
		verdict := "unspun"
		if r.Affinity == vision.CloserToB {
			verdict = "spun"
		}
		fmt.Printf("  -> %s, %d%% confidence\n", verdict, r.Confidence())
	}
	if failed {
		os.Exit(1)
	}
}
