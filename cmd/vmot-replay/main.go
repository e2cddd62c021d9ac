// Command vmot-replay runs recorded frames and detections through the tracker
// and writes the tracked objects of every frame as CSV.
package main

import (
	"flag"
	"log"
	"os"

	"github.com/LdDl/vmot/mot"
)

func main() {
	configPath := flag.String("config", "", "JSON tracker configuration (defaults are used when empty)")
	framesDir := flag.String("frames", "", "Directory of raw NV12 *.yuv frames, replayed in name order")
	width := flag.Int("width", 0, "Frame width in pixels")
	height := flag.Int("height", 0, "Frame height in pixels")
	detectionsPath := flag.String("detections", "", "CSV of detections: frame,x,y,w,h,map_id")
	outPath := flag.String("out", "", "Output CSV filename (defaults to stdout)")
	interval := flag.Int("interval", 0, "Treat every N-th frame as a detection cycle even without rows (0 disables)")
	quiet := flag.Bool("quiet", false, "Mute tracker logging")
	flag.Parse()

	if *framesDir == "" || *width <= 0 || *height <= 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg := mot.DefaultConfig()
	if *configPath != "" {
		loaded, err := mot.LoadConfig(*configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
		cfg = loaded
	}

	dets := map[int][]mot.Detection{}
	if *detectionsPath != "" {
		f, err := os.Open(*detectionsPath)
		if err != nil {
			log.Fatalf("failed to open detections: %v", err)
		}
		dets, err = readDetections(f)
		f.Close()
		if err != nil {
			log.Fatalf("failed to read detections: %v", err)
		}
	}

	frames, err := listFrames(*framesDir)
	if err != nil {
		log.Fatalf("failed to list frames: %v", err)
	}

	out := os.Stdout
	if *outPath != "" {
		out, err = os.Create(*outPath)
		if err != nil {
			log.Fatalf("failed to create output: %v", err)
		}
		defer out.Close()
	}

	r := &replay{
		cfg:        cfg,
		width:      *width,
		height:     *height,
		interval:   *interval,
		detections: dets,
		quiet:      *quiet,
	}
	n, err := r.run(frames, out)
	if err != nil {
		log.Fatalf("replay failed after %d frames: %v", n, err)
	}
	log.Printf("replayed %d frames", n)
}
