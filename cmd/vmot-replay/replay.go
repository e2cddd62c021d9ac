package main

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/LdDl/vmot/frame"
	"github.com/LdDl/vmot/geom"
	"github.com/LdDl/vmot/internal/monitoring"
	"github.com/LdDl/vmot/mot"
	"github.com/pkg/errors"
)

var outputHeader = []string{"frame", "id", "uid", "status", "x", "y", "w", "h", "map_id", "confidence"}

// readDetections parses frame,x,y,w,h,map_id rows keyed by frame index.
// A header row is skipped when its first field is not a number.
func readDetections(r io.Reader) (map[int][]mot.Detection, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 6
	cr.TrimLeadingSpace = true
	cr.Comment = '#'
	out := make(map[int][]mot.Detection)
	line := 0
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "can't read detection row")
		}
		line++
		idx, err := strconv.Atoi(strings.TrimSpace(rec[0]))
		if err != nil {
			if line == 1 {
				continue
			}
			return nil, errors.Wrapf(err, "row %d: invalid frame index %q", line, rec[0])
		}
		var box [4]float64
		for i := range box {
			box[i], err = strconv.ParseFloat(strings.TrimSpace(rec[i+1]), 64)
			if err != nil {
				return nil, errors.Wrapf(err, "row %d: invalid coordinate %q", line, rec[i+1])
			}
		}
		mapID, err := strconv.ParseInt(strings.TrimSpace(rec[5]), 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "row %d: invalid map_id %q", line, rec[5])
		}
		out[idx] = append(out[idx], mot.Detection{
			BBox:  geom.NewRect(box[0], box[1], box[2], box[3]),
			MapID: mapID,
		})
	}
	return out, nil
}

// listFrames returns the *.yuv files of dir sorted by name.
func listFrames(dir string) ([]string, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yuv"))
	if err != nil {
		return nil, errors.Wrap(err, "can't list frames")
	}
	if len(paths) == 0 {
		return nil, errors.Errorf("no *.yuv frames in %s", dir)
	}
	sort.Strings(paths)
	return paths, nil
}

// loadNV12 reads one raw NV12 frame.
func loadNV12(path string, width, height int) (*frame.Frame, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "can't read frame %s", path)
	}
	f := frame.NewNV12(width, height)
	if len(data) != len(f.Y)+len(f.U) {
		return nil, errors.Errorf("frame %s has %d bytes, expected %d for %dx%d NV12", path, len(data), len(f.Y)+len(f.U), width, height)
	}
	copy(f.Y, data[:len(f.Y)])
	copy(f.U, data[len(f.Y):])
	return f, nil
}

type replay struct {
	cfg        mot.Config
	width      int
	height     int
	interval   int
	detections map[int][]mot.Detection
	quiet      bool
}

// isDetectionCycle reports whether frame idx goes through MatchObjects.
func (r *replay) isDetectionCycle(idx int) bool {
	if _, ok := r.detections[idx]; ok {
		return true
	}
	return r.interval > 0 && idx%r.interval == 0
}

// run feeds every frame through a fresh tracker and writes CSV rows to w.
// It returns the number of frames processed.
func (r *replay) run(frames []string, w io.Writer) (int, error) {
	if r.quiet {
		monitoring.SetLogger(nil)
	}
	tracker, err := mot.NewTracker(r.cfg)
	if err != nil {
		return 0, err
	}
	defer tracker.Close()

	cw := csv.NewWriter(w)
	if err := cw.Write(outputHeader); err != nil {
		return 0, errors.Wrap(err, "can't write header")
	}
	for idx, path := range frames {
		f, err := loadNV12(path, r.width, r.height)
		if err != nil {
			return idx, err
		}
		var objs []mot.TrackedObject
		if r.isDetectionCycle(idx) {
			objs, err = tracker.MatchObjects(f, r.detections[idx])
		} else {
			objs, err = tracker.TrackObjects(f)
		}
		if err != nil {
			return idx, errors.Wrapf(err, "frame %d", idx)
		}
		for _, o := range objs {
			if err := cw.Write(objectRow(idx, o)); err != nil {
				return idx, errors.Wrap(err, "can't write row")
			}
		}
	}
	cw.Flush()
	return len(frames), errors.Wrap(cw.Error(), "can't flush output")
}

func objectRow(idx int, o mot.TrackedObject) []string {
	return []string{
		strconv.Itoa(idx),
		strconv.Itoa(o.ID),
		o.UID.String(),
		o.Status.String(),
		strconv.FormatFloat(o.BBox.X, 'f', 2, 64),
		strconv.FormatFloat(o.BBox.Y, 'f', 2, 64),
		strconv.FormatFloat(o.BBox.Width, 'f', 2, 64),
		strconv.FormatFloat(o.BBox.Height, 'f', 2, 64),
		strconv.FormatInt(o.MapID, 10),
		strconv.FormatFloat(o.Confidence, 'f', 3, 64),
	}
}
