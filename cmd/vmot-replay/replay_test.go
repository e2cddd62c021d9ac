package main

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/LdDl/vmot/frame"
	"github.com/LdDl/vmot/geom"
	"github.com/LdDl/vmot/mot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadDetections(t *testing.T) {
	in := "frame,x,y,w,h,map_id\n0, 10, 10, 20, 20, 7\n# skipped\n0,40,40,8,8,8\n3,1.5,2,3,4,9\n"
	dets, err := readDetections(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, dets[0], 2)
	require.Len(t, dets[3], 1)
	assert.Equal(t, int64(7), dets[0][0].MapID)
	assert.Equal(t, 1.5, dets[3][0].BBox.X)

	_, err = readDetections(strings.NewReader("0,1,2,3,4,5\nx,1,2,3,4,5\n"))
	assert.Error(t, err, "only the first row may be a header")
	_, err = readDetections(strings.NewReader("0,1,2,3\n"))
	assert.Error(t, err)
}

func TestIsDetectionCycle(t *testing.T) {
	r := &replay{interval: 4, detections: map[int][]mot.Detection{1: nil}}
	assert.True(t, r.isDetectionCycle(0))
	assert.True(t, r.isDetectionCycle(1))
	assert.False(t, r.isDetectionCycle(2))
	assert.True(t, r.isDetectionCycle(8))
	r.interval = 0
	assert.False(t, r.isDetectionCycle(8))
}

func writeFrames(t *testing.T, dir string, n, size int) []string {
	t.Helper()
	paths := make([]string, n)
	for i := 0; i < n; i++ {
		f := frame.NewNV12(size, size)
		f.Fill(image.Rect(10, 10, 30, 30), 235, 128, 128)
		paths[i] = filepath.Join(dir, fmt.Sprintf("frame_%04d.yuv", i))
		data := append(append([]byte(nil), f.Y...), f.U...)
		require.NoError(t, os.WriteFile(paths[i], data, 0o644))
	}
	return paths
}

func TestReplayRun(t *testing.T) {
	dir := t.TempDir()
	writeFrames(t, dir, 6, 64)
	frames, err := listFrames(dir)
	require.NoError(t, err)
	require.Len(t, frames, 6)

	det := mot.Detection{BBox: geom.NewRect(10, 10, 20, 20), MapID: 3}
	r := &replay{
		cfg:    mot.DefaultConfig(),
		width:  64,
		height: 64,
		detections: map[int][]mot.Detection{
			0: {det}, 1: {det}, 2: {det},
		},
		quiet: true,
	}
	var buf bytes.Buffer
	n, err := r.run(frames, &buf)
	require.NoError(t, err)
	assert.Equal(t, 6, n)

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 7)
	assert.Equal(t, outputHeader, rows[0])
	assert.Equal(t, "building", rows[1][3])
	for _, row := range rows[3:] {
		assert.Equal(t, "1", row[1])
		assert.Equal(t, "active", row[3])
		assert.Equal(t, "3", row[8])
	}
}

func TestReplayRejectsWrongFrameSize(t *testing.T) {
	dir := t.TempDir()
	writeFrames(t, dir, 1, 32)
	frames, err := listFrames(dir)
	require.NoError(t, err)
	r := &replay{cfg: mot.DefaultConfig(), width: 64, height: 64, quiet: true}
	_, err = r.run(frames, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestListFramesEmptyDir(t *testing.T) {
	_, err := listFrames(t.TempDir())
	assert.Error(t, err)
}
