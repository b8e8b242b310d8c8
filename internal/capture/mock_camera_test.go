package capture

import (
	"errors"
	"testing"

	"gocv.io/x/gocv"
)

func testFrames(t *testing.T, n int) []*gocv.Mat {
	t.Helper()

	frames := make([]*gocv.Mat, 0, n)
	for i := 0; i < n; i++ {
		mat := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
		frames = append(frames, &mat)
	}
	t.Cleanup(func() {
		for _, f := range frames {
			f.Close()
		}
	})
	return frames
}

func TestMockCamera_ReadBeforeOpen(t *testing.T) {
	cam := NewMockCamera(nil, false)

	_, err := cam.ReadFrame()
	if !errors.Is(err, ErrCameraNotOpen) {
		t.Errorf("ReadFrame() error = %v, want ErrCameraNotOpen", err)
	}
}

func TestMockCamera_PlaybackExhausts(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	cam := NewMockCamera(testFrames(t, 2), false)
	if err := cam.Open(); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 2; i++ {
		frame, err := cam.ReadFrame()
		if err != nil {
			t.Fatalf("ReadFrame() frame %d error = %v", i, err)
		}
		frame.Close()
	}

	if _, err := cam.ReadFrame(); err == nil {
		t.Error("ReadFrame() past the last frame should fail without loop")
	}
}

func TestMockCamera_LoopRestarts(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	cam := NewMockCamera(testFrames(t, 2), true)
	if err := cam.Open(); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 7; i++ {
		frame, err := cam.ReadFrame()
		if err != nil {
			t.Fatalf("ReadFrame() iteration %d error = %v", i, err)
		}
		frame.Close()
	}
}

func TestMockCamera_ReturnsClones(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	frames := testFrames(t, 1)
	cam := NewMockCamera(frames, true)
	if err := cam.Open(); err != nil {
		t.Fatal(err)
	}

	frame, err := cam.ReadFrame()
	if err != nil {
		t.Fatal(err)
	}
	frame.Close()

	// The source frame must survive the caller closing its copy.
	if frames[0].Empty() {
		t.Error("source frame was freed by closing the returned clone")
	}
}

func TestMockCamera_Reset(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	cam := NewMockCamera(testFrames(t, 1), false)
	if err := cam.Open(); err != nil {
		t.Fatal(err)
	}

	frame, err := cam.ReadFrame()
	if err != nil {
		t.Fatal(err)
	}
	frame.Close()

	cam.Reset()

	frame, err = cam.ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame() after Reset error = %v", err)
	}
	frame.Close()
}

func TestMockCamera_CloseStopsReads(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	cam := NewMockCamera(testFrames(t, 1), true)
	if err := cam.Open(); err != nil {
		t.Fatal(err)
	}
	if err := cam.Close(); err != nil {
		t.Fatal(err)
	}

	if _, err := cam.ReadFrame(); !errors.Is(err, ErrCameraNotOpen) {
		t.Errorf("ReadFrame() after Close error = %v, want ErrCameraNotOpen", err)
	}
}
