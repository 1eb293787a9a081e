package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pthm-cable/tubeglow/field"
	"github.com/pthm-cable/tubeglow/pulse"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// FieldSnapshot holds the tube field at one frame. Together with the seed it
// lets a headless run be compared against another.
type FieldSnapshot struct {
	Version int    `json:"version"`
	RNGSeed int64  `json:"rng_seed"`
	Frame   uint64 `json:"frame"`

	Width  int `json:"width"`
	Height int `json:"height"`

	Tubes []TubeState `json:"tubes"`
}

// TubeState holds one tube's geometry and pulse.
type TubeState struct {
	Index   int         `json:"index"`
	YAnchor float64     `json:"y_anchor"`
	StartX  float64     `json:"start_x"`
	StartY  float64     `json:"start_y"`
	EndX    float64     `json:"end_x"`
	EndY    float64     `json:"end_y"`
	Length  float64     `json:"length"`
	Pulse   pulse.Pulse `json:"pulse"`
	Lit     bool        `json:"lit"`
}

// NewFieldSnapshot captures f. A nil field gives a snapshot with no tubes.
func NewFieldSnapshot(f *field.Field, frame uint64, seed int64) *FieldSnapshot {
	snap := &FieldSnapshot{
		Version: SnapshotVersion,
		RNGSeed: seed,
		Frame:   frame,
	}
	if f == nil {
		return snap
	}

	vp := f.Viewport()
	snap.Width, snap.Height = vp.Width, vp.Height
	for _, t := range f.Tubes() {
		snap.Tubes = append(snap.Tubes, TubeState{
			Index:   t.Index,
			YAnchor: t.YAnchor,
			StartX:  t.Segment.Start.X,
			StartY:  t.Segment.Start.Y,
			EndX:    t.Segment.End.X,
			EndY:    t.Segment.End.Y,
			Length:  t.Segment.Length,
			Pulse:   t.Pulse,
			Lit:     t.Pulse.Visible(t.Segment.Length),
		})
	}
	return snap
}

// SaveSnapshot writes a snapshot to disk.
// Returns the filepath where it was saved.
func SaveSnapshot(snapshot *FieldSnapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("snapshot_%d.json", snapshot.Frame))

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}

	return path, nil
}

// LoadSnapshot reads a snapshot from disk.
func LoadSnapshot(path string) (*FieldSnapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot FieldSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	if snapshot.Version != SnapshotVersion {
		return nil, fmt.Errorf("unsupported snapshot version %d", snapshot.Version)
	}

	return &snapshot, nil
}
