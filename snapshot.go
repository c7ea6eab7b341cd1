package mandel

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/gogpu/mandel/palette"
)

// SnapshotSize is the encoded size of a Snapshot in bytes.
const SnapshotSize = 48

// Snapshot is the flat view-parameter record exchanged with persistence
// layers: the full ViewParameters plus the UI-side quality-mode flags,
// written and read as a single fixed-layout block.
//
// Layout (little-endian):
//
//	offset  0  centerX            float64
//	offset  8  centerY            float64
//	offset 16  zoom               float64
//	offset 24  iterationBound     int32
//	offset 28  palette            int32
//	offset 32  colorPhase         float64
//	offset 40  highQuality        uint8 (bool)
//	offset 41  adaptiveScale      uint8 (bool)
//	offset 42  smoothZoom         uint8 (bool)
//	offset 43  (padding)          uint8
//	offset 44  qualityMultiplier  int32
type Snapshot struct {
	CenterX        float64
	CenterY        float64
	Zoom           float64
	IterationBound int32
	Palette        palette.Palette
	ColorPhase     float64

	// Quality-mode flags are carried for the UI layer; the engine itself
	// only ever sees the effective iteration bound.
	HighQuality       bool
	AdaptiveScale     bool
	SmoothZoom        bool
	QualityMultiplier int32
}

// ViewParameters extracts the engine-facing parameters from the snapshot.
func (s Snapshot) ViewParameters() ViewParameters {
	return ViewParameters{
		CenterX:        s.CenterX,
		CenterY:        s.CenterY,
		Zoom:           s.Zoom,
		IterationBound: s.IterationBound,
		Palette:        s.Palette,
		ColorPhase:     s.ColorPhase,
	}
}

// EncodeSnapshot writes the fixed-layout binary record to w.
func EncodeSnapshot(w io.Writer, s Snapshot) error {
	var buf [SnapshotSize]byte
	le := binary.LittleEndian

	le.PutUint64(buf[0:8], math.Float64bits(s.CenterX))
	le.PutUint64(buf[8:16], math.Float64bits(s.CenterY))
	le.PutUint64(buf[16:24], math.Float64bits(s.Zoom))
	le.PutUint32(buf[24:28], uint32(s.IterationBound))
	le.PutUint32(buf[28:32], uint32(s.Palette))
	le.PutUint64(buf[32:40], math.Float64bits(s.ColorPhase))
	buf[40] = encodeBool(s.HighQuality)
	buf[41] = encodeBool(s.AdaptiveScale)
	buf[42] = encodeBool(s.SmoothZoom)
	le.PutUint32(buf[44:48], uint32(s.QualityMultiplier))

	if _, err := w.Write(buf[:]); err != nil {
		return fmt.Errorf("mandel: encode snapshot: %w", err)
	}
	return nil
}

// DecodeSnapshot reads one fixed-layout binary record from r and validates
// its ranges (zoom and iteration bound positive, palette known).
func DecodeSnapshot(r io.Reader) (Snapshot, error) {
	var buf [SnapshotSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return Snapshot{}, fmt.Errorf("mandel: decode snapshot: %w", err)
	}
	le := binary.LittleEndian

	s := Snapshot{
		CenterX:           math.Float64frombits(le.Uint64(buf[0:8])),
		CenterY:           math.Float64frombits(le.Uint64(buf[8:16])),
		Zoom:              math.Float64frombits(le.Uint64(buf[16:24])),
		IterationBound:    int32(le.Uint32(buf[24:28])),
		Palette:           palette.Palette(le.Uint32(buf[28:32])),
		ColorPhase:        math.Float64frombits(le.Uint64(buf[32:40])),
		HighQuality:       buf[40] != 0,
		AdaptiveScale:     buf[41] != 0,
		SmoothZoom:        buf[42] != 0,
		QualityMultiplier: int32(le.Uint32(buf[44:48])),
	}

	if err := s.ViewParameters().Validate(); err != nil {
		return Snapshot{}, fmt.Errorf("mandel: decode snapshot: %w", err)
	}
	return s, nil
}

func encodeBool(b bool) byte {
	if b {
		return 1
	}
	return 0
}
