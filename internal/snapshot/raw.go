package snapshot

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"heat2d/internal/core"
)

// Metadata is the JSON sidecar written next to every raw snapshot.
type Metadata struct {
	Iteration int     `json:"iteration"`
	Time      float64 `json:"time"`
	Dt        float64 `json:"dt"`
	// GridSpacing is {dy, dx}, matching AxisLabels.
	GridSpacing [2]float64 `json:"gridSpacing"`
	AxisLabels  [2]string  `json:"axisLabels"`
	Extent      core.Vec2  `json:"extent"`
	DataOrder   string     `json:"dataOrder"`
	Encoding    string     `json:"encoding"`
	File        string     `json:"file"`
}

// Raw writes step_NNNNNN.bin (little-endian float64, row-major, no padding)
// plus a step_NNNNNN.json sidecar.
type Raw struct {
	dir  string
	meta Meta
}

// NewRaw creates dir if needed.
func NewRaw(dir string, meta Meta) (*Raw, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("raw snapshot dir: %w", err)
	}
	return &Raw{dir: dir, meta: meta}, nil
}

// Paths returns the data and sidecar files written for step.
func (s *Raw) Paths(step int) (data, sidecar string) {
	return filepath.Join(s.dir, fileName("step", step, ".bin")),
		filepath.Join(s.dir, fileName("step", step, ".json"))
}

func (s *Raw) Snapshot(step int, v core.View) error {
	dataPath, metaPath := s.Paths(step)
	if err := writeRaw(dataPath, v); err != nil {
		return fmt.Errorf("raw snapshot %d: %w", step, err)
	}
	md := Metadata{
		Iteration:   step,
		Time:        s.meta.Time(step),
		Dt:          s.meta.Dt,
		GridSpacing: [2]float64{s.meta.Dy, s.meta.Dx},
		AxisLabels:  [2]string{"y", "x"},
		Extent:      v.Extent(),
		DataOrder:   "C",
		Encoding:    "float64le",
		File:        filepath.Base(dataPath),
	}
	blob, err := json.MarshalIndent(md, "", "  ")
	if err != nil {
		return fmt.Errorf("raw snapshot %d: %w", step, err)
	}
	if err := os.WriteFile(metaPath, blob, 0o644); err != nil {
		return fmt.Errorf("raw snapshot %d: %w", step, err)
	}
	return nil
}

func writeRaw(path string, v core.View) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	ext := v.Extent()
	row := make([]float64, ext[1])
	for r := 0; r < ext[0]; r++ {
		row = v.RowTo(row, r)
		if err := binary.Write(w, binary.LittleEndian, row); err != nil {
			f.Close()
			return err
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadRaw loads a snapshot back from its JSON sidecar.
func ReadRaw(sidecar string) (*core.Buffer, Metadata, error) {
	var md Metadata
	blob, err := os.ReadFile(sidecar)
	if err != nil {
		return nil, md, err
	}
	if err := json.Unmarshal(blob, &md); err != nil {
		return nil, md, fmt.Errorf("%s: %w", sidecar, err)
	}
	if !md.Extent.Positive() {
		return nil, md, fmt.Errorf("%s: extent %v: %w", sidecar, md.Extent, core.ErrInvalidDomain)
	}
	f, err := os.Open(filepath.Join(filepath.Dir(sidecar), md.File))
	if err != nil {
		return nil, md, err
	}
	defer f.Close()

	buf := core.NewBuffer(md.Extent, 1)
	r := bufio.NewReader(f)
	for row := 0; row < md.Extent[0]; row++ {
		if err := binary.Read(r, binary.LittleEndian, buf.Row(row)); err != nil {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return nil, md, fmt.Errorf("%s row %d: %w", md.File, row, err)
		}
	}
	return buf, md, nil
}
