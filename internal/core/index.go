package core

// Mapper converts between linear indices in [0, Len()) and coordinates of a
// row-major extent. The last axis varies fastest, so consecutive linear
// indices walk along a row.
type Mapper struct {
	extent  Vec2
	strides Vec2
}

// NewMapper builds a mapper for extent.
func NewMapper(extent Vec2) Mapper {
	m := Mapper{extent: extent}
	stride := 1
	for axis := len(extent) - 1; axis >= 0; axis-- {
		m.strides[axis] = stride
		stride *= extent[axis]
	}
	return m
}

// Extent returns the mapped extent.
func (m Mapper) Extent() Vec2 { return m.extent }

// Len is the number of addressable cells.
func (m Mapper) Len() int { return m.extent.Prod() }

// Linear returns the linear index of c without range checks.
func (m Mapper) Linear(c Vec2) int {
	i := 0
	for axis := range c {
		i += c[axis] * m.strides[axis]
	}
	return i
}

// Coord returns the coordinate of linear index i without range checks.
func (m Mapper) Coord(i int) Vec2 {
	var c Vec2
	for axis := range c {
		c[axis] = i / m.strides[axis]
		i -= c[axis] * m.strides[axis]
	}
	return c
}

// Flatten is Linear with a range check on c.
func (m Mapper) Flatten(c Vec2) (int, error) {
	if !c.Within(m.extent) {
		return 0, &IndexError{Space: "linear", Coord: c, Extent: m.extent}
	}
	return m.Linear(c), nil
}

// Unflatten is Coord with a range check on i.
func (m Mapper) Unflatten(i int) (Vec2, error) {
	if i < 0 || i >= m.Len() {
		return Vec2{}, &IndexError{Space: "linear", Coord: Vec2{0, i}, Extent: Vec2{1, m.Len()}}
	}
	return m.Coord(i), nil
}

// Frame places a local extent at Origin inside a larger global space, the
// relationship between a tile (or a staged cache block) and the grid.
type Frame struct {
	Origin Vec2
	Local  Mapper
}

// NewFrame builds a frame of the given local extent at origin.
func NewFrame(origin, extent Vec2) Frame {
	return Frame{Origin: origin, Local: NewMapper(extent)}
}

// Global converts a local coordinate to global coordinates.
func (f Frame) Global(local Vec2) Vec2 { return f.Origin.Add(local) }

// ToLocal converts a global coordinate into the frame, failing when it lies
// outside the local extent.
func (f Frame) ToLocal(global Vec2) (Vec2, error) {
	local := global.Sub(f.Origin)
	if !local.Within(f.Local.extent) {
		return Vec2{}, &IndexError{Space: "tile", Coord: local, Extent: f.Local.extent}
	}
	return local, nil
}

// GlobalOf maps a local linear index straight to a global coordinate.
func (f Frame) GlobalOf(i int) Vec2 { return f.Origin.Add(f.Local.Coord(i)) }
