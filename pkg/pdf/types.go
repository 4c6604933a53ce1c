package pdf

// ObjectType represents the type of page object
type ObjectType string

const (
	ObjectTypeChar  ObjectType = "char"
	ObjectTypeLine  ObjectType = "line"
	ObjectTypeRect  ObjectType = "rect"
	ObjectTypeCurve ObjectType = "curve"
	ObjectTypeImage ObjectType = "image"
)

// BoundingBox represents a rectangular area in page coordinates.
// The origin is the top-left corner of the page: Y0 is the top edge
// of the box and Y1 the bottom edge.
type BoundingBox struct {
	X0 float64 // Left
	Y0 float64 // Top
	X1 float64 // Right
	Y1 float64 // Bottom
}

// Width returns the width of the bounding box
func (b BoundingBox) Width() float64 {
	return b.X1 - b.X0
}

// Height returns the height of the bounding box
func (b BoundingBox) Height() float64 {
	return b.Y1 - b.Y0
}

// Area returns the area of the bounding box, zero for degenerate boxes
func (b BoundingBox) Area() float64 {
	if b.X1 <= b.X0 || b.Y1 <= b.Y0 {
		return 0
	}
	return b.Width() * b.Height()
}

// Contains checks if a point is within the bounding box
func (b BoundingBox) Contains(x, y float64) bool {
	return x >= b.X0 && x <= b.X1 && y >= b.Y0 && y <= b.Y1
}

// Intersects checks if two bounding boxes intersect
func (b BoundingBox) Intersects(other BoundingBox) bool {
	return !(b.X1 < other.X0 || b.X0 > other.X1 || b.Y1 < other.Y0 || b.Y0 > other.Y1)
}

// Clip returns the part of b that lies inside other.
// The zero BoundingBox is returned when they do not overlap.
func (b BoundingBox) Clip(other BoundingBox) BoundingBox {
	clipped := BoundingBox{
		X0: max(b.X0, other.X0),
		Y0: max(b.Y0, other.Y0),
		X1: min(b.X1, other.X1),
		Y1: min(b.Y1, other.Y1),
	}
	if clipped.X1 <= clipped.X0 || clipped.Y1 <= clipped.Y0 {
		return BoundingBox{}
	}
	return clipped
}

// Objects represents the collection of content objects on a page
type Objects struct {
	Chars  []CharObject
	Lines  []LineObject
	Rects  []RectObject
	Curves []CurveObject
	Images []ImageObject
}

// CharObject represents a single glyph placed on the page
type CharObject struct {
	Text     string
	Font     string
	FontSize float64
	X0       float64
	Y0       float64
	X1       float64
	Y1       float64
	Width    float64
	Height   float64
}

// GetType returns the object type
func (c CharObject) GetType() ObjectType {
	return ObjectTypeChar
}

// GetBBox returns the character's bounding box
func (c CharObject) GetBBox() BoundingBox {
	return BoundingBox{X0: c.X0, Y0: c.Y0, X1: c.X1, Y1: c.Y1}
}

// LineObject represents a straight stroked path segment
type LineObject struct {
	X0    float64
	Y0    float64
	X1    float64
	Y1    float64
	Width float64
}

// GetType returns the object type
func (l LineObject) GetType() ObjectType {
	return ObjectTypeLine
}

// GetBBox returns the line's bounding box
func (l LineObject) GetBBox() BoundingBox {
	return BoundingBox{
		X0: min(l.X0, l.X1),
		Y0: min(l.Y0, l.Y1),
		X1: max(l.X0, l.X1),
		Y1: max(l.Y0, l.Y1),
	}
}

// RectObject represents a stroked or filled rectangle
type RectObject struct {
	X0     float64
	Y0     float64
	X1     float64
	Y1     float64
	Width  float64
	Filled bool
}

// GetType returns the object type
func (r RectObject) GetType() ObjectType {
	return ObjectTypeRect
}

// GetBBox returns the rectangle's bounding box
func (r RectObject) GetBBox() BoundingBox {
	return BoundingBox{X0: r.X0, Y0: r.Y0, X1: r.X1, Y1: r.Y1}
}

// CurveObject represents a non-rectangular vector path
type CurveObject struct {
	Points []Point
	Width  float64
	Filled bool
}

// GetType returns the object type
func (c CurveObject) GetType() ObjectType {
	return ObjectTypeCurve
}

// GetBBox returns the curve's bounding box
func (c CurveObject) GetBBox() BoundingBox {
	if len(c.Points) == 0 {
		return BoundingBox{}
	}

	minX, minY := c.Points[0].X, c.Points[0].Y
	maxX, maxY := minX, minY

	for _, p := range c.Points[1:] {
		minX = min(minX, p.X)
		minY = min(minY, p.Y)
		maxX = max(maxX, p.X)
		maxY = max(maxY, p.Y)
	}

	return BoundingBox{X0: minX, Y0: minY, X1: maxX, Y1: maxY}
}

// ImageObject represents a raster object placed on the page.
// ObjectID is the reader-assigned handle for the underlying image
// resource; two placements of the same resource share an ObjectID.
// The decoded payload is fetched separately via Page.ImageBytes.
type ImageObject struct {
	ObjectID         string
	X0               float64
	Y0               float64
	X1               float64
	Y1               float64
	PixelWidth       int
	PixelHeight      int
	ColorSpace       string
	BitsPerComponent int
}

// GetType returns the object type
func (i ImageObject) GetType() ObjectType {
	return ObjectTypeImage
}

// GetBBox returns the image's placement bounding box
func (i ImageObject) GetBBox() BoundingBox {
	return BoundingBox{X0: i.X0, Y0: i.Y0, X1: i.X1, Y1: i.Y1}
}

// Word represents a run of adjacent characters on one line
type Word struct {
	Text       string
	X0         float64
	Y0         float64
	X1         float64
	Y1         float64
	Characters []CharObject
}

// GetBBox returns the word's bounding box
func (w Word) GetBBox() BoundingBox {
	return BoundingBox{X0: w.X0, Y0: w.Y0, X1: w.X1, Y1: w.Y1}
}

// Point represents a 2D point
type Point struct {
	X, Y float64
}

// Matrix represents a PDF transformation matrix [a b c d e f]
type Matrix struct {
	A, B, C, D, E, F float64
}

// Identity returns the identity matrix
func Identity() Matrix {
	return Matrix{A: 1, D: 1}
}

// Mul returns the matrix product n × m, i.e. n applied first
func (m Matrix) Mul(n Matrix) Matrix {
	return Matrix{
		A: n.A*m.A + n.B*m.C,
		B: n.A*m.B + n.B*m.D,
		C: n.C*m.A + n.D*m.C,
		D: n.C*m.B + n.D*m.D,
		E: n.E*m.A + n.F*m.C + m.E,
		F: n.E*m.B + n.F*m.D + m.F,
	}
}

// Apply transforms a point by the matrix
func (m Matrix) Apply(x, y float64) (float64, float64) {
	return m.A*x + m.C*y + m.E, m.B*x + m.D*y + m.F
}
