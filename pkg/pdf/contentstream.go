package pdf

import (
	"bytes"
	"strconv"
	"strings"
)

// glyphWidthFactor approximates the horizontal advance of a glyph as a
// fraction of the font size. Exact advances require per-font metrics;
// the signal pipeline only needs stable relative positions.
const glyphWidthFactor = 0.5

// imageResource describes an image XObject available to a content
// stream, keyed by its resource name.
type imageResource struct {
	ObjectID         string
	PixelWidth       int
	PixelHeight      int
	ColorSpace       string
	BitsPerComponent int
}

// contentScanner walks a decoded page content stream and collects
// glyph, path and image placements in top-left page coordinates.
type contentScanner struct {
	pageWidth  float64
	pageHeight float64
	images     map[string]imageResource

	objects Objects

	// graphics state
	ctm       Matrix
	stack     []graphicsState
	lineWidth float64

	// current path
	path      []Point
	pathStart Point
	rects     []BoundingBox // re operands of the current path

	// text state
	inText     bool
	tm         Matrix // text matrix
	tlm        Matrix // text line matrix
	fontName   string
	fontSize   float64
	leading    float64
	charSpace  float64
	wordSpace  float64
	horizScale float64
}

type graphicsState struct {
	ctm       Matrix
	lineWidth float64
}

// newContentScanner creates a scanner for one page. The image map may
// be nil for backends without XObject resolution.
func newContentScanner(pageWidth, pageHeight float64, images map[string]imageResource) *contentScanner {
	return &contentScanner{
		pageWidth:  pageWidth,
		pageHeight: pageHeight,
		images:     images,
		ctm:        Identity(),
		lineWidth:  1.0,
		horizScale: 1.0,
	}
}

// Scan tokenizes the content stream and collects page objects
func (s *contentScanner) Scan(content []byte) Objects {
	tokens := tokenize(content)

	var operands []string
	for _, token := range tokens {
		if isOperator(token) {
			s.processOperator(token, operands)
			operands = operands[:0]
		} else {
			operands = append(operands, token)
		}
	}

	return s.objects
}

// processOperator dispatches a single operator with its operands
func (s *contentScanner) processOperator(op string, operands []string) {
	switch op {
	// Graphics state
	case "q":
		s.stack = append(s.stack, graphicsState{ctm: s.ctm, lineWidth: s.lineWidth})
	case "Q":
		if n := len(s.stack); n > 0 {
			s.ctm = s.stack[n-1].ctm
			s.lineWidth = s.stack[n-1].lineWidth
			s.stack = s.stack[:n-1]
		}
	case "cm":
		if m, ok := parseMatrix(operands); ok {
			s.ctm = s.ctm.Mul(m)
		}
	case "w":
		if v, ok := parseFloat(operands, 0); ok {
			s.lineWidth = v
		}

	// Path construction
	case "m":
		if x, y, ok := parsePoint(operands, 0); ok {
			s.pathStart = Point{X: x, Y: y}
			s.path = append(s.path, s.pathStart)
		}
	case "l":
		if x, y, ok := parsePoint(operands, 0); ok {
			s.path = append(s.path, Point{X: x, Y: y})
		}
	case "c":
		if x, y, ok := parsePoint(operands, 4); ok {
			s.path = append(s.path, Point{X: x, Y: y})
		}
	case "v", "y":
		if x, y, ok := parsePoint(operands, 2); ok {
			s.path = append(s.path, Point{X: x, Y: y})
		}
	case "h":
		if len(s.path) > 0 {
			s.path = append(s.path, s.pathStart)
		}
	case "re":
		if len(operands) >= 4 {
			x, _ := strconv.ParseFloat(operands[0], 64)
			y, _ := strconv.ParseFloat(operands[1], 64)
			w, _ := strconv.ParseFloat(operands[2], 64)
			h, _ := strconv.ParseFloat(operands[3], 64)
			s.rects = append(s.rects, BoundingBox{X0: x, Y0: y, X1: x + w, Y1: y + h})
		}

	// Path painting
	case "S", "s":
		s.paintPath(false)
	case "f", "F", "f*":
		s.paintPath(true)
	case "B", "B*", "b", "b*":
		s.paintPath(true)
	case "n":
		s.clearPath()

	// Text
	case "BT":
		s.inText = true
		s.tm = Identity()
		s.tlm = Identity()
	case "ET":
		s.inText = false
	case "Tf":
		if len(operands) >= 2 {
			s.fontName = strings.TrimPrefix(operands[0], "/")
			if v, err := strconv.ParseFloat(operands[1], 64); err == nil {
				s.fontSize = v
			}
		}
	case "TL":
		if v, ok := parseFloat(operands, 0); ok {
			s.leading = v
		}
	case "Tc":
		if v, ok := parseFloat(operands, 0); ok {
			s.charSpace = v
		}
	case "Tw":
		if v, ok := parseFloat(operands, 0); ok {
			s.wordSpace = v
		}
	case "Tz":
		if v, ok := parseFloat(operands, 0); ok {
			s.horizScale = v / 100.0
		}
	case "Td":
		if x, y, ok := parsePoint(operands, 0); ok {
			s.tlm = s.tlm.Mul(Matrix{A: 1, D: 1, E: x, F: y})
			s.tm = s.tlm
		}
	case "TD":
		if x, y, ok := parsePoint(operands, 0); ok {
			s.leading = -y
			s.tlm = s.tlm.Mul(Matrix{A: 1, D: 1, E: x, F: y})
			s.tm = s.tlm
		}
	case "Tm":
		if m, ok := parseMatrix(operands); ok {
			s.tlm = m
			s.tm = m
		}
	case "T*":
		s.nextLine()
	case "Tj":
		if len(operands) >= 1 {
			s.showText(decodeStringOperand(operands[len(operands)-1]))
		}
	case "'":
		s.nextLine()
		if len(operands) >= 1 {
			s.showText(decodeStringOperand(operands[len(operands)-1]))
		}
	case "\"":
		s.nextLine()
		if len(operands) >= 3 {
			s.showText(decodeStringOperand(operands[len(operands)-1]))
		}
	case "TJ":
		s.showTextArray(operands)

	// External objects
	case "Do":
		if len(operands) >= 1 {
			s.placeXObject(strings.TrimPrefix(operands[0], "/"))
		}
	}
}

// paintPath converts the current path into line, rect or curve objects
func (s *contentScanner) paintPath(filled bool) {
	for _, r := range s.rects {
		x0, y0 := s.ctm.Apply(r.X0, r.Y0)
		x1, y1 := s.ctm.Apply(r.X1, r.Y1)
		s.objects.Rects = append(s.objects.Rects, RectObject{
			X0:     min(x0, x1),
			Y0:     s.pageHeight - max(y0, y1),
			X1:     max(x0, x1),
			Y1:     s.pageHeight - min(y0, y1),
			Width:  s.lineWidth,
			Filled: filled,
		})
	}

	if len(s.path) == 2 {
		x0, y0 := s.ctm.Apply(s.path[0].X, s.path[0].Y)
		x1, y1 := s.ctm.Apply(s.path[1].X, s.path[1].Y)
		s.objects.Lines = append(s.objects.Lines, LineObject{
			X0:    x0,
			Y0:    s.pageHeight - y0,
			X1:    x1,
			Y1:    s.pageHeight - y1,
			Width: s.lineWidth,
		})
	} else if len(s.path) > 2 {
		points := make([]Point, 0, len(s.path))
		for _, p := range s.path {
			x, y := s.ctm.Apply(p.X, p.Y)
			points = append(points, Point{X: x, Y: s.pageHeight - y})
		}
		s.objects.Curves = append(s.objects.Curves, CurveObject{
			Points: points,
			Width:  s.lineWidth,
			Filled: filled,
		})
	}

	s.clearPath()
}

func (s *contentScanner) clearPath() {
	s.path = s.path[:0]
	s.rects = s.rects[:0]
}

// nextLine moves the text position to the start of the next line
func (s *contentScanner) nextLine() {
	s.tlm = s.tlm.Mul(Matrix{A: 1, D: 1, F: -s.leading})
	s.tm = s.tlm
}

// showText emits one CharObject per glyph along the text matrix
func (s *contentScanner) showText(text string) {
	if !s.inText || text == "" {
		return
	}

	for _, r := range text {
		advance := s.fontSize * glyphWidthFactor * s.horizScale
		if r == ' ' {
			advance += s.wordSpace
		}
		advance += s.charSpace

		if r != ' ' {
			trm := s.tm.Mul(s.ctm)
			x, y := trm.E, trm.F
			// Effective font size under the combined transform.
			size := s.fontSize * trm.D
			if size < 0 {
				size = -size
			}
			if size == 0 {
				size = s.fontSize
			}
			width := advance * trm.A
			if width < 0 {
				width = -width
			}
			top := s.pageHeight - (y + size*0.8)
			s.objects.Chars = append(s.objects.Chars, CharObject{
				Text:     string(r),
				Font:     s.fontName,
				FontSize: size,
				X0:       x,
				Y0:       top,
				X1:       x + width,
				Y1:       top + size,
				Width:    width,
				Height:   size,
			})
		}

		s.tm = s.tm.Mul(Matrix{A: 1, D: 1, E: advance})
	}
}

// showTextArray handles the TJ operator: strings interleaved with
// kerning adjustments in thousandths of text space units.
func (s *contentScanner) showTextArray(operands []string) {
	for _, operand := range operands {
		switch {
		case operand == "[" || operand == "]":
			// Array brackets are tokenized separately.
		case strings.HasPrefix(operand, "(") || strings.HasPrefix(operand, "<"):
			s.showText(decodeStringOperand(operand))
		default:
			if adj, err := strconv.ParseFloat(operand, 64); err == nil {
				shift := -adj / 1000.0 * s.fontSize * s.horizScale
				s.tm = s.tm.Mul(Matrix{A: 1, D: 1, E: shift})
			}
		}
	}
}

// placeXObject records an image placement for a known image resource.
// The placement box is the CTM-transformed unit square.
func (s *contentScanner) placeXObject(name string) {
	res, ok := s.images[name]
	if !ok {
		return
	}

	x0, y0 := s.ctm.Apply(0, 0)
	x1, y1 := s.ctm.Apply(1, 1)
	s.objects.Images = append(s.objects.Images, ImageObject{
		ObjectID:         res.ObjectID,
		X0:               min(x0, x1),
		Y0:               s.pageHeight - max(y0, y1),
		X1:               max(x0, x1),
		Y1:               s.pageHeight - min(y0, y1),
		PixelWidth:       res.PixelWidth,
		PixelHeight:      res.PixelHeight,
		ColorSpace:       res.ColorSpace,
		BitsPerComponent: res.BitsPerComponent,
	})
}

// tokenize splits a content stream into tokens
func tokenize(content []byte) []string {
	var tokens []string
	reader := bytes.NewReader(content)

	for reader.Len() > 0 {
		b, err := reader.ReadByte()
		if err != nil {
			break
		}

		if isWhitespace(b) {
			continue
		}

		switch b {
		case '(':
			str := readStringLiteral(reader)
			tokens = append(tokens, "("+str+")")

		case '<':
			next, _ := reader.ReadByte()
			if next == '<' {
				tokens = append(tokens, "<<")
			} else {
				reader.UnreadByte()
				hex := readHexString(reader)
				tokens = append(tokens, "<"+hex+">")
			}

		case '>':
			next, _ := reader.ReadByte()
			if next == '>' {
				tokens = append(tokens, ">>")
			} else {
				reader.UnreadByte()
			}

		case '[':
			tokens = append(tokens, "[")

		case ']':
			tokens = append(tokens, "]")

		case '/':
			name := readRegular(reader)
			tokens = append(tokens, "/"+name)

		case '%':
			skipComment(reader)

		default:
			reader.UnreadByte()
			token := readRegular(reader)
			if token != "" {
				tokens = append(tokens, token)
			} else {
				// Lone delimiter byte; consume it to guarantee progress.
				reader.ReadByte()
			}
		}
	}

	return tokens
}

// readStringLiteral reads a parenthesized string, tracking nesting
func readStringLiteral(reader *bytes.Reader) string {
	var result []byte
	depth := 1

	for reader.Len() > 0 {
		b, err := reader.ReadByte()
		if err != nil {
			break
		}

		if b == '\\' {
			next, _ := reader.ReadByte()
			result = append(result, '\\', next)
		} else if b == '(' {
			depth++
			result = append(result, b)
		} else if b == ')' {
			depth--
			if depth == 0 {
				break
			}
			result = append(result, b)
		} else {
			result = append(result, b)
		}
	}

	return string(result)
}

// readHexString reads a hex string up to the closing '>'
func readHexString(reader *bytes.Reader) string {
	var result []byte

	for reader.Len() > 0 {
		b, err := reader.ReadByte()
		if err != nil || b == '>' {
			break
		}
		if !isWhitespace(b) {
			result = append(result, b)
		}
	}

	return string(result)
}

// readRegular reads a run of non-delimiter, non-whitespace bytes
func readRegular(reader *bytes.Reader) string {
	var result []byte

	for reader.Len() > 0 {
		b, err := reader.ReadByte()
		if err != nil {
			break
		}
		if isDelimiter(b) || isWhitespace(b) {
			reader.UnreadByte()
			break
		}
		result = append(result, b)
	}

	return string(result)
}

// skipComment skips to the end of the current line
func skipComment(reader *bytes.Reader) {
	for reader.Len() > 0 {
		b, _ := reader.ReadByte()
		if b == '\n' || b == '\r' {
			break
		}
	}
}

func isWhitespace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\f' || b == 0
}

func isDelimiter(b byte) bool {
	return b == '(' || b == ')' || b == '<' || b == '>' || b == '[' || b == ']' ||
		b == '{' || b == '}' || b == '/' || b == '%'
}

var contentOperators = map[string]struct{}{
	// Text operators
	"BT": {}, "ET": {}, "Td": {}, "TD": {}, "Tm": {}, "T*": {}, "Tj": {}, "TJ": {}, "'": {}, "\"": {},
	"Tc": {}, "Tw": {}, "Tz": {}, "TL": {}, "Tf": {}, "Tr": {}, "Ts": {},
	// Graphics state
	"q": {}, "Q": {}, "cm": {}, "w": {}, "J": {}, "j": {}, "M": {}, "d": {}, "ri": {}, "i": {}, "gs": {},
	// Path construction
	"m": {}, "l": {}, "c": {}, "v": {}, "y": {}, "h": {}, "re": {},
	// Path painting
	"S": {}, "s": {}, "f": {}, "F": {}, "f*": {}, "B": {}, "B*": {}, "b": {}, "b*": {}, "n": {},
	// Color
	"CS": {}, "cs": {}, "SC": {}, "SCN": {}, "sc": {}, "scn": {}, "G": {}, "g": {}, "RG": {}, "rg": {}, "K": {}, "k": {},
	// Other
	"W": {}, "W*": {}, "BX": {}, "EX": {}, "Do": {}, "MP": {}, "DP": {}, "BMC": {}, "BDC": {}, "EMC": {},
}

// isOperator checks if a token is a content stream operator
func isOperator(token string) bool {
	_, ok := contentOperators[token]
	return ok
}

// decodeStringOperand strips the tokenizer markers from a string
// operand and resolves basic escape sequences. Hex strings are decoded
// as Latin-1 byte pairs; multi-byte CID encodings come out as raw
// bytes, which is sufficient for counting and comparing glyph runs.
func decodeStringOperand(operand string) string {
	if strings.HasPrefix(operand, "(") && strings.HasSuffix(operand, ")") {
		return unescapeLiteral(operand[1 : len(operand)-1])
	}
	if strings.HasPrefix(operand, "<") && strings.HasSuffix(operand, ">") {
		return decodeHex(operand[1 : len(operand)-1])
	}
	return operand
}

func unescapeLiteral(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
			switch s[i] {
			case 'n':
				b.WriteByte('\n')
			case 'r':
				b.WriteByte('\r')
			case 't':
				b.WriteByte('\t')
			case 'b', 'f':
				// Rarely significant for layout; drop.
			default:
				b.WriteByte(s[i])
			}
		} else {
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

func decodeHex(s string) string {
	var b strings.Builder
	for i := 0; i+1 < len(s); i += 2 {
		v, err := strconv.ParseUint(s[i:i+2], 16, 8)
		if err != nil {
			continue
		}
		b.WriteByte(byte(v))
	}
	return b.String()
}

// parseFloat parses the operand at index i
func parseFloat(operands []string, i int) (float64, bool) {
	if i >= len(operands) {
		return 0, false
	}
	v, err := strconv.ParseFloat(operands[i], 64)
	return v, err == nil
}

// parsePoint parses two consecutive numeric operands starting at i
func parsePoint(operands []string, i int) (float64, float64, bool) {
	if i+1 >= len(operands) {
		return 0, 0, false
	}
	x, err1 := strconv.ParseFloat(operands[i], 64)
	y, err2 := strconv.ParseFloat(operands[i+1], 64)
	return x, y, err1 == nil && err2 == nil
}

// parseMatrix parses six numeric operands into a Matrix
func parseMatrix(operands []string) (Matrix, bool) {
	if len(operands) < 6 {
		return Matrix{}, false
	}
	var vals [6]float64
	for i := 0; i < 6; i++ {
		v, err := strconv.ParseFloat(operands[i], 64)
		if err != nil {
			return Matrix{}, false
		}
		vals[i] = v
	}
	return Matrix{A: vals[0], B: vals[1], C: vals[2], D: vals[3], E: vals[4], F: vals[5]}, true
}
