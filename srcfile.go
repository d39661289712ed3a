package harmony

import (
	"sort"
	"strings"

	"github.com/go-sourcemap/sourcemap"
)

// Position is a 1-based line/column pair in the source text.
type Position struct {
	Line, Col int
}

// SrcFile resolves byte offsets to positions. Line offsets are scanned
// lazily. When the source carries a sourceMappingURL trailer with an inline
// base64 data URI, positions are mapped through the source map.
type SrcFile struct {
	name string
	src  string

	lineOffsets       []int
	lastScannedOffset int

	smap       *sourcemap.Consumer
	smapParsed bool
}

func NewSrcFile(name, src string) *SrcFile {
	return &SrcFile{
		name: name,
		src:  src,
	}
}

func (f *SrcFile) Name() string { return f.name }

func (f *SrcFile) Position(offset int) Position {
	var line int
	if offset > f.lastScannedOffset {
		line = f.scanTo(offset)
	} else {
		line = sort.Search(len(f.lineOffsets), func(x int) bool { return f.lineOffsets[x] > offset }) - 1
	}

	var lineStart int
	if line >= 0 {
		lineStart = f.lineOffsets[line]
	}
	pos := Position{
		Line: line + 2,
		Col:  offset - lineStart + 1,
	}
	if sm := f.sourceMap(); sm != nil {
		if _, _, mline, mcol, ok := sm.Source(pos.Line, pos.Col); ok {
			return Position{Line: mline, Col: mcol}
		}
	}
	return pos
}

func (f *SrcFile) scanTo(offset int) int {
	o := f.lastScannedOffset
	for o < offset {
		p := strings.Index(f.src[o:], "\n")
		if p == -1 {
			f.lastScannedOffset = len(f.src)
			return len(f.lineOffsets) - 1
		}
		o = o + p + 1
		f.lineOffsets = append(f.lineOffsets, o)
	}
	f.lastScannedOffset = o

	if o == offset {
		return len(f.lineOffsets) - 1
	}

	return len(f.lineOffsets) - 2
}

const sourceMapURLPrefix = "//# sourceMappingURL="

func (f *SrcFile) sourceMap() *sourcemap.Consumer {
	if f.smapParsed {
		return f.smap
	}
	f.smapParsed = true
	idx := strings.LastIndex(f.src, sourceMapURLPrefix)
	if idx < 0 {
		return nil
	}
	url := strings.TrimSpace(f.src[idx+len(sourceMapURLPrefix):])
	if nl := strings.IndexByte(url, '\n'); nl >= 0 {
		url = strings.TrimSpace(url[:nl])
	}
	data, ok := decodeDataURI(url)
	if !ok {
		return nil
	}
	smap, err := sourcemap.Parse(f.name, data)
	if err != nil {
		return nil
	}
	f.smap = smap
	return smap
}
