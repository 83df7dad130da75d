package solidity

import "github.com/RoaringBitmap/roaring/v2"

// Span is a half-open [Start,End) byte range into a source buffer.
type Span struct {
	Start int
	End   int
}

// Contains reports whether off falls inside the span.
func (s Span) Contains(off int) bool {
	return s.Start <= off && off < s.End
}

// Len returns the span length in bytes.
func (s Span) Len() int {
	return s.End - s.Start
}

// MatchBrace scans text from start, which must be at or before an opening
// '{', and returns the span from start through the matching '}' (inclusive
// of the brace, exclusive end offset). The second return is false when the
// text ends before the brace closes; callers decide the fallback, this
// function never fails.
func MatchBrace(text string, start int) (Span, bool) {
	depth := 0
	for i := start; i < len(text); i++ {
		switch text[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return Span{Start: start, End: i + 1}, true
			}
		}
	}
	return Span{Start: start, End: len(text)}, false
}

// SpanIndex answers offset-membership queries over a set of spans. The
// bitmap keeps run-compressed coverage so a candidate check costs a single
// lookup regardless of how many spans the source contains.
type SpanIndex struct {
	bm *roaring.Bitmap
}

// NewSpanIndex builds an index over the given spans.
func NewSpanIndex(spans []Span) *SpanIndex {
	bm := roaring.New()
	for _, s := range spans {
		if s.End > s.Start {
			bm.AddRange(uint64(s.Start), uint64(s.End))
		}
	}
	return &SpanIndex{bm: bm}
}

// Contains reports whether off lies inside any indexed span.
func (x *SpanIndex) Contains(off int) bool {
	if off < 0 {
		return false
	}
	return x.bm.Contains(uint32(off))
}
