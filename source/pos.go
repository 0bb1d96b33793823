package source

import "fmt"

type Pos struct {
	Offset int
	Line   int
	Column int
}

func (p Pos) Min(other Pos) Pos {
	if p.Column == 0 {
		return other
	}
	if other.Column == 0 {
		return p
	}
	if p.Offset < other.Offset {
		return p
	}
	return other
}

func (p Pos) Max(other Pos) Pos {
	if p.Column == 0 {
		return other
	}
	if other.Column == 0 {
		return p
	}
	if p.Offset > other.Offset {
		return p
	}
	return other
}

// Span is a range in a named source file. The zero Span means "synthesized".
type Span struct {
	Filename string
	Start    Pos
	End      Pos
}

func At(filename string, line, column int) Span {
	p := Pos{Line: line, Column: column}
	return Span{Filename: filename, Start: p, End: p}
}

func (span Span) Add(other Span) Span {
	filename := span.Filename
	if filename == "" {
		filename = other.Filename
	}
	return Span{filename, span.Start.Min(other.Start), span.End.Max(other.End)}
}

func (s Span) IsZero() bool {
	return s == Span{}
}

// Line is the line the span starts on, 0 for synthesized spans.
func (s Span) Line() int {
	return s.Start.Line
}

func (s Span) String() string {
	var pos string
	switch {
	case s.Start == s.End:
		pos = fmt.Sprintf("%d:%d", s.Start.Line, s.Start.Column)
	case s.Start.Line == s.End.Line:
		pos = fmt.Sprintf("%d:%d-%d", s.Start.Line, s.Start.Column, s.End.Column)
	default:
		pos = fmt.Sprintf("%d:%d-%d:%d", s.Start.Line, s.Start.Column, s.End.Line, s.End.Column)
	}
	if s.Filename == "" {
		return pos
	}
	return s.Filename + ":" + pos
}
