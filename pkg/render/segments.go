package render

import "strings"

const fence = "```"

// Segment is a run of prose or a fenced code block of a response.
type Segment struct {
	Code     bool
	Language string
	Body     string
	// Raw is the unparsed text between the fences.
	Raw string
}

// SplitSegments splits text on triple backticks. Even-indexed parts are prose;
// odd-indexed parts are code whose first line names the language. Text
// without a fence is a single prose segment.
func SplitSegments(text string) []Segment {
	if !strings.Contains(text, fence) {
		return []Segment{{Body: text, Raw: text}}
	}
	parts := strings.Split(text, fence)
	segments := make([]Segment, 0, len(parts))
	for i, part := range parts {
		if i%2 == 0 {
			segments = append(segments, Segment{Body: part, Raw: part})
			continue
		}
		lines := strings.Split(part, "\n")
		seg := Segment{Code: true, Raw: part, Language: strings.TrimSpace(lines[0])}
		if len(lines) > 1 {
			seg.Body = strings.Join(lines[1:], "\n")
		}
		segments = append(segments, seg)
	}
	return segments
}
