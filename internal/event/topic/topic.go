package topic

import "strings"

// Topic names an event kind as dot-separated segments, most general
// first: "calc.memory.changed".
type Topic string

// Pattern segments understood by Matches.
const (
	// WildcardSingle stands for exactly one segment.
	WildcardSingle = "*"
	// WildcardMulti stands for any run of segments, including none.
	WildcardMulti = "**"
	// Separator joins segments.
	Separator = "."
)

func (t Topic) String() string { return string(t) }

// Segments splits t at each separator. The empty topic has no segments.
func (t Topic) Segments() []string {
	if t == "" {
		return nil
	}
	return strings.Split(string(t), Separator)
}

// Parent drops the last segment; a single-segment topic has parent "".
func (t Topic) Parent() Topic {
	parent, _, ok := cutLast(string(t))
	if !ok {
		return ""
	}
	return Topic(parent)
}

// Child appends segment to t.
func (t Topic) Child(segment string) Topic {
	if t == "" {
		return Topic(segment)
	}
	return Join(string(t), segment)
}

// Base is the last segment.
func (t Topic) Base() string {
	if _, base, ok := cutLast(string(t)); ok {
		return base
	}
	return string(t)
}

// Root is the first segment, the area that raised the event.
func (t Topic) Root() string {
	root, _, _ := strings.Cut(string(t), Separator)
	return root
}

// IsWildcard reports whether t is a pattern rather than a concrete topic.
func (t Topic) IsWildcard() bool {
	return strings.Contains(string(t), WildcardSingle)
}

// IsValid reports whether t is non-empty with no empty segments.
func (t Topic) IsValid() bool {
	s := string(t)
	return s != "" &&
		!strings.HasPrefix(s, Separator) &&
		!strings.HasSuffix(s, Separator) &&
		!strings.Contains(s, Separator+Separator)
}

// Matches reports whether t is covered by pattern. Both "*" and "**" may
// appear anywhere in pattern.
func (t Topic) Matches(pattern Topic) bool {
	if t == pattern {
		return true
	}
	return match(t.Segments(), pattern.Segments())
}

func match(segs, pat []string) bool {
	for len(pat) > 0 {
		head := pat[0]
		pat = pat[1:]
		if head == WildcardMulti {
			for skip := 0; skip <= len(segs); skip++ {
				if match(segs[skip:], pat) {
					return true
				}
			}
			return false
		}
		if len(segs) == 0 || (head != WildcardSingle && head != segs[0]) {
			return false
		}
		segs = segs[1:]
	}
	return len(segs) == 0
}

func cutLast(s string) (before, after string, found bool) {
	i := strings.LastIndex(s, Separator)
	if i < 0 {
		return s, "", false
	}
	return s[:i], s[i+len(Separator):], true
}

// Join builds a topic from segments.
func Join(segments ...string) Topic {
	return Topic(strings.Join(segments, Separator))
}
