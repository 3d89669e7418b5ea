package lines

import (
	"fmt"
	"strings"
)

// Lines collects formatted lines, each with the same prefix
type Lines struct {
	prefix string
	l      []string
}

func New(prefix ...string) *Lines {
	pref := ""
	if len(prefix) > 0 {
		pref = prefix[0]
	}
	return &Lines{
		prefix: pref,
		l:      make([]string, 0),
	}
}

func (l *Lines) Add(format string, args ...any) *Lines {
	l.l = append(l.l, fmt.Sprintf(l.prefix+format, args...))
	return l
}

// Append adds lines of another, with own prefix on top
func (l *Lines) Append(ln *Lines) *Lines {
	for _, s := range ln.l {
		l.l = append(l.l, l.prefix+s)
	}
	return l
}

func (l *Lines) Len() int {
	return len(l.l)
}

func (l *Lines) Join(sep string) string {
	return strings.Join(l.l, sep)
}

func (l *Lines) String() string {
	return l.Join("\n")
}
