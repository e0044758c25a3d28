// Package lines locates anchor lines in a converted document and reads
// values at fixed or variable offsets from them.
package lines

import (
	"regexp"
	"strings"
)

// FindFunc returns the index of the first line at or after from for which
// fn is true, or -1.
func FindFunc(ls []string, from int, fn func(i int, l string) bool) int {
	if from < 0 {
		from = 0
	}
	for i := from; i < len(ls); i++ {
		if fn(i, ls[i]) {
			return i
		}
	}
	return -1
}

// FindExact returns the index of the first line equal to label, or -1.
func FindExact(ls []string, label string) int {
	return FindFunc(ls, 0, func(_ int, l string) bool { return l == label })
}

// FindPrefix returns the index of the first line starting with prefix, or -1.
func FindPrefix(ls []string, prefix string) int {
	return FindFunc(ls, 0, func(_ int, l string) bool { return strings.HasPrefix(l, prefix) })
}

// FindMatch returns the index of the first line at or after from matching re, or -1.
func FindMatch(ls []string, from int, re *regexp.Regexp) int {
	return FindFunc(ls, from, func(_ int, l string) bool { return re.MatchString(l) })
}

// AllPrefix returns the indices of every line starting with prefix.
func AllPrefix(ls []string, prefix string) []int {
	var out []int
	for i, l := range ls {
		if strings.HasPrefix(l, prefix) {
			out = append(out, i)
		}
	}
	return out
}

// At returns ls[i] and whether i is in range.
func At(ls []string, i int) (string, bool) {
	if i < 0 || i >= len(ls) {
		return "", false
	}
	return ls[i], true
}

// Slice returns ls[from:to] clamped to the bounds of ls.
func Slice(ls []string, from, to int) []string {
	if from < 0 {
		from = 0
	}
	if to > len(ls) {
		to = len(ls)
	}
	if from >= to {
		return nil
	}
	return ls[from:to]
}

// NonBlank right-trims every line and drops the empty ones.
func NonBlank(ls []string) []string {
	out := make([]string, 0, len(ls))
	for _, l := range ls {
		l = strings.TrimRight(l, " \t\r")
		if strings.TrimSpace(l) != "" {
			out = append(out, l)
		}
	}
	return out
}

// Head joins the first n non-blank lines with single spaces.
func Head(ls []string, n int) string {
	return strings.Join(Slice(NonBlank(ls), 0, n), " ")
}

// Chunk splits ls into consecutive blocks of size lines; the last block may be shorter.
func Chunk(ls []string, size int) [][]string {
	if size <= 0 {
		return nil
	}
	var out [][]string
	for i := 0; i < len(ls); i += size {
		out = append(out, Slice(ls, i, i+size))
	}
	return out
}

// JoinNonEmpty joins the trimmed non-empty parts with sep.
func JoinNonEmpty(parts []string, sep string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}
