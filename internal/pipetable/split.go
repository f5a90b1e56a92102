package pipetable

import "strings"

const stripChars = "[](){}<>\"'“”‘’"

// SplitList splits a comma-delimited cell such as "컴퓨터공학과, 소프트웨어학과"
// into trimmed names, stripping brackets and quotes and dropping empties.
func SplitList(cell string) []string {
	fields := strings.FieldsFunc(cell, func(r rune) bool {
		return r == ',' || r == '，' || r == '、'
	})

	out := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Map(func(r rune) rune {
			if strings.ContainsRune(stripChars, r) {
				return -1
			}
			return r
		}, f)
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// UniqueList flattens cells through SplitList, keeping first occurrences in order.
func UniqueList(cells []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, c := range cells {
		for _, v := range SplitList(c) {
			if seen[v] {
				continue
			}
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
