package scanner

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// DirectiveName marks a producer type:
//
//	//factorygen:producer ids=2,3 interface=Fruit
//	type Pear struct{}
//
// Keys:
//   - ids: comma separated non-negative integers ("ids=" is an empty set)
//   - interface: "Fruit" (same package) or "example.com/app/fruits.Fruit"
//   - new: optional zero-argument constructor used instead of new(T)
const DirectiveName = "factorygen:producer"

// directivePattern matches: factorygen:producer key=value ...
var directivePattern = regexp.MustCompile(`^factorygen:producer(?:\s+(.*))?$`)

// Directive is the raw content of one factorygen:producer comment.
type Directive struct {
	IDs         []int  `json:"ids"` // nil when the key is absent
	Interface   string `json:"interface"`
	Constructor string `json:"new,omitempty"`
}

// ParseDirective parses a single comment. ok is false when the comment is not
// a factorygen:producer directive at all.
func ParseDirective(comment string) (d *Directive, ok bool, err error) {
	text := comment
	switch {
	case strings.HasPrefix(text, "//"):
		text = strings.TrimPrefix(text, "//")
	case strings.HasPrefix(text, "/*"):
		text = strings.TrimSuffix(strings.TrimPrefix(text, "/*"), "*/")
	}
	text = strings.TrimSpace(text)

	matches := directivePattern.FindStringSubmatch(text)
	if matches == nil {
		return nil, false, nil
	}

	d = &Directive{}
	seen := make(map[string]bool)
	for _, field := range strings.Fields(matches[1]) {
		key, value, found := strings.Cut(field, "=")
		if !found {
			return nil, true, fmt.Errorf("expected key=value, got %q", field)
		}
		if seen[key] {
			return nil, true, fmt.Errorf("duplicate key %q", key)
		}
		seen[key] = true

		switch key {
		case "ids":
			ids, err := parseIDs(value)
			if err != nil {
				return nil, true, err
			}
			d.IDs = ids
		case "interface":
			d.Interface = value
		case "new":
			if value != "" && !isIdent(value) {
				return nil, true, fmt.Errorf("constructor %q is not an identifier", value)
			}
			d.Constructor = value
		default:
			return nil, true, fmt.Errorf("unknown key %q (expected ids, interface or new)", key)
		}
	}
	return d, true, nil
}

func parseIDs(s string) ([]int, error) {
	ids := []int{}
	if s == "" {
		return ids, nil
	}
	for _, part := range strings.Split(s, ",") {
		id, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid id %q", part)
		}
		if id < 0 {
			return nil, fmt.Errorf("id %d is negative", id)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func isIdent(s string) bool {
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return s != ""
}
