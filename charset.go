package glyphreel

import (
	"fmt"
	"sort"
	"strings"
)

// Charset restricts which glyphs a lookup table may use. The zero value
// allows every glyph.
type Charset struct {
	only map[rune]struct{}
}

// AllChars returns a charset that does not filter.
func AllChars() Charset {
	return Charset{}
}

// NewCharset returns a charset holding exactly the given runes. With no
// runes it allows nothing.
func NewCharset(runes ...rune) Charset {
	only := make(map[rune]struct{}, len(runes))
	for _, r := range runes {
		only[r] = struct{}{}
	}
	return Charset{only: only}
}

// AllowsAll reports whether the charset disables filtering.
func (c Charset) AllowsAll() bool {
	return c.only == nil
}

// Contains reports whether r passes the filter.
func (c Charset) Contains(r rune) bool {
	if c.only == nil {
		return true
	}
	_, ok := c.only[r]
	return ok
}

// Len returns the number of runes in the set, or -1 if it allows all.
func (c Charset) Len() int {
	if c.only == nil {
		return -1
	}
	return len(c.only)
}

// Union returns a charset allowing what either c or o allows.
func (c Charset) Union(o Charset) Charset {
	if c.only == nil || o.only == nil {
		return AllChars()
	}
	u := NewCharset()
	for r := range c.only {
		u.only[r] = struct{}{}
	}
	for r := range o.only {
		u.only[r] = struct{}{}
	}
	return u
}

// Runes returns the members in ascending order, or nil if c allows all.
func (c Charset) Runes() []rune {
	if c.only == nil {
		return nil
	}
	out := make([]rune, 0, len(c.only))
	for r := range c.only {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Ramp is the classic ten step brightness ramp, darkest first.
const Ramp = " .:-=+*#%@"

// Presets are the named character sets selectable by name.
var Presets = map[string][]rune{
	"ascii":     runeRange(0x20, 0x7E),
	"extended":  runeRange(0x20, 0xFF),
	"lowercase": runeRange('a', 'z'),
	"uppercase": runeRange('A', 'Z'),
	"digits":    runeRange('0', '9'),
	"symbols":   []rune("!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"),
	"hex":       []rune("0123456789ABCDEFabcdef"),
	"ramp":      []rune(Ramp),
}

// allPreset disables filtering when selected.
const allPreset = "all"

func runeRange(lo, hi rune) []rune {
	out := make([]rune, 0, hi-lo+1)
	for r := lo; r <= hi; r++ {
		out = append(out, r)
	}
	return out
}

// PresetNames lists the preset names, sorted, including "all".
func PresetNames() []string {
	names := make([]string, 0, len(Presets)+1)
	names = append(names, allPreset)
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names[1:])
	return names
}

// ParseCharsets unions the named presets. No names, or "all" among them,
// yields a charset that allows everything. Names are case-insensitive.
func ParseCharsets(names []string) (Charset, error) {
	var set *Charset
	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		if name == allPreset {
			return AllChars(), nil
		}
		runes, ok := Presets[name]
		if !ok {
			return Charset{}, fmt.Errorf("unknown character set %q (have %s)",
				name, strings.Join(PresetNames(), ", "))
		}
		cs := NewCharset(runes...)
		if set != nil {
			cs = set.Union(cs)
		}
		set = &cs
	}
	if set == nil {
		return AllChars(), nil
	}
	return *set, nil
}
