package combinator

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

type Config map[string]*cfgVal

// NewConfig creates a new configuration object primed with all the
// default values expected by the regex compiler.
func NewConfig() *Config {
	m := make(Config)
	// pick the longest split when backtracking (regex semantics)
	m.SetBool("regex.greedy", true)
	// `.` matches anything but control characters
	m.SetBool("regex.dot_control", false)
	// unanchored search skips one code point at a time, instead
	// of one byte at a time
	m.SetBool("regex.scan_runes", true)
	// most groups a pattern may declare, 0 means no limit
	m.SetInt("regex.max_groups", 0)
	// wrap the compiled parser with a tracing hook
	m.SetBool("debug.trace", false)
	return &m
}

// Dump writes all the settings sorted by key into `w`
func (c *Config) Dump(w io.Writer) {
	keys := make([]string, 0, len(*c))
	width := 0
	for k := range *c {
		keys = append(keys, k)
		width = max(width, len(k))
	}
	sort.Strings(keys)

	for _, k := range keys {
		fmt.Fprintf(w, "%s%s : %s\n", k, strings.Repeat(" ", width-len(k)), (*c)[k])
	}
}

type cfgValType int

const (
	cfgValType_Undefined cfgValType = iota
	cfgValType_Bool
	cfgValType_Int
	cfgValType_String
)

func (vt cfgValType) String() string {
	return map[cfgValType]string{
		cfgValType_Undefined: "undefined",
		cfgValType_Bool:      "bool",
		cfgValType_Int:       "int",
		cfgValType_String:    "string",
	}[vt]
}

type cfgVal struct {
	typ      cfgValType
	asBool   bool
	asInt    int
	asString string
}

// assignType prevents a setting from silently changing its type
func (v *cfgVal) assignType(vt cfgValType) {
	if v.typ != vt && v.typ != cfgValType_Undefined {
		panic(fmt.Sprintf("Can't assign `%s` to type `%s`", vt, v.typ))
	}
	v.typ = vt
}

func (v *cfgVal) checkType(vt cfgValType) {
	if v.typ != vt {
		panic(fmt.Sprintf("Can't retrieve `%s` from `%s` variable", vt, v.typ))
	}
}

func (v *cfgVal) String() string {
	switch v.typ {
	case cfgValType_Bool:
		return fmt.Sprintf("%t (bool)", v.asBool)
	case cfgValType_Int:
		return fmt.Sprintf("%d (int)", v.asInt)
	case cfgValType_String:
		return fmt.Sprintf("%s (string)", v.asString)
	case cfgValType_Undefined:
		return "(undefined)"
	default:
		panic(fmt.Sprintf("unknown cfgVal type: %v", v.typ))
	}
}

func (c *Config) entry(path string) *cfgVal {
	if v, ok := (*c)[path]; ok {
		return v
	}
	v := &cfgVal{}
	(*c)[path] = v
	return v
}

func (c *Config) SetBool(path string, v bool) {
	e := c.entry(path)
	e.assignType(cfgValType_Bool)
	e.asBool = v
}

func (c *Config) SetInt(path string, v int) {
	e := c.entry(path)
	e.assignType(cfgValType_Int)
	e.asInt = v
}

func (c *Config) SetString(path string, v string) {
	e := c.entry(path)
	e.assignType(cfgValType_String)
	e.asString = v
}

func (c *Config) GetBool(path string) bool {
	if val, ok := (*c)[path]; ok {
		val.checkType(cfgValType_Bool)
		return val.asBool
	}
	panic(fmt.Sprintf("Bool setting `%s` does not exist", path))
}

func (c *Config) GetInt(path string) int {
	if val, ok := (*c)[path]; ok {
		val.checkType(cfgValType_Int)
		return val.asInt
	}
	panic(fmt.Sprintf("Int setting `%s` does not exist", path))
}

func (c *Config) GetString(path string) string {
	if val, ok := (*c)[path]; ok {
		val.checkType(cfgValType_String)
		return val.asString
	}
	panic(fmt.Sprintf("String setting `%s` does not exist", path))
}
