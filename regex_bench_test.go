package combinator

import (
	"regexp"
	"strings"
	"testing"
)

func BenchmarkRegex(b *testing.B) {
	inputs := []struct {
		name    string
		pattern string
		input   string
	}{
		{"literal", `needle`, strings.Repeat("hay ", 64) + "needle"},
		{"greedy", `a+a`, strings.Repeat("a", 64)},
		{"groups", `(\d+)-(\d+)`, "order 1234-5678 shipped"},
		{"backref", `(\w+) \1`, "one two three three four"},
	}
	for _, in := range inputs {
		re := MustCompile(in.pattern)
		b.Run("combinator/"+in.name, func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				if re.Search(in.input) == nil {
					b.Fatal("no match")
				}
			}
		})
		// the standard library has no backreferences
		if in.name == "backref" {
			continue
		}
		std := regexp.MustCompile(in.pattern)
		b.Run("regexp/"+in.name, func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				if std.FindStringSubmatch(in.input) == nil {
					b.Fatal("no match")
				}
			}
		})
	}
}
