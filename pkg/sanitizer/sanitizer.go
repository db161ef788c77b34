// Package sanitizer normalizes free-text input before validation and
// persistence. Strategies compose into pipelines so each field type keeps a
// single canonical form.
package sanitizer

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}
