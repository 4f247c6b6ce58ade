package svg

import "strings"

// Declaration is one "name:value" pair of a style attribute.
type Declaration struct {
	Name  string
	Value string
}

// Style is the ordered declaration list of an inline style attribute.
// Declarations keep their original order; setting an existing name replaces
// its value in place.
type Style struct {
	decls []Declaration
}

// ParseStyle parses a style attribute value. Entries without a colon are
// dropped; later duplicates overwrite earlier ones.
func ParseStyle(s string) *Style {
	st := &Style{}
	for _, part := range strings.Split(s, ";") {
		name, value, ok := strings.Cut(part, ":")
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		st.Set(name, strings.TrimSpace(value))
	}
	return st
}

// Get returns the value of a declaration.
func (s *Style) Get(name string) (string, bool) {
	for _, d := range s.decls {
		if d.Name == name {
			return d.Value, true
		}
	}
	return "", false
}

// Has reports whether a declaration is present.
func (s *Style) Has(name string) bool {
	_, ok := s.Get(name)
	return ok
}

// Set adds or replaces a declaration.
func (s *Style) Set(name, value string) {
	for i := range s.decls {
		if s.decls[i].Name == name {
			s.decls[i].Value = value
			return
		}
	}
	s.decls = append(s.decls, Declaration{Name: name, Value: value})
}

// Delete removes a declaration and reports whether it was present.
func (s *Style) Delete(name string) bool {
	for i := range s.decls {
		if s.decls[i].Name == name {
			s.decls = append(s.decls[:i], s.decls[i+1:]...)
			return true
		}
	}
	return false
}

// Len returns the number of declarations.
func (s *Style) Len() int { return len(s.decls) }

// Declarations returns a copy of the declarations in order.
func (s *Style) Declarations() []Declaration {
	return append([]Declaration(nil), s.decls...)
}

// String formats the style as an attribute value, e.g. "fill:none;stroke:#000".
func (s *Style) String() string {
	var b strings.Builder
	for i, d := range s.decls {
		if i > 0 {
			b.WriteByte(';')
		}
		b.WriteString(d.Name)
		b.WriteByte(':')
		b.WriteString(d.Value)
	}
	return b.String()
}
