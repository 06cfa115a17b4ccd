// Package mail builds templated HTML messages and delivers them through a
// pluggable transport (dummy for tests and development, SendGrid in production).
package mail

import (
	"sort"
	"strings"
)

// Message is one outbound HTML email. Keys fill [KEY] placeholders in HTMLBody.
type Message struct {
	From     string
	To       []string
	Subject  string
	HTMLBody string
	Keys     map[string]string
}

// Compile returns HTMLBody with every [KEY] placeholder replaced by its value.
// Placeholders without a key are left as is.
func (m Message) Compile() string {
	if len(m.Keys) == 0 {
		return m.HTMLBody
	}
	names := make([]string, 0, len(m.Keys))
	for k := range m.Keys {
		names = append(names, k)
	}
	sort.Strings(names)
	pairs := make([]string, 0, 2*len(names))
	for _, k := range names {
		pairs = append(pairs, "["+k+"]", m.Keys[k])
	}
	return strings.NewReplacer(pairs...).Replace(m.HTMLBody)
}
