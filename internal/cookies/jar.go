// Package cookies models the client-held portal session as an explicit value.
// Nothing here touches net/http's jar types: the portal session is carried in
// request and response payloads between services, so the jar must be a plain
// serializable value with deterministic merge semantics.
package cookies

import (
	"encoding/json"
	"strings"
)

// Cookie is a single name/value pair. Attributes (Path, HttpOnly, ...) issued
// by the portal are dropped at parse time; only the pair is relayed.
type Cookie struct {
	Name  string
	Value string
}

// Jar is an ordered set of cookies with unique names. Setting a name that is
// already present overwrites the value in place, keeping the original
// position, so iteration order is stable across merges.
type Jar struct {
	cookies []Cookie
}

// New builds a jar from the given cookies, applying last-write-wins per name.
func New(cookies ...Cookie) Jar {
	var j Jar
	for _, c := range cookies {
		j = j.Set(c.Name, c.Value)
	}
	return j
}

// ParseSetCookie builds a jar from raw Set-Cookie header values, keeping only
// the leading name=value of each.
func ParseSetCookie(headers []string) Jar {
	var j Jar
	for _, h := range headers {
		pair, _, _ := strings.Cut(h, ";")
		name, value, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			continue
		}
		j = j.Set(name, strings.TrimSpace(value))
	}
	return j
}

// Set returns a jar with name bound to value. The receiver is not modified.
func (j Jar) Set(name, value string) Jar {
	out := make([]Cookie, len(j.cookies), len(j.cookies)+1)
	copy(out, j.cookies)
	for i := range out {
		if out[i].Name == name {
			out[i].Value = value
			return Jar{cookies: out}
		}
	}
	return Jar{cookies: append(out, Cookie{Name: name, Value: value})}
}

// Get returns the value bound to name, or "".
func (j Jar) Get(name string) string {
	for _, c := range j.cookies {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

// Has reports whether name is present, even with an empty value.
func (j Jar) Has(name string) bool {
	for _, c := range j.cookies {
		if c.Name == name {
			return true
		}
	}
	return false
}

// Len returns the number of distinct names in the jar.
func (j Jar) Len() int { return len(j.cookies) }

// All returns a copy of the cookies in order.
func (j Jar) All() []Cookie {
	out := make([]Cookie, len(j.cookies))
	copy(out, j.cookies)
	return out
}

// Merge folds incoming into base. Every name present in either jar appears in
// the result; where both carry a name, the incoming value wins.
func Merge(base, incoming Jar) Jar {
	out := base
	for _, c := range incoming.cookies {
		out = out.Set(c.Name, c.Value)
	}
	return out
}

// Without returns a jar with the named cookies removed. Used at the boundary
// to strip protocol-internal artifacts before cookies cross a trust edge in
// either direction.
func (j Jar) Without(names ...string) Jar {
	drop := make(map[string]struct{}, len(names))
	for _, n := range names {
		drop[n] = struct{}{}
	}
	var out Jar
	for _, c := range j.cookies {
		if _, skip := drop[c.Name]; !skip {
			out.cookies = append(out.cookies, c)
		}
	}
	return out
}

// Header renders the jar as a Cookie request header value.
func (j Jar) Header() string {
	pairs := make([]string, 0, len(j.cookies))
	for _, c := range j.cookies {
		pairs = append(pairs, c.Name+"="+c.Value)
	}
	return strings.Join(pairs, "; ")
}

// The wire form is a JSON array of "name=value" strings, matching what the
// stage payloads carry between services.

func (j Jar) MarshalJSON() ([]byte, error) {
	pairs := make([]string, 0, len(j.cookies))
	for _, c := range j.cookies {
		pairs = append(pairs, c.Name+"="+c.Value)
	}
	return json.Marshal(pairs)
}

func (j *Jar) UnmarshalJSON(data []byte) error {
	var pairs []string
	if err := json.Unmarshal(data, &pairs); err != nil {
		return err
	}
	out := Jar{}
	for _, p := range pairs {
		name, value, ok := strings.Cut(p, "=")
		if !ok || name == "" {
			continue
		}
		out = out.Set(name, value)
	}
	*j = out
	return nil
}
