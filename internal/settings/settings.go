package settings

import (
	"errors"
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"
)

// Recognized numeric keys.
const (
	KeyTemperature     = "temperature"
	KeyMaxOutputTokens = "max_output_tokens"
)

// Kind identifies the dynamic type stored in a Value.
type Kind int

const (
	KindString Kind = iota
	KindFloat
	KindInt
)

// Value is a single typed setting.
type Value struct {
	Kind  Kind
	Str   string
	Float float64
	Int   int
}

// String renders the value the way it would appear in a query string.
func (v Value) String() string {
	switch v.Kind {
	case KindFloat:
		if math.IsInf(v.Float, 0) {
			if v.Float < 0 {
				return "-Infinity"
			}
			return "Infinity"
		}
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	case KindInt:
		return strconv.Itoa(v.Int)
	default:
		return v.Str
	}
}

// Settings is the session configuration built once at startup. Values are
// read-only after Parse; only the token slot changes afterwards.
type Settings struct {
	values map[string]Value

	mu    sync.RWMutex
	token string
}

// Parse builds Settings from a URL query string. A leading "?" is accepted.
// Decoding is lenient: a "%" not followed by two hex digits is kept as is.
// When a key repeats, the last value wins.
func Parse(query string) *Settings {
	s := &Settings{values: map[string]Value{}}
	query = strings.TrimPrefix(strings.TrimSpace(query), "?")
	for _, pair := range strings.Split(query, "&") {
		if pair == "" {
			continue
		}
		rawKey, rawValue, _ := strings.Cut(pair, "=")
		key := unescape(rawKey)
		s.values[key] = typedValue(key, unescape(rawValue))
	}
	return s
}

// unescape decodes one form-encoded component. Bytes that do not form valid
// UTF-8 after decoding become U+FFFD.
func unescape(raw string) string {
	if !strings.ContainsAny(raw, "%+") {
		return raw
	}
	var b strings.Builder
	b.Grow(len(raw))
	for i := 0; i < len(raw); i++ {
		switch c := raw[i]; {
		case c == '+':
			b.WriteByte(' ')
		case c == '%' && i+2 < len(raw) && isHex(raw[i+1]) && isHex(raw[i+2]):
			b.WriteByte(unhex(raw[i+1])<<4 | unhex(raw[i+2]))
			i += 2
		default:
			b.WriteByte(c)
		}
	}
	decoded := b.String()
	if utf8.ValidString(decoded) {
		return decoded
	}
	var out strings.Builder
	out.Grow(len(decoded))
	for _, r := range decoded {
		out.WriteRune(r)
	}
	return out.String()
}

func isHex(c byte) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}

func unhex(c byte) byte {
	switch {
	case c >= 'a':
		return c - 'a' + 10
	case c >= 'A':
		return c - 'A' + 10
	default:
		return c - '0'
	}
}

func typedValue(key, raw string) Value {
	switch key {
	case KeyTemperature:
		if f, ok := parseLeadingFloat(raw); ok {
			return Value{Kind: KindFloat, Float: f}
		}
	case KeyMaxOutputTokens:
		if n, ok := parseLeadingInt(raw); ok {
			return Value{Kind: KindInt, Int: n}
		}
	}
	return Value{Kind: KindString, Str: raw}
}

// Get returns the value stored under key.
func (s *Settings) Get(key string) (Value, bool) {
	if s == nil {
		return Value{}, false
	}
	v, ok := s.values[key]
	return v, ok
}

// String returns the string form of key, or "" when absent.
func (s *Settings) String(key string) string {
	v, ok := s.Get(key)
	if !ok {
		return ""
	}
	return v.String()
}

// Temperature reports the sampling temperature when it parsed as a number.
func (s *Settings) Temperature() (float64, bool) {
	v, ok := s.Get(KeyTemperature)
	if !ok || v.Kind != KindFloat {
		return 0, false
	}
	return v.Float, true
}

// MaxOutputTokens reports the output token budget when it parsed as an integer.
func (s *Settings) MaxOutputTokens() (int, bool) {
	v, ok := s.Get(KeyMaxOutputTokens)
	if !ok || v.Kind != KindInt {
		return 0, false
	}
	return v.Int, true
}

// Keys returns the parsed keys in sorted order.
func (s *Settings) Keys() []string {
	if s == nil {
		return nil
	}
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Token returns the session token, or "" when none has been acquired.
func (s *Settings) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// HasToken reports whether a token is present.
func (s *Settings) HasToken() bool {
	return s.Token() != ""
}

// SetToken stores the session token.
func (s *Settings) SetToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

// parseLeadingFloat mirrors parseFloat semantics: surrounding whitespace is
// ignored and the longest numeric prefix is used. Out of range values
// saturate to ±Inf, and "Infinity" is accepted with an optional sign.
func parseLeadingFloat(raw string) (float64, bool) {
	text := strings.TrimLeftFunc(raw, unicode.IsSpace)
	unsigned := strings.TrimLeft(text, "+-")
	if len(text)-len(unsigned) <= 1 && strings.HasPrefix(unsigned, "Infinity") {
		if strings.HasPrefix(text, "-") {
			return math.Inf(-1), true
		}
		return math.Inf(1), true
	}
	end := 0
	seenDigit, seenDot, seenExp := false, false, false
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c >= '0' && c <= '9':
			seenDigit = true
			end = i + 1
		case (c == '+' || c == '-') && (i == 0 || text[i-1] == 'e' || text[i-1] == 'E'):
		case c == '.' && !seenDot && !seenExp:
			seenDot = true
			if seenDigit {
				end = i + 1
			}
		case (c == 'e' || c == 'E') && seenDigit && !seenExp:
			seenExp = true
		default:
			i = len(text)
		}
	}
	if !seenDigit {
		return 0, false
	}
	candidate := strings.TrimRight(text[:end], "eE+-")
	f, err := strconv.ParseFloat(candidate, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, false
	}
	return f, true
}

// parseLeadingInt mirrors parseInt(value, 10). Integers too large for int
// saturate to its bounds.
func parseLeadingInt(raw string) (int, bool) {
	text := strings.TrimLeftFunc(raw, unicode.IsSpace)
	end := 0
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c >= '0' && c <= '9' {
			end = i + 1
			continue
		}
		if i == 0 && (c == '+' || c == '-') {
			continue
		}
		break
	}
	if end == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(text[:end])
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, false
	}
	return n, true
}
