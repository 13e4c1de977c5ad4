package settings

import (
	"math"
	"reflect"
	"sync"
	"testing"
)

func TestParse_TypesRecognizedKeys(t *testing.T) {
	s := Parse("?temperature=0.7&max_output_tokens=256&foo=bar")

	temp, ok := s.Temperature()
	if !ok || temp != 0.7 {
		t.Fatalf("Temperature() = %v, %v, want 0.7, true", temp, ok)
	}
	tokens, ok := s.MaxOutputTokens()
	if !ok || tokens != 256 {
		t.Fatalf("MaxOutputTokens() = %v, %v, want 256, true", tokens, ok)
	}
	foo, ok := s.Get("foo")
	if !ok || foo.Kind != KindString || foo.Str != "bar" {
		t.Fatalf("Get(foo) = %#v, %v, want string bar", foo, ok)
	}
	if got := s.Keys(); !reflect.DeepEqual(got, []string{"foo", "max_output_tokens", "temperature"}) {
		t.Fatalf("Keys() = %v", got)
	}
}

func TestParse_NumericFallbackKeepsString(t *testing.T) {
	s := Parse("temperature=warm&max_output_tokens=lots")

	if _, ok := s.Temperature(); ok {
		t.Fatalf("Temperature() ok = true, want false for non-numeric value")
	}
	if got := s.String(KeyTemperature); got != "warm" {
		t.Fatalf("String(temperature) = %q, want warm", got)
	}
	if _, ok := s.MaxOutputTokens(); ok {
		t.Fatalf("MaxOutputTokens() ok = true, want false for non-numeric value")
	}
	if got := s.String(KeyMaxOutputTokens); got != "lots" {
		t.Fatalf("String(max_output_tokens) = %q, want lots", got)
	}
}

func TestParse_LeadingNumericPrefix(t *testing.T) {
	cases := []struct {
		name      string
		query     string
		wantFloat float64
		wantInt   int
	}{
		{"trailing junk", "temperature=0.5abc&max_output_tokens=128px", 0.5, 128},
		{"leading space", "temperature=%20%201.25&max_output_tokens=%20%2064", 1.25, 64},
		{"exponent", "temperature=1e-1&max_output_tokens=12.9", 0.1, 12},
		{"leading dot", "temperature=.25&max_output_tokens=+7", 0.25, 7},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := Parse(tc.query)
			f, ok := s.Temperature()
			if !ok || f != tc.wantFloat {
				t.Fatalf("Temperature() = %v, %v, want %v", f, ok, tc.wantFloat)
			}
			n, ok := s.MaxOutputTokens()
			if !ok || n != tc.wantInt {
				t.Fatalf("MaxOutputTokens() = %v, %v, want %v", n, ok, tc.wantInt)
			}
		})
	}
}

func TestParse_LastValueWinsAndDecodes(t *testing.T) {
	s := Parse("model=a&model=b&note=hello+world&path=%2Ftmp")
	if got := s.String("model"); got != "b" {
		t.Fatalf("model = %q, want b", got)
	}
	if got := s.String("note"); got != "hello world" {
		t.Fatalf("note = %q, want %q", got, "hello world")
	}
	if got := s.String("path"); got != "/tmp" {
		t.Fatalf("path = %q, want /tmp", got)
	}
}

func TestParse_MalformedEscapesKeepRawText(t *testing.T) {
	cases := []struct {
		query string
		key   string
		want  string
	}{
		{"note=100%", "note", "100%"},
		{"note=50%25+off%zz", "note", "50% off%zz"},
		{"odd%g=yes", "odd%g", "yes"},
		{"bytes=%E9t%C3%A9", "bytes", "\uFFFDté"},
	}
	for _, tc := range cases {
		s := Parse(tc.query)
		v, ok := s.Get(tc.key)
		if !ok || v.Str != tc.want {
			t.Fatalf("Parse(%q) %s = %q, %v, want %q", tc.query, tc.key, v.Str, ok, tc.want)
		}
	}

	s := Parse("temperature=0.3%&max_output_tokens=%2")
	if f, ok := s.Temperature(); !ok || f != 0.3 {
		t.Fatalf("Temperature() = %v, %v, want 0.3", f, ok)
	}
	if got := s.String(KeyMaxOutputTokens); got != "%2" {
		t.Fatalf("max_output_tokens = %q, want raw %%2", got)
	}
}

func TestParse_OutOfRangeNumbersSaturate(t *testing.T) {
	cases := []struct {
		name      string
		query     string
		wantFloat float64
		wantInt   int
		wantText  string
	}{
		{"huge", "temperature=1e999&max_output_tokens=99999999999999999999999", math.Inf(1), math.MaxInt, "Infinity"},
		{"huge negative", "temperature=-1e999&max_output_tokens=-99999999999999999999999", math.Inf(-1), math.MinInt, "-Infinity"},
		{"literal", "temperature=Infinity&max_output_tokens=1", math.Inf(1), 1, "Infinity"},
		{"signed literal", "temperature=-Infinityx&max_output_tokens=2", math.Inf(-1), 2, "-Infinity"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := Parse(tc.query)
			f, ok := s.Temperature()
			if !ok || f != tc.wantFloat {
				t.Fatalf("Temperature() = %v, %v, want %v", f, ok, tc.wantFloat)
			}
			if got := s.String(KeyTemperature); got != tc.wantText {
				t.Fatalf("String(temperature) = %q, want %q", got, tc.wantText)
			}
			n, ok := s.MaxOutputTokens()
			if !ok || n != tc.wantInt {
				t.Fatalf("MaxOutputTokens() = %v, %v, want %v", n, ok, tc.wantInt)
			}
		})
	}

	if _, ok := Parse("temperature=--Infinity").Temperature(); ok {
		t.Fatalf("doubly signed Infinity parsed as a number")
	}
}

func TestParse_EmptyQuery(t *testing.T) {
	s := Parse("")
	if len(s.Keys()) != 0 {
		t.Fatalf("Keys() = %v, want none", s.Keys())
	}
	if s.HasToken() {
		t.Fatalf("HasToken() = true on fresh settings")
	}
}

func TestToken_ConcurrentAccess(t *testing.T) {
	s := Parse("")
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.SetToken("abc")
		}()
		go func() {
			defer wg.Done()
			_ = s.Token()
		}()
	}
	wg.Wait()
	if got := s.Token(); got != "abc" {
		t.Fatalf("Token() = %q, want abc", got)
	}
}
