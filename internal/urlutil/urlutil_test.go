package urlutil

import (
	"net/url"
	"testing"
)

func TestAppendQueryParamsSeparatorSelection(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
		params  Params
		want    string
	}{
		{
			name:    "plain base url",
			baseURL: "http://x/y",
			params:  Params{{Name: "a", Value: 1}},
			want:    "http://x/y?a=1",
		},
		{
			name:    "trailing question mark",
			baseURL: "http://x/y?",
			params:  Params{{Name: "a", Value: 1}},
			want:    "http://x/y?a=1",
		},
		{
			name:    "existing query string",
			baseURL: "http://x/y?b=2",
			params:  Params{{Name: "a", Value: 1}},
			want:    "http://x/y?b=2&a=1",
		},
		{
			name:    "trailing ampersand",
			baseURL: "http://x/y?b=2&",
			params:  Params{{Name: "a", Value: 1}},
			want:    "http://x/y?b=2&a=1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AppendQueryParams(tt.baseURL, tt.params)
			if got != tt.want {
				t.Fatalf("AppendQueryParams() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAppendQueryParamsEmptyParams(t *testing.T) {
	if got := AppendQueryParams("http://x/y?b=2", nil); got != "http://x/y?b=2" {
		t.Fatalf("AppendQueryParams() = %q, want base url unchanged", got)
	}
	if got := AppendQueryParams("http://x/y", Params{}); got != "http://x/y" {
		t.Fatalf("AppendQueryParams() = %q, want base url unchanged", got)
	}
}

func TestAppendQueryParamsAllValuesNil(t *testing.T) {
	params := Params{{Name: "a", Value: nil}, {Name: "b", Value: nil}}
	if got := AppendQueryParams("http://x/y", params); got != "http://x/y" {
		t.Fatalf("AppendQueryParams() = %q, want base url unchanged", got)
	}
}

func TestAppendQueryParamsSkipsNilValues(t *testing.T) {
	params := Params{{Name: "a", Value: nil}, {Name: "b", Value: 2}}
	got := AppendQueryParams("http://x/y", params)
	if got != "http://x/y?b=2" {
		t.Fatalf("AppendQueryParams() = %q, want %q", got, "http://x/y?b=2")
	}
}

func TestAppendQueryParamsPreservesInsertionOrder(t *testing.T) {
	params := Params{
		{Name: "z", Value: "last-first"},
		{Name: "a", Value: "first-last"},
		{Name: "m", Value: 3},
	}
	got := AppendQueryParams("http://x/y", params)
	want := "http://x/y?z=last-first&a=first-last&m=3"
	if got != want {
		t.Fatalf("AppendQueryParams() = %q, want %q", got, want)
	}
}

func TestAppendQueryParamsEncodesReservedCharacters(t *testing.T) {
	params := Params{{Name: "q", Value: "a b&c"}}
	got := AppendQueryParams("http://x/y", params)

	parsed, err := url.Parse(got)
	if err != nil {
		t.Fatalf("url.Parse(%q) error = %v", got, err)
	}
	if decoded := parsed.Query().Get("q"); decoded != "a b&c" {
		t.Fatalf("decoded q = %q, want %q", decoded, "a b&c")
	}
}

func TestAppendQueryParamsCoercesScalars(t *testing.T) {
	params := Params{
		{Name: "limit", Value: 100},
		{Name: "active", Value: true},
		{Name: "ratio", Value: 0.5},
	}
	got := AppendQueryParams("http://x/y", params)
	want := "http://x/y?limit=100&active=true&ratio=0.5"
	if got != want {
		t.Fatalf("AppendQueryParams() = %q, want %q", got, want)
	}
}

func TestAppendQueryParamsRepeatsMultiValuedKeys(t *testing.T) {
	params := Params{{Name: "tag", Value: []string{"red", "blue"}}, {Name: "n", Value: []any{1, 2}}}
	got := AppendQueryParams("http://x/y", params)
	want := "http://x/y?tag=red&tag=blue&n=1&n=2"
	if got != want {
		t.Fatalf("AppendQueryParams() = %q, want %q", got, want)
	}
}

func TestAppendQueryParamsDoesNotDeduplicateExistingQuery(t *testing.T) {
	params := Params{{Name: "a", Value: 1}}
	got := AppendQueryParams("http://x/y?a=5", params)
	if got != "http://x/y?a=5&a=1" {
		t.Fatalf("AppendQueryParams() = %q, want both a params kept", got)
	}
}

func TestEncodeReencodingIsStable(t *testing.T) {
	params := Params{{Name: "a", Value: "1"}, {Name: "b", Value: "two"}}
	encoded := params.Encode()

	decoded, err := url.ParseQuery(encoded)
	if err != nil {
		t.Fatalf("ParseQuery(%q) error = %v", encoded, err)
	}
	reencoded := Params{
		{Name: "a", Value: decoded.Get("a")},
		{Name: "b", Value: decoded.Get("b")},
	}.Encode()
	if reencoded != encoded {
		t.Fatalf("re-encoded query = %q, want %q", reencoded, encoded)
	}
}
