package model

import (
	"encoding/json"
	"testing"
)

func TestMediaRef_UnmarshalJSON(t *testing.T) {
	cases := map[string]MediaRef{
		`{"id":"a1","url":"/m/a1.png"}`: {ID: "a1", URL: "/m/a1.png"},
		`{"id":42,"url":"/m/42.png"}`:   {ID: "42", URL: "/m/42.png"},
		`{"id":null,"url":"/m/x.png"}`:  {URL: "/m/x.png"},
		`{"url":"/m/y.png"}`:            {URL: "/m/y.png"},
	}
	for input, want := range cases {
		var got MediaRef
		if err := json.Unmarshal([]byte(input), &got); err != nil {
			t.Fatalf("%s: %v", input, err)
		}
		if got != want {
			t.Fatalf("%s: want %+v, got %+v", input, want, got)
		}
	}

	var bad MediaRef
	if err := json.Unmarshal([]byte(`{"id":true}`), &bad); err == nil {
		t.Fatalf("expected error for boolean id")
	}
}
