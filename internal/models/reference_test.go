package models

import (
	"encoding/json"
	"testing"
)

func TestScalarKeepsJSONKind(t *testing.T) {
	in := `{"pages":"1-9","volume":"12","year":2020}`
	var r Reference
	if err := json.Unmarshal([]byte(in), &r); err != nil {
		t.Fatal(err)
	}
	if r.Volume.Number || !r.Year.Number {
		t.Errorf("volume = %+v, year = %+v", r.Volume, r.Year)
	}
	out, err := json.Marshal(r)
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != in {
		t.Errorf("Marshal = %s, want %s", out, in)
	}
}

func TestScalarNonNumericNumberFlag(t *testing.T) {
	out, err := json.Marshal(Number("12a"))
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != `"12a"` {
		t.Errorf("Marshal = %s", out)
	}
}

func TestScalarOmitted(t *testing.T) {
	out, err := json.Marshal(Reference{Title: "T"})
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != `{"title":"T"}` {
		t.Errorf("Marshal = %s", out)
	}
}
