package value

import "testing"

func TestToNumberCoercion(t *testing.T) {
	cases := []struct {
		name string
		in   Value
		want float64
		err  bool
	}{
		{"number passes through", Number(3.5), 3.5, false},
		{"true is one", Bool(true), 1, false},
		{"false is zero", Bool(false), 0, false},
		{"empty is zero", Empty, 0, false},
		{"numeric text parses", Text("42.5"), 42.5, false},
		{"non-numeric text errors", Text("hello"), 0, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := c.in.ToNumber()
			if c.err {
				if !got.IsError() {
					t.Fatalf("expected error, got %v", got)
				}
				return
			}
			if got.IsError() {
				t.Fatalf("unexpected error: %v", got)
			}
			if got.Num() != c.want {
				t.Fatalf("got %v, want %v", got.Num(), c.want)
			}
		})
	}
}

func TestToBoolCoercion(t *testing.T) {
	if v := Number(0).ToBool(); v.BoolVal() != false {
		t.Fatalf("expected 0 to be false")
	}
	if v := Number(5).ToBool(); v.BoolVal() != true {
		t.Fatalf("expected nonzero to be true")
	}
	if v := Text("true").ToBool(); v.BoolVal() != true {
		t.Fatalf("expected case-insensitive TRUE text to coerce")
	}
	if v := Text("nope").ToBool(); !v.IsError() {
		t.Fatalf("expected non-boolean text to error")
	}
}

func TestFormatNumberPrecision(t *testing.T) {
	if got := FormatNumber(3.14159, 1); got != "3.1" {
		t.Fatalf("got %q, want 3.1", got)
	}
	if got := FormatNumber(3, 1); got != "3.0" {
		t.Fatalf("got %q, want 3.0", got)
	}
}

func TestDisplayBoolIsTitleCase(t *testing.T) {
	if got := Display(Bool(true), 1); got != "True" {
		t.Fatalf("got %q, want True", got)
	}
	if got := Display(Bool(false), 1); got != "False" {
		t.Fatalf("got %q, want False", got)
	}
}

func TestToTextBoolIsTitleCase(t *testing.T) {
	if got := Bool(true).ToText(1); got.Str() != "True" {
		t.Fatalf("got %q, want True", got.Str())
	}
	if got := Bool(false).ToText(1); got.Str() != "False" {
		t.Fatalf("got %q, want False", got.Str())
	}
}

func TestDisplayError(t *testing.T) {
	v := NewError(ErrDivZero)
	if got := Display(v, 1); got != "#DIV/0!" {
		t.Fatalf("got %q, want #DIV/0!", got)
	}
}

func TestColumnLetterRoundTrip(t *testing.T) {
	cases := map[string]int{"A": 0, "Z": 25, "AA": 26, "AB": 27, "BA": 52}
	for letters, want := range cases {
		if got := ColumnLetterToIndex(letters); got != want {
			t.Fatalf("ColumnLetterToIndex(%q) = %d, want %d", letters, got, want)
		}
		if got := ColumnIndexToLetter(want); got != letters {
			t.Fatalf("ColumnIndexToLetter(%d) = %q, want %q", want, got, letters)
		}
	}
}

func TestFlattenArray(t *testing.T) {
	arr := Array([][]Value{
		{Number(1), Number(2)},
		{Number(3), Empty},
	})
	flat := arr.Flatten()
	if len(flat) != 4 {
		t.Fatalf("expected 4 flattened values, got %d", len(flat))
	}
}
