package identfmt

import "testing"

func Test_ExportedIdent(t *testing.T) {
	cases := map[string]string{
		"list_of-items": "ListOfItems",
		"Expr":          "Expr",
		"NUMBER":        "Number",
		"camelCase":     "CamelCase",
		"":              "X",
		"___":           "X",
	}

	for in, want := range cases {
		if got := ExportedIdent(in); got != want {
			t.Errorf("ExportedIdent(%q) = %q, want %q", in, got, want)
		}
	}
}

func Test_ExportedIdent_neverStartsWithDigit(t *testing.T) {
	got := ExportedIdent("123")
	if len(got) == 0 || (got[0] >= '0' && got[0] <= '9') {
		t.Errorf("ExportedIdent(123) = %q, starts with a digit", got)
	}
}

func Test_UnexportedIdent(t *testing.T) {
	if got := UnexportedIdent("Expr"); got != "expr" {
		t.Errorf("UnexportedIdent(Expr) = %q, want expr", got)
	}
}

func Test_FuncName(t *testing.T) {
	if got := FuncName("Expr"); got != "ParseExpr" {
		t.Errorf("FuncName(Expr) = %q, want ParseExpr", got)
	}
}
