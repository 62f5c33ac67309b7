package nlu

import "testing"

func TestNormalizeAccentsAndCase(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"João Silva", "joao silva"},
		{"JOÃO  SILVA", "joao silva"},
		{"café!", "cafe"},
		{"Lançar o e-mail?", "lancar o email"},
		{"  definir alarme para 7:30  ", "definir alarme para 730"},
		{"", ""},
		{"!!!", ""},
	}
	for _, c := range cases {
		if got := Normalize(c.in); got != c.want {
			t.Fatalf("Normalize(%q)=%q, want %q", c.in, got, c.want)
		}
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{"João", "pesquisar receita de bolo", "Câmera, já!", "álcool-gel 70%"}
	for _, in := range inputs {
		once := Normalize(in)
		if twice := Normalize(once); twice != once {
			t.Fatalf("Normalize not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

func TestNormalizeEquatesAccentVariants(t *testing.T) {
	if Normalize("José") != Normalize("jose") {
		t.Fatalf("accent variants should normalize equal")
	}
	if Normalize("CÂMERA") != Normalize("camera") {
		t.Fatalf("case/accent variants should normalize equal")
	}
}
