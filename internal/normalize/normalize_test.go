package normalize

import "testing"

func TestRules_OnlyPresentFields(t *testing.T) {
	m := map[string]any{"placa": " abc1d23 "}
	rules := Rules{"placa": Chain(Trim, Upper), "placa_carreta": OptionalUpper}

	rules.Apply(m)

	if m["placa"] != "ABC1D23" {
		t.Errorf("placa = %v, want ABC1D23", m["placa"])
	}
	if _, ok := m["placa_carreta"]; ok {
		t.Errorf("placa_carreta was added by normalisation")
	}
}

func TestEmptyToNull(t *testing.T) {
	m := map[string]any{"ticket": "   ", "observacoes": "ok"}
	Rules{"ticket": EmptyToNull, "observacoes": EmptyToNull}.Apply(m)

	if v, ok := m["ticket"]; !ok || v != nil {
		t.Errorf("ticket = %v (present %v), want explicit nil", v, ok)
	}
	if m["observacoes"] != "ok" {
		t.Errorf("observacoes = %v, want ok", m["observacoes"])
	}
}

func TestStripNonDigits(t *testing.T) {
	if got := StripNonDigits("123.456.789-09"); got != "12345678909" {
		t.Errorf("StripNonDigits() = %v, want 12345678909", got)
	}
}

func TestUpper_Portuguese(t *testing.T) {
	if got := Upper("joão da conceição"); got != "JOÃO DA CONCEIÇÃO" {
		t.Errorf("Upper() = %v", got)
	}
}

func TestDateISO(t *testing.T) {
	cases := map[string]string{
		"05-03-2026": "2026-03-05",
		"05/03/2026": "2026-03-05",
		"2026-03-05": "2026-03-05",
		"5-3-2026":   "5-3-2026",
	}
	for in, want := range cases {
		if got := DateISO(in); got != want {
			t.Errorf("DateISO(%q) = %v, want %q", in, got, want)
		}
	}
}

func TestNonStringsPassThrough(t *testing.T) {
	if got := OptionalUpper(12.5); got != 12.5 {
		t.Errorf("OptionalUpper(12.5) = %v", got)
	}
	if got := OptionalUpper(nil); got != nil {
		t.Errorf("OptionalUpper(nil) = %v", got)
	}
}

func TestIDList(t *testing.T) {
	got, ok := IDList("1, 2,,3 ").([]any)
	if !ok || len(got) != 3 || got[0] != int64(1) || got[1] != int64(2) || got[2] != int64(3) {
		t.Errorf("IDList(\"1, 2,,3 \") = %#v, want [1 2 3]", got)
	}

	arr := []any{float64(4)}
	if got, ok := IDList(arr).([]any); !ok || len(got) != 1 || got[0] != float64(4) {
		t.Errorf("IDList(array) = %#v, want it unchanged", got)
	}

	if got, ok := IDList("1,x").([]any); !ok || len(got) != 2 || got[1] != "x" {
		t.Errorf("IDList(\"1,x\") = %#v, want [1 x]", got)
	}
}

func TestSchema_Alias(t *testing.T) {
	s := Schema{
		Aliases: map[string]string{"dataFrete": "data_frete"},
		Fields:  Rules{"data_frete": DateISO},
	}

	m := s.Apply(map[string]any{"dataFrete": "01-02-2026"})
	if m["data_frete"] != "2026-02-01" {
		t.Errorf("data_frete = %v, want 2026-02-01", m["data_frete"])
	}
	if _, ok := m["dataFrete"]; ok {
		t.Errorf("alias key kept")
	}

	m = s.Apply(map[string]any{"dataFrete": "01-02-2026", "data_frete": "2026-03-03"})
	if m["data_frete"] != "2026-03-03" {
		t.Errorf("data_frete = %v, want explicit value kept", m["data_frete"])
	}
}
