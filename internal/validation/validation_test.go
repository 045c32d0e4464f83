package validation

import (
	"testing"

	"github.com/farxc/gestao-fretes/internal/apperr"
)

type vehicleInput struct {
	Plate        string  `json:"placa" validate:"required,plate"`
	TrailerPlate *string `json:"placa_carreta" validate:"omitempty,plate"`
	VehicleType  string  `json:"tipo_veiculo" validate:"required,oneof=TRUCADO TOCO CARRETA BITREM RODOTREM"`
	Document     *string `json:"documento" validate:"omitempty,document"`
	Year         *int    `json:"ano_fabricacao" validate:"omitempty,gte=1950"`
}

func fieldCodes(t *testing.T, err error) map[string]string {
	t.Helper()
	e, ok := apperr.As(err)
	if !ok {
		t.Fatalf("error %v is not *apperr.Error", err)
	}
	if e.Kind != apperr.KindValidation {
		t.Fatalf("Kind = %v, want validation", e.Kind)
	}
	out := map[string]string{}
	for _, f := range e.Fields {
		out[f.Field] = f.Code
	}
	return out
}

func TestStruct_Valid(t *testing.T) {
	v := New()
	trailer := "xyz-9876"
	in := vehicleInput{Plate: "ABC1D23", TrailerPlate: &trailer, VehicleType: "CARRETA"}

	if err := v.Struct(in); err != nil {
		t.Errorf("Struct() error = %v, want nil", err)
	}
}

func TestStruct_ItemisesFields(t *testing.T) {
	v := New()
	doc := "11111111111"
	in := vehicleInput{Plate: "AB12", VehicleType: "MOTO", Document: &doc}

	codes := fieldCodes(t, v.Struct(in))

	want := map[string]string{"placa": "plate", "tipo_veiculo": "oneof", "documento": "document"}
	for field, code := range want {
		if codes[field] != code {
			t.Errorf("field %s code = %q, want %q", field, codes[field], code)
		}
	}
}

func TestValidDocument(t *testing.T) {
	cases := map[string]bool{
		"52998224725":    true,
		"11444777000161": true,
		"00000000000":    false,
		"1234567890":     false,
		"1234567890a":    false,
	}
	for in, want := range cases {
		if got := ValidDocument(in); got != want {
			t.Errorf("ValidDocument(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestDecode_TypeMismatch(t *testing.T) {
	v := New()
	var dst vehicleInput

	err := v.Decode(map[string]any{"placa": "ABC1234", "tipo_veiculo": "TOCO", "ano_fabricacao": "novo"}, &dst, false)

	codes := fieldCodes(t, err)
	if codes["ano_fabricacao"] != "type" {
		t.Errorf("codes = %v, want ano_fabricacao=type", codes)
	}
}

func TestDecode_StrictRejectsUnknown(t *testing.T) {
	v := New()
	var dst vehicleInput

	err := v.Decode(map[string]any{"placa": "ABC1234", "tipo_veiculo": "TOCO", "cor": "azul"}, &dst, true)

	codes := fieldCodes(t, err)
	if codes["cor"] != "unknown" {
		t.Errorf("codes = %v, want cor=unknown", codes)
	}
}

func TestDecode_LenientIgnoresUnknown(t *testing.T) {
	v := New()
	var dst vehicleInput

	err := v.Decode(map[string]any{"placa": "ABC1234", "tipo_veiculo": "TOCO", "cor": "azul"}, &dst, false)
	if err != nil {
		t.Errorf("Decode() error = %v, want nil", err)
	}
}
