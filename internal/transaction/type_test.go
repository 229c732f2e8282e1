package transaction

import (
	"errors"
	"testing"
)

func TestParseType(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Type
		wantErr bool
	}{
		{name: "lowercase", input: "buy", want: Buy},
		{name: "mixed case donate", input: "dOnAtE", want: Donate},
		{name: "capitalized earn", input: "Earn", want: Earn},
		{name: "uppercase gift", input: "GIFT", want: Gift},
		{name: "mixed case move", input: "MoVe", want: Move},
		{name: "sell", input: "sell", want: Sell},
		{name: "unknown", input: "Cook", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseType(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownType) {
					t.Fatalf("ParseType(%q) error = %v, want ErrUnknownType", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseType(%q) error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseType(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestTypeDirection(t *testing.T) {
	tests := []struct {
		typ  Type
		want Direction
	}{
		{typ: Buy, want: DirIn},
		{typ: Earn, want: DirIn},
		{typ: Sell, want: DirOut},
		{typ: Gift, want: DirOut},
		{typ: Donate, want: DirOut},
		{typ: Move, want: DirIntra},
	}

	for _, tt := range tests {
		t.Run(string(tt.typ), func(t *testing.T) {
			got, err := tt.typ.Direction()
			if err != nil {
				t.Fatalf("Direction() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Direction() = %v, want %v", got, tt.want)
			}
		})
	}

	if _, err := Type("cook").Direction(); !errors.Is(err, ErrUnknownType) {
		t.Errorf("Direction() on bad type = %v, want ErrUnknownType", err)
	}
}

func TestParseDirection(t *testing.T) {
	if d, err := ParseDirection("IN"); err != nil || d != DirIn {
		t.Errorf("ParseDirection(IN) = %v, %v", d, err)
	}
	if _, err := ParseDirection("sideways"); !errors.Is(err, ErrUnknownDirection) {
		t.Errorf("ParseDirection(sideways) error = %v, want ErrUnknownDirection", err)
	}
}
