package validate_test

import (
	"testing"

	"github.com/Astemirdum/bookstore-service/pkg/validate"
	"github.com/stretchr/testify/require"
)

func TestCustomValidator_Digits(t *testing.T) {
	t.Parallel()
	type isbn struct {
		ISBN string `validate:"required,digits,len=13"`
	}
	v := validate.NewCustomValidator()

	tests := []struct {
		name    string
		in      string
		wantErr bool
	}{
		{name: "ok", in: "9780134190440"},
		{name: "short", in: "978013419044", wantErr: true},
		{name: "letters", in: "978013419044X", wantErr: true},
		{name: "sign", in: "-978013419044", wantErr: true},
		{name: "empty", in: "", wantErr: true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := v.Validate(isbn{ISBN: tt.in})
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestCustomValidator_Var(t *testing.T) {
	t.Parallel()
	v := validate.NewCustomValidator()
	require.NoError(t, v.Var("a@b.io", "email"))
	require.Error(t, v.Var("not-an-email", "email"))
}
