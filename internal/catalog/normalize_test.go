package catalog

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Dune", "dune"},
		{"  Cien Años de  Soledad ", "cien anos de soledad"},
		{"Gabriel García Márquez", "gabriel garcia marquez"},
		{"ÜBER\tALLES", "uber alles"},
		{"", ""},
		{"   ", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeText(tt.in), "input %q", tt.in)
	}
}

func TestNormalizeDigitsAndEmail(t *testing.T) {
	assert.Equal(t, "9780441013593", NormalizeDigits("978-0-441-01359-3"))
	assert.Equal(t, "5551234", NormalizeDigits("+555 12-34"))
	assert.Equal(t, "", NormalizeDigits("abc"))
	assert.Equal(t, "juan@email.com", NormalizeEmail("  Juan@Email.COM "))
}

func TestCleanISBN(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "isbn-13 with hyphens", in: "978-0-441-01359-3", want: "9780441013593"},
		{name: "isbn-10 with spaces", in: "0 441 01359 7", want: "0441013597"},
		{name: "empty", in: " - ", wantErr: true},
		{name: "letters", in: "97804410135X3", wantErr: true},
		{name: "wrong length", in: "12345", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CleanISBN(tt.in)
			if tt.wantErr {
				var verr *ValidationError
				require.True(t, errors.As(err, &verr))
				assert.Equal(t, "isbn", verr.Field)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMemberFieldValidation(t *testing.T) {
	_, err := cleanMemberName("Juan Pérez")
	assert.NoError(t, err)
	_, err = cleanMemberName("R2D2")
	assert.Error(t, err)

	phone, err := cleanPhone(" 555-123 4567 ")
	require.NoError(t, err)
	assert.Equal(t, "555-123 4567", phone)
	_, err = cleanPhone("123")
	assert.Error(t, err)
	_, err = cleanPhone("1234567890123456")
	assert.Error(t, err)
	_, err = cleanPhone("555-CALL-NOW")
	assert.Error(t, err)

	email, err := cleanEmail(" Ana@Email.com ")
	require.NoError(t, err)
	assert.Equal(t, "ana@email.com", email)
	_, err = cleanEmail("ana@localhost")
	assert.Error(t, err)
}

func TestValidationError_Message(t *testing.T) {
	err := invalid("title", "must have at least %d characters", 2)
	assert.Equal(t, "invalid title: must have at least 2 characters", err.Error())
}

func TestErrAlreadyReturnedIsConflict(t *testing.T) {
	assert.ErrorIs(t, ErrAlreadyReturned, ErrConflict)
}
