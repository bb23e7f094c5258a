package scanner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDirective(t *testing.T) {
	tests := []struct {
		name    string
		comment string
		want    *Directive
		notOurs bool
		wantErr string
	}{
		{
			name:    "ids and interface",
			comment: "//factorygen:producer ids=2,3 interface=Fruit",
			want:    &Directive{IDs: []int{2, 3}, Interface: "Fruit"},
		},
		{
			name:    "spaced line comment with constructor",
			comment: "// factorygen:producer interface=example.com/app/fruits.Fruit ids=6 new=NewPersimmon",
			want:    &Directive{IDs: []int{6}, Interface: "example.com/app/fruits.Fruit", Constructor: "NewPersimmon"},
		},
		{
			name:    "block comment",
			comment: "/* factorygen:producer ids=1 interface=Fruit */",
			want:    &Directive{IDs: []int{1}, Interface: "Fruit"},
		},
		{
			name:    "empty ids is an empty set",
			comment: "//factorygen:producer ids= interface=Fruit",
			want:    &Directive{IDs: []int{}, Interface: "Fruit"},
		},
		{
			name:    "absent ids stays nil",
			comment: "//factorygen:producer interface=Fruit",
			want:    &Directive{Interface: "Fruit"},
		},
		{
			name:    "bare directive",
			comment: "//factorygen:producer",
			want:    &Directive{},
		},
		{
			name:    "unrelated comment",
			comment: "// Pear is a fruit.",
			notOurs: true,
		},
		{
			name:    "other tool directive",
			comment: "//go:generate factorygen generate",
			notOurs: true,
		},
		{
			name:    "prefix of another directive",
			comment: "//factorygen:producers ids=1",
			notOurs: true,
		},
		{
			name:    "negative id",
			comment: "//factorygen:producer ids=-1 interface=Fruit",
			wantErr: "id -1 is negative",
		},
		{
			name:    "not a number",
			comment: "//factorygen:producer ids=1,two interface=Fruit",
			wantErr: `invalid id "two"`,
		},
		{
			name:    "trailing comma",
			comment: "//factorygen:producer ids=1, interface=Fruit",
			wantErr: `invalid id ""`,
		},
		{
			name:    "unknown key",
			comment: "//factorygen:producer ids=1 superclass=Fruit",
			wantErr: `unknown key "superclass"`,
		},
		{
			name:    "missing equals",
			comment: "//factorygen:producer ids=1 Fruit",
			wantErr: `expected key=value, got "Fruit"`,
		},
		{
			name:    "duplicate key",
			comment: "//factorygen:producer ids=1 ids=2 interface=Fruit",
			wantErr: `duplicate key "ids"`,
		},
		{
			name:    "bad constructor",
			comment: "//factorygen:producer ids=1 interface=Fruit new=pkg.NewPear",
			wantErr: "is not an identifier",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok, err := ParseDirective(tt.comment)
			if tt.notOurs {
				assert.False(t, ok)
				assert.NoError(t, err)
				assert.Nil(t, got)
				return
			}
			require.True(t, ok)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSuggest(t *testing.T) {
	candidates := []string{"Fruit", "Seed", "Vegetable"}

	got, ok := Suggest("Fruti", candidates)
	assert.True(t, ok)
	assert.Equal(t, "Fruit", got)

	got, ok = Suggest("vegtable", candidates)
	assert.True(t, ok)
	assert.Equal(t, "Vegetable", got)

	_, ok = Suggest("Engine", candidates)
	assert.False(t, ok)

	_, ok = Suggest("Fruit", nil)
	assert.False(t, ok)
}
