package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToSnakeCase(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"Fruit", "fruit"},
		{"fruit", "fruit"},
		{"ShapeFactory", "shape_factory"},
		{"HTTPClient", "http_client"},
		{"XMLParser", "xml_parser"},
		{"ID", "id"},
		{"Vector3D", "vector3_d"},
		{"already_snake", "already_snake"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ToSnakeCase(tt.in), tt.in)
	}
}

func TestFactoryFileName(t *testing.T) {
	assert.Equal(t, "fruit_factory.go", FactoryFileName("Fruit"))
	assert.Equal(t, "io_device_factory.go", FactoryFileName("IODevice"))
}

func TestGetVersion(t *testing.T) {
	old := Version
	t.Cleanup(func() { Version = old })

	Version = ""
	v, err := GetVersion()
	assert.NoError(t, err)
	assert.Equal(t, "0.0.1-dev", v)

	Version = "v1.4.2-dirty"
	v, err = GetVersion()
	assert.NoError(t, err)
	assert.Equal(t, "1.4.2-dirty", v)

	Version = "nightly"
	_, err = GetVersion()
	assert.Error(t, err)
}

func TestGeneratedHeader(t *testing.T) {
	h := GeneratedHeader("1.0.0")
	assert.Equal(t, "// Code generated by factorygen 1.0.0. DO NOT EDIT.", h)
	assert.True(t, IsGenerated([]byte(h+"\n\npackage fruits\n")))
	assert.False(t, IsGenerated([]byte("package fruits\n")))
}
