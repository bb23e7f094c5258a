// Package testing provides fixtures shared by the generator tests.
package testing

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteModule lays out a throwaway Go module under t.TempDir() and returns
// its root. files maps slash separated paths to contents; a go.mod declaring
// modulePath is added unless files already holds one.
func WriteModule(t *testing.T, modulePath string, files map[string]string) string {
	t.Helper()

	root := t.TempDir()
	if _, ok := files["go.mod"]; !ok {
		WriteFile(t, root, "go.mod", "module "+modulePath+"\n\ngo 1.25\n")
	}
	for name, content := range files {
		WriteFile(t, root, name, content)
	}
	return root
}

// WriteFile writes content to root/name, creating parent directories.
func WriteFile(t *testing.T, root, name, content string) string {
	t.Helper()

	path := filepath.Join(root, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("create fixture dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture %s: %v", name, err)
	}
	return path
}

// FruitFiles is the canonical fixture: a Fruit interface with four producers
// in package example.com/orchard/fruits.
var FruitFiles = map[string]string{
	"fruits/fruit.go": `package fruits

// Fruit is produced by the generated FruitFactory.
type Fruit interface {
	Produce() string
}
`,
	"fruits/apple.go": `package fruits

//factorygen:producer ids=1 interface=Fruit
type Apple struct{}

func (Apple) Produce() string { return "apple" }
`,
	"fruits/orange.go": `package fruits

// Orange is registered before Pear because files are scanned by name.
//
//factorygen:producer ids=4,5 interface=Fruit
type Orange struct{}

func (*Orange) Produce() string { return "orange" }
`,
	"fruits/pear.go": `package fruits

type (
	//factorygen:producer ids=2,3 interface=Fruit
	Pear struct{}

	// unused carries no directive.
	unused struct{}
)

func (Pear) Produce() string { return "pear" }
`,
	"fruits/persimmon.go": `package fruits

//factorygen:producer ids=6 interface=example.com/orchard/fruits.Fruit
type Persimmon struct{}

func (Persimmon) Produce() string { return "persimmon" }
`,
}
