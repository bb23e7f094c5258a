package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	kongyaml "github.com/alecthomas/kong-yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/Alia5/factorygen/internal/codegen/meta"
	"github.com/Alia5/factorygen/internal/log"
	th "github.com/Alia5/factorygen/internal/testing"
)

func captureStdout(t *testing.T, terminal bool) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	oldOut, oldTerm := stdout, isTerminal
	stdout = &buf
	isTerminal = func(io.Writer) bool { return terminal }
	t.Cleanup(func() { stdout, isTerminal = oldOut, oldTerm })
	return &buf
}

func testLogger(buf *bytes.Buffer) *slog.Logger {
	return log.NewConsoleLogger(slog.LevelInfo, buf, buf)
}

func overlapModule(t *testing.T) string {
	files := map[string]string{
		"fruits/xyz.go": `package fruits

//factorygen:producer ids=7 interface=Fruit
type X struct{}

//factorygen:producer ids=7,8 interface=Fruit
type Y struct{}
`,
	}
	for k, v := range th.FruitFiles {
		files[k] = v
	}
	return th.WriteModule(t, "example.com/orchard", files)
}

func TestList_Plain(t *testing.T) {
	out := captureStdout(t, false)
	root := overlapModule(t)

	c := &List{Inputs: Inputs{Dirs: []string{filepath.Join(root, "fruits")}, ModuleRoot: root}, Format: "auto"}
	require.NoError(t, c.Run(t.Context(), testLogger(&bytes.Buffer{})))

	const p = "example.com/orchard/fruits"
	want := strings.Join([]string{
		p + ".Fruit\t1\t" + p + ".Apple",
		p + ".Fruit\t4\t" + p + ".Orange",
		p + ".Fruit\t5\t" + p + ".Orange",
		p + ".Fruit\t2\t" + p + ".Pear",
		p + ".Fruit\t3\t" + p + ".Pear",
		p + ".Fruit\t6\t" + p + ".Persimmon",
		p + ".Fruit\t7\t" + p + ".X",
		p + ".Fruit\t7\t" + p + ".Y\t" + p + ".X",
		p + ".Fruit\t8\t" + p + ".Y",
	}, "\n") + "\n"
	assert.Equal(t, want, out.String())
	assert.NoFileExists(t, filepath.Join(root, "fruits", "fruit_factory.go"))
}

func TestList_JSONAndTable(t *testing.T) {
	root := overlapModule(t)
	in := Inputs{Dirs: []string{filepath.Join(root, "fruits")}, ModuleRoot: root}

	out := captureStdout(t, false)
	require.NoError(t, (&List{Inputs: in, Format: "json"}).Run(t.Context(), testLogger(&bytes.Buffer{})))
	var rows []Row
	require.NoError(t, json.Unmarshal(out.Bytes(), &rows))
	require.Len(t, rows, 9)
	assert.Equal(t, Row{Interface: "example.com/orchard/fruits.Fruit", ID: 7, Producer: "example.com/orchard/fruits.Y", ShadowedBy: "example.com/orchard/fruits.X"}, rows[7])

	out = captureStdout(t, true)
	require.NoError(t, (&List{Inputs: in, Format: "auto"}).Run(t.Context(), testLogger(&bytes.Buffer{})))
	assert.Contains(t, out.String(), "INTERFACE")
	assert.Contains(t, out.String(), "SHADOWED BY")
	assert.Contains(t, out.String(), "example.com/orchard/fruits.Persimmon")
}

func TestGenerate_DryRun(t *testing.T) {
	out := captureStdout(t, false)
	root := th.WriteModule(t, "example.com/orchard", th.FruitFiles)

	c := &Generate{Inputs: Inputs{Dirs: []string{filepath.Join(root, "fruits")}, ModuleRoot: root}, DryRun: true}
	require.NoError(t, c.Run(t.Context(), testLogger(&bytes.Buffer{}), log.NewSource(nil, false)))

	assert.Contains(t, out.String(), "fruit_factory.go")
	assert.Contains(t, out.String(), "func (FruitFactory) Create(id int) (Fruit, error) {")
	assert.NoFileExists(t, filepath.Join(root, "fruits", "fruit_factory.go"))
}

func TestGenerate_ReportsEveryRejection(t *testing.T) {
	root := th.WriteModule(t, "example.com/orchard", map[string]string{
		"fruits/bad.go": `package fruits

type Fruit interface{ Produce() string }

//factorygen:producer ids= interface=Fruit
type Quince struct{}

//factorygen:producer ids=3
type Fig struct{}
`,
	})
	var logs bytes.Buffer
	c := &Generate{Inputs: Inputs{Dirs: []string{filepath.Join(root, "fruits")}, ModuleRoot: root}}
	err := c.Run(t.Context(), testLogger(&logs), log.NewSource(nil, false))

	assert.EqualError(t, err, "2 producer declaration(s) rejected; no files were written")
	assert.Contains(t, logs.String(), "kind=MissingIdentifiers")
	assert.Contains(t, logs.String(), "kind=MissingTargetInterface")
	assert.NoFileExists(t, filepath.Join(root, "fruits", "fruit_factory.go"))
}

func TestReport(t *testing.T) {
	var logs bytes.Buffer
	logger := testLogger(&logs)

	assert.NoError(t, report(logger, nil))

	plain := errors.New("fruits imports factories: generating FruitFactory there would create an import cycle")
	assert.Equal(t, plain, report(logger, plain))

	pe := &meta.ProcessingError{Kind: meta.UnexportedReference, Decl: "example.com/orchard/impl.apple", Msg: "type is unexported"}
	err := report(logger, errors.Join(errors.Join(pe), plain))
	assert.ErrorContains(t, err, "1 producer declaration(s) rejected")
	assert.ErrorIs(t, err, plain)
	assert.Contains(t, logs.String(), "example.com/orchard/impl.apple")
}

func TestConfigInit(t *testing.T) {
	captureStdout(t, false)
	dir := t.TempDir()

	dest := filepath.Join(dir, "factorygen.yaml")
	require.NoError(t, (&ConfigInit{Command: "generate", Format: "yml", Output: dest}).Run())

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	var got map[string]any
	require.NoError(t, yaml.Unmarshal(data, &got))
	assert.Equal(t, map[string]any{
		"generate": map[string]any{
			"manifest":        []any{},
			"default-package": "",
			"output-package":  "",
			"strict":          false,
			"dry-run":         false,
		},
	}, got)

	err = (&ConfigInit{Command: "generate", Format: "yaml", Output: dest}).Run()
	assert.ErrorContains(t, err, "use --force")

	listDest := filepath.Join(dir, "list.json")
	require.NoError(t, (&ConfigInit{Command: "list", Format: "json", Output: listDest}).Run())
	data, err = os.ReadFile(listDest)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"format": "auto"`)
	assert.Contains(t, string(data), `"outputPackage": ""`)
	assert.NotContains(t, string(data), "dirs")

	tomlDest := filepath.Join(dir, "sub", "factorygen.toml")
	require.NoError(t, (&ConfigInit{Command: "generate", Format: "toml", Output: tomlDest}).Run())
	data, err = os.ReadFile(tomlDest)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[generate]")
	assert.Contains(t, string(data), "strict = false")

	assert.Error(t, (&ConfigInit{Command: "server", Format: "json", Output: filepath.Join(dir, "x.json")}).Run())
	assert.Error(t, (&ConfigInit{Command: "generate", Format: "ini"}).Run())
}

// parseWithConfig parses args against the command grammar with one config file.
func parseWithConfig(t *testing.T, loader kong.ConfigurationLoader, path string, args ...string) *commands {
	t.Helper()
	var cli commands
	parser, err := kong.New(&cli, kong.Configuration(loader, path), kong.Exit(func(int) { t.Fatal("kong exited") }))
	require.NoError(t, err)
	_, err = parser.Parse(args)
	require.NoError(t, err)
	return &cli
}

func TestConfigInit_ScaffoldIsReadBack(t *testing.T) {
	captureStdout(t, false)
	moduleRoot := filepath.Join(t.TempDir(), "orchard")

	t.Run("yaml", func(t *testing.T) {
		dest := filepath.Join(t.TempDir(), "factorygen.yaml")
		require.NoError(t, (&ConfigInit{Command: "generate", Format: "yaml", Output: dest}).Run())

		// untouched scaffold keeps the defaults
		cli := parseWithConfig(t, kongyaml.Loader, dest, "generate")
		assert.Empty(t, cli.Generate.ModuleRoot)
		assert.False(t, cli.Generate.Strict)

		data, err := os.ReadFile(dest)
		require.NoError(t, err)
		var cfg map[string]map[string]any
		require.NoError(t, yaml.Unmarshal(data, &cfg))
		cfg["generate"]["module-root"] = moduleRoot
		cfg["generate"]["strict"] = true
		cfg["generate"]["output-package"] = "example.com/orchard/factories"
		cfg["generate"]["manifest"] = []any{"a.yaml", "b.hcl"}
		data, err = yaml.Marshal(cfg)
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(dest, data, 0o644))

		cli = parseWithConfig(t, kongyaml.Loader, dest, "generate")
		assert.Equal(t, moduleRoot, cli.Generate.ModuleRoot)
		assert.True(t, cli.Generate.Strict)
		assert.Equal(t, "example.com/orchard/factories", cli.Generate.OutputPackage)
		assert.Equal(t, []string{"a.yaml", "b.hcl"}, cli.Generate.Manifest)

		// flags still win over the file
		cli = parseWithConfig(t, kongyaml.Loader, dest, "generate", "--output-package=example.com/x")
		assert.Equal(t, "example.com/x", cli.Generate.OutputPackage)
	})

	t.Run("json", func(t *testing.T) {
		dest := filepath.Join(t.TempDir(), "factorygen.json")
		require.NoError(t, (&ConfigInit{Command: "list", Format: "json", Output: dest}).Run())

		data, err := os.ReadFile(dest)
		require.NoError(t, err)
		var cfg map[string]any
		require.NoError(t, json.Unmarshal(data, &cfg))
		cfg["moduleRoot"] = moduleRoot
		cfg["format"] = "plain"
		data, err = json.Marshal(cfg)
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(dest, data, 0o644))

		cli := parseWithConfig(t, kong.JSON, dest, "list")
		assert.Equal(t, moduleRoot, cli.List.ModuleRoot)
		assert.Equal(t, "plain", cli.List.Format)
	})
}

func TestJSONKey(t *testing.T) {
	assert.Equal(t, "moduleRoot", jsonKey("module-root"))
	assert.Equal(t, "dryRun", jsonKey("dry-run"))
	assert.Equal(t, "strict", jsonKey("strict"))
}

func TestVersion(t *testing.T) {
	out := captureStdout(t, false)
	require.NoError(t, (&Version{}).Run())
	assert.True(t, strings.HasPrefix(out.String(), "factorygen 0.0.1-dev ("), out.String())
}
