package cmd

import (
	"cmp"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"unicode"

	"github.com/Alia5/factorygen/internal/configpaths"

	"github.com/alecthomas/kong"
	toml "github.com/pelletier/go-toml"
	yaml "gopkg.in/yaml.v3"
)

// ConfigCommand groups config-related subcommands.
type ConfigCommand struct {
	Init ConfigInit `cmd:"" help:"Generate a configuration template"`
}

// ConfigInit scaffolds a configuration file for a specific command.
type ConfigInit struct {
	Command string `arg:"" name:"command" help:"Command to generate config for" enum:"generate,list" default:"generate"`
	Format  string `help:"Output format" enum:"json,yaml,yml,toml" default:"yaml"`
	Output  string `help:"Destination file path (defaults to factorygen.<format> in the current directory)" type:"path"`
	Force   bool   `help:"Overwrite if the file already exists"`
}

// Run generates a configuration template from the flags kong derives for the
// command, keyed the way the matching config loader resolves them.
func (c *ConfigInit) Run() error {
	format := normalizeFormat(c.Format)
	if format == "" {
		return fmt.Errorf("unsupported format: %s", c.Format)
	}

	root, err := scaffold(cmp.Or(c.Command, "generate"), format)
	if err != nil {
		return err
	}

	dest := c.Output
	if dest == "" {
		dest = configpaths.LocalConfigPath(".", format)
	}

	if !c.Force {
		if _, err := os.Stat(dest); err == nil {
			return errors.New("destination exists; use --force to overwrite")
		}
	}
	if err := configpaths.EnsureDir(dest); err != nil {
		return err
	}

	var data []byte
	switch format {
	case "json":
		data, err = json.MarshalIndent(root, "", "  ")
	case "yaml":
		data, err = yaml.Marshal(root)
	case "toml":
		data, err = toml.Marshal(root)
	}
	if err != nil {
		return err
	}
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return err
	}
	_, err = fmt.Fprintf(stdout, "wrote %s\n", dest)
	return err
}

// commands is the grammar config files can configure.
type commands struct {
	Generate Generate `cmd:""`
	List     List     `cmd:""`
}

// scaffold returns the default value of every flag of command. YAML and
// TOML loaders look flags up under the command name with their dashed
// names; kong's JSON loader only reads top-level lowerCamel keys.
func scaffold(command, format string) (map[string]any, error) {
	parser, err := kong.New(&commands{}, kong.Name("factorygen"), kong.Exit(func(int) {}))
	if err != nil {
		return nil, err
	}

	var node *kong.Node
	for _, child := range parser.Model.Children {
		if child.Name == command {
			node = child
		}
	}
	if node == nil {
		return nil, fmt.Errorf("unknown command %q; expected 'generate' or 'list'", command)
	}

	values := map[string]any{}
	for _, flag := range node.Flags {
		// an empty path resolves to the working directory, so leave it out
		if flag.Tag.Type == "path" && flag.Default == "" && flag.Target.Kind() == reflect.String {
			continue
		}
		key := flag.Name
		if format == "json" {
			key = jsonKey(flag.Name)
		}
		if val := defaultValueForField(flag.Target.Type(), flag.Default); val != nil {
			values[key] = val
		}
	}

	if format == "json" {
		return values, nil
	}
	return map[string]any{node.Name: values}, nil
}

func normalizeFormat(f string) string {
	switch strings.ToLower(f) {
	case "json":
		return "json"
	case "yaml", "yml":
		return "yaml"
	case "toml":
		return "toml"
	default:
		return ""
	}
}

// jsonKey mirrors kong.JSON's lookup: "module-root" -> "moduleRoot".
func jsonKey(flag string) string {
	parts := strings.Split(flag, "-")
	for i := 1; i < len(parts); i++ {
		if r := []rune(parts[i]); len(r) > 0 {
			r[0] = unicode.ToUpper(r[0])
			parts[i] = string(r)
		}
	}
	return strings.Join(parts, "")
}

func defaultValueForField(t reflect.Type, def string) any {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.String:
		return def // may be empty
	case reflect.Bool:
		if def == "" {
			return false
		}
		b, err := strconv.ParseBool(def)
		if err != nil {
			return false
		}
		return b
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if def == "" {
			return 0
		}
		n, err := strconv.ParseInt(def, 10, 64)
		if err != nil {
			return 0
		}
		return n
	case reflect.Slice:
		if def == "" {
			return []any{}
		}
		var out []any
		for _, v := range strings.Split(def, ",") {
			out = append(out, v)
		}
		return out
	default:
		return nil
	}
}
