package expr

import (
	"bytes"
	"log/slog"
	"math"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"
	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	"github.com/google/cel-go/ext"

	"github.com/macropower/gitprof/pkg/glob"
)

type lib struct{}

func (lib) CompileOptions() []cel.EnvOption {
	return []cel.EnvOption{
		ext.Math(),
		ext.Strings(),
		ext.Lists(),

		// `glob` matches a string against a wildcard pattern, where "*" matches
		// any run of characters and "?" matches one character.
		// Example: remotes.exists(r, glob("git@github.com:company/*", r)).
		cel.Function("glob",
			cel.Overload("glob_string_string", []*cel.Type{cel.StringType, cel.StringType}, cel.BoolType,
				cel.BinaryBinding(func(pattern, s ref.Val) ref.Val {
					patternStr, ok := pattern.(types.String).Value().(string)
					if !ok {
						return types.NewErr("glob: invalid pattern")
					}

					str, ok := s.(types.String).Value().(string)
					if !ok {
						return types.NewErr("glob: invalid string value")
					}

					return types.Bool(glob.Match(patternStr, str))
				}),
			),
		),

		// `pathBase` returns the last element of the path.
		// Example: pathBase(repoRoot) in ["dotfiles", "infra"].
		cel.Function("pathBase",
			cel.Overload("path_base", []*cel.Type{cel.StringType}, cel.StringType,
				cel.UnaryBinding(func(path ref.Val) ref.Val {
					pathValue, ok := path.(types.String).Value().(string)
					if !ok {
						return types.NewErr("pathBase: invalid string value")
					}

					return types.String(filepath.Base(pathValue))
				}),
			),
		),

		// `pathDir` returns all but the last element of the path.
		// Example: pathDir(repoRoot).endsWith("/work").
		cel.Function("pathDir",
			cel.Overload("path_dir", []*cel.Type{cel.StringType}, cel.StringType,
				cel.UnaryBinding(func(path ref.Val) ref.Val {
					pathValue, ok := path.(types.String).Value().(string)
					if !ok {
						return types.NewErr("pathDir: invalid string value")
					}

					return types.String(filepath.Dir(pathValue))
				}),
			),
		),

		// `pathExt` returns the file extension of the path.
		// Example: parents.exists(p, pathExt(p) == ".d").
		cel.Function("pathExt",
			cel.Overload("path_ext", []*cel.Type{cel.StringType}, cel.StringType,
				cel.UnaryBinding(func(path ref.Val) ref.Val {
					pathValue, ok := path.(types.String).Value().(string)
					if !ok {
						return types.NewErr("pathExt: invalid string value")
					}

					return types.String(filepath.Ext(pathValue))
				}),
			),
		),

		// `yamlPath` reads a YAML file and extracts a value using a YAML path.
		// Returns the value at the specified path, or null if the path doesn't exist or file can't be read.
		// Example: yamlPath(repoRoot + "/.gitprof.yaml", "$.profile") == "work".
		cel.Function("yamlPath",
			cel.Overload("yaml_path", []*cel.Type{cel.StringType, cel.StringType}, cel.DynType,
				cel.BinaryBinding(func(filePath, yamlPathExpr ref.Val) ref.Val {
					filePathStr, ok := filePath.(types.String).Value().(string)
					if !ok {
						return types.NewErr("yamlPath: invalid file path")
					}

					yamlPathStr, ok := yamlPathExpr.(types.String).Value().(string)
					if !ok {
						return types.NewErr("yamlPath: invalid yaml path")
					}

					return yamlPathValue(filePathStr, yamlPathStr)
				}),
			),
		),
	}
}

// yamlPathValue reads the value at yamlPath in the YAML file at path.
// Unreadable files, invalid paths, and missing values are null so that
// expressions can treat them as absent.
//
//nolint:ireturn // Following CEL's function signature.
func yamlPathValue(path, yamlPath string) ref.Val {
	logger := slog.With(
		slog.String("file", path),
		slog.String("yaml_path", yamlPath),
	)

	//nolint:gosec // G304: Potential file inclusion via variable.
	content, err := os.ReadFile(path)
	if err != nil {
		logger.Debug("yamlPath: read file", slog.Any("error", err))

		return types.NullValue
	}

	p, err := yaml.PathString(yamlPath)
	if err != nil {
		logger.Debug("yamlPath: parse path", slog.Any("error", err))

		return types.NullValue
	}

	var value any
	if err := p.Read(bytes.NewReader(content), &value); err != nil {
		logger.Debug("yamlPath: read value", slog.Any("error", err))

		return types.NullValue
	}

	return ConvertToCELValue(value)
}

func (lib) ProgramOptions() []cel.ProgramOption {
	return []cel.ProgramOption{}
}

// ConvertToCELValue converts a decoded YAML value to a CEL value.
// Unsupported types become null.
//
//nolint:ireturn // Following CEL's function signature.
func ConvertToCELValue(value any) ref.Val {
	switch v := value.(type) {
	case nil:
		return types.NullValue
	case bool:
		return types.Bool(v)
	case int:
		return types.Int(v)
	case int64:
		return types.Int(v)
	case uint64:
		if v > math.MaxInt64 {
			return types.Double(float64(v))
		}

		return types.Int(int64(v))
	case float64:
		return types.Double(v)
	case string:
		return types.String(v)
	case []any:
		items := make([]ref.Val, len(v))
		for i, item := range v {
			items[i] = ConvertToCELValue(item)
		}

		return types.NewDynamicList(types.DefaultTypeAdapter, items)
	case map[string]any:
		entries := make(map[ref.Val]ref.Val, len(v))
		for key, val := range v {
			entries[types.String(key)] = ConvertToCELValue(val)
		}

		return types.NewDynamicMap(types.DefaultTypeAdapter, entries)
	case map[any]any:
		entries := make(map[ref.Val]ref.Val, len(v))
		for key, val := range v {
			entries[ConvertToCELValue(key)] = ConvertToCELValue(val)
		}

		return types.NewDynamicMap(types.DefaultTypeAdapter, entries)
	}

	return types.NullValue
}
