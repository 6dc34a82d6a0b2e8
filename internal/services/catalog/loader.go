package catalog

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mcoot/tabletop-companion/internal/model"
)

//go:embed games/*.yaml
var builtinGames embed.FS

const indexFile = "index.yaml"

type index struct {
	Games []string `yaml:"games"`
}

// Builtin returns the game definitions compiled into the binary, in catalog order
func Builtin() ([]*model.GameDefinition, error) {
	sub, err := fs.Sub(builtinGames, "games")
	if err != nil {
		return nil, err
	}
	return ReadDefinitions(sub)
}

// ReadDir reads game definitions from a directory on disk
func ReadDir(dir string) ([]*model.GameDefinition, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("catalog dir %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("catalog dir %s: not a directory", dir)
	}
	return ReadDefinitions(os.DirFS(dir))
}

// ReadDefinitions decodes every game file in fsys. When an index.yaml is
// present it fixes the order and the set of files read; otherwise all
// *.yaml files are read in name order.
func ReadDefinitions(fsys fs.FS) ([]*model.GameDefinition, error) {
	names, err := definitionFiles(fsys)
	if err != nil {
		return nil, err
	}

	defs := make([]*model.GameDefinition, 0, len(names))
	for _, name := range names {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		def, err := decodeDefinition(data)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", model.ErrInvalidGameDefinition, name, err)
		}
		defs = append(defs, def)
	}
	return defs, nil
}

func definitionFiles(fsys fs.FS) ([]string, error) {
	data, err := fs.ReadFile(fsys, indexFile)
	switch {
	case err == nil:
		var idx index
		if err := yaml.Unmarshal(data, &idx); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", model.ErrInvalidGameDefinition, indexFile, err)
		}
		names := make([]string, len(idx.Games))
		for i, id := range idx.Games {
			names[i] = id + ".yaml"
		}
		return names, nil
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, err
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || e.Name() == indexFile || path.Ext(e.Name()) != ".yaml" {
			continue
		}
		names = append(names, e.Name())
	}
	slices.Sort(names)
	return names, nil
}

func decodeDefinition(data []byte) (*model.GameDefinition, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var def model.GameDefinition
	if err := dec.Decode(&def); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty document")
		}
		return nil, err
	}
	trimContent(&def)
	return &def, nil
}

// trimContent drops the trailing newline left by YAML block scalars
func trimContent(def *model.GameDefinition) {
	for i := range def.Rules {
		trimRule(&def.Rules[i])
	}
	for i := range def.QuickReference {
		def.QuickReference[i].Content = strings.TrimSpace(def.QuickReference[i].Content)
	}
}

func trimRule(r *model.RuleSection) {
	r.Content = strings.TrimSpace(r.Content)
	for i := range r.Subsections {
		trimRule(&r.Subsections[i])
	}
}
