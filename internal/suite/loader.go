package suite

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaCUE string

// Extensions lists the suite file extensions Load understands.
var Extensions = []string{".yaml", ".yml", ".toml", ".cue"}

// Load reads a suite file, picking the decoder from the file extension,
// and validates the result.
//
// Unknown fields are rejected in every format so that typos such as
// "expect_death" fail loudly instead of silently defaulting to false.
func Load(path string) (Suite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Suite{}, fmt.Errorf("failed to read suite file: %w", err)
	}

	var s Suite
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		s, err = decodeYAML(data)
	case ".toml":
		s, err = decodeTOML(data)
	case ".cue":
		s, err = decodeCUE(path, data)
	default:
		return Suite{}, fmt.Errorf("unsupported suite file extension %q: must be one of %v", ext, Extensions)
	}
	if err != nil {
		return Suite{}, err
	}

	s = normalize(s)
	if err := s.Validate(); err != nil {
		return Suite{}, fmt.Errorf("invalid suite %s: %w", path, err)
	}
	return s, nil
}

func decodeYAML(data []byte) (Suite, error) {
	var s Suite
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&s); err != nil {
		return Suite{}, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return s, nil
}

func decodeTOML(data []byte) (Suite, error) {
	var s Suite
	decoder := toml.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&s); err != nil {
		return Suite{}, fmt.Errorf("failed to parse TOML: %w", err)
	}
	return s, nil
}

// decodeCUE unifies the file with the embedded #Suite definition. The
// definition is closed, so unknown fields surface as unification errors.
func decodeCUE(path string, data []byte) (Suite, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return Suite{}, fmt.Errorf("building suite schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Suite"))

	value := ctx.CompileBytes(data, cue.Filename(path))
	if err := value.Err(); err != nil {
		return Suite{}, fmt.Errorf("failed to parse CUE: %w", flattenCUE(err))
	}

	unified := def.Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return Suite{}, fmt.Errorf("suite does not match schema: %w", flattenCUE(err))
	}

	var s Suite
	if err := unified.Decode(&s); err != nil {
		return Suite{}, fmt.Errorf("decoding CUE suite: %w", err)
	}
	return s, nil
}

// normalize puts names and descriptions in NFC so filters and history
// lookups compare equal regardless of how the file was authored.
func normalize(s Suite) Suite {
	s.Name = norm.NFC.String(s.Name)
	s.Description = norm.NFC.String(s.Description)
	cases := make([]TestCase, len(s.Cases))
	for i, tc := range s.Cases {
		tc.Name = norm.NFC.String(tc.Name)
		tc.Description = norm.NFC.String(tc.Description)
		cases[i] = tc
	}
	s.Cases = cases
	return s
}
