package camera

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/weaming/x3fraw/x3f"
	"github.com/weaming/x3fraw/ycbcr"
)

//go:embed cameras.yaml
var defaultTable []byte

// Entry is one camera model in the table.
type Entry struct {
	Model            string   `yaml:"model"`
	Aliases          []string `yaml:"aliases"`
	TransformVersion int      `yaml:"transform_version"`
	Subsampling      [2]int   `yaml:"subsampling"`
	RawHue           int      `yaml:"raw_hue"`
	Coefficients     [3]int32 `yaml:"coefficients"`
}

// Params converts the entry to reconstruction parameters.
func (e Entry) Params() ycbcr.Params {
	return ycbcr.Params{
		Version:     ycbcr.Version(e.TransformVersion),
		Subsampling: ycbcr.Subsampling{H: e.Subsampling[0], V: e.Subsampling[1]},
		RawHue:      e.RawHue,
		Coeffs: ycbcr.Coefficients{
			R: e.Coefficients[0],
			G: e.Coefficients[1],
			B: e.Coefficients[2],
		},
	}
}

type tableFile struct {
	Cameras []Entry `yaml:"cameras"`
}

// Table resolves camera models to reconstruction parameters. Lookups are
// case-insensitive and ignore surrounding whitespace.
type Table struct {
	byModel map[string]Entry
}

func normalize(model string) string {
	return strings.ToLower(strings.TrimSpace(model))
}

// Default returns the embedded table.
func Default() (*Table, error) {
	t := &Table{byModel: make(map[string]Entry)}
	if err := t.Merge(defaultTable); err != nil {
		return nil, fmt.Errorf("embedded camera table: %w", err)
	}
	return t, nil
}

// Load returns the embedded table extended by the YAML file at path.
// Entries in the file replace embedded entries of the same model.
func Load(path string) (*Table, error) {
	t, err := Default()
	if err != nil {
		return nil, err
	}
	if path == "" {
		return t, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read camera table: %w", err)
	}
	if err := t.Merge(data); err != nil {
		return nil, fmt.Errorf("camera table %s: %w", path, err)
	}
	return t, nil
}

// Merge adds the entries of a YAML document to the table.
func (t *Table) Merge(data []byte) error {
	var f tableFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return err
	}
	for i, e := range f.Cameras {
		if strings.TrimSpace(e.Model) == "" {
			return fmt.Errorf("camera %d: missing model", i)
		}
		t.byModel[normalize(e.Model)] = e
		for _, alias := range e.Aliases {
			t.byModel[normalize(alias)] = e
		}
	}
	return nil
}

// Resolve returns the parameters for model.
func (t *Table) Resolve(model string) (ycbcr.Params, error) {
	e, ok := t.byModel[normalize(model)]
	if !ok {
		return ycbcr.Params{}, x3f.Unsupportedf("camera model %q", model)
	}
	return e.Params(), nil
}

// Models returns the number of resolvable names, aliases included.
func (t *Table) Models() int { return len(t.byModel) }

// FromContainer resolves the model named by the container's CAMMODEL
// property. The embedded table has no X3F bodies, so the model normally
// comes from a user table.
func (t *Table) FromContainer(c *x3f.Container) (ycbcr.Params, error) {
	model, ok := c.GetProperty("CAMMODEL")
	if !ok {
		return ycbcr.Params{}, x3f.Unsupportedf("container has no CAMMODEL property")
	}
	p, err := t.Resolve(model)
	if err != nil {
		return p, fmt.Errorf("%w; add it to a camera table", err)
	}
	return p, nil
}
