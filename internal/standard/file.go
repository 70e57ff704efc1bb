package standard

import (
	"bytes"
	"fmt"
	"io/fs"
	"math"
	"path"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"soilstat/internal/model"
)

// fileStandard 标准配置文件结构（TOML / YAML）
type fileStandard struct {
	ID                 string          `toml:"id" yaml:"id"`
	Name               string          `toml:"name" yaml:"name"`
	Description        string          `toml:"description" yaml:"description"`
	ExcludeNonPositive *bool           `toml:"exclude_non_positive" yaml:"exclude_non_positive"`
	Attributes         []fileAttribute `toml:"attributes" yaml:"attributes"`
}

type fileAttribute struct {
	Key            string      `toml:"key" yaml:"key"`
	Name           string      `toml:"name" yaml:"name"`
	Unit           string      `toml:"unit" yaml:"unit"`
	LandUseFilter  string      `toml:"land_use_filter" yaml:"land_use_filter"`
	ReverseDisplay bool        `toml:"reverse_display" yaml:"reverse_display"`
	Aliases        []string    `toml:"aliases" yaml:"aliases"`
	Levels         []fileLevel `toml:"levels" yaml:"levels"`
}

type fileLevel struct {
	Label       string   `toml:"label" yaml:"label"`
	UpperBound  *float64 `toml:"upper_bound" yaml:"upper_bound"`
	Description string   `toml:"description" yaml:"description"`
}

// decodeFile 按扩展名解码标准文件
func decodeFile(name string, data []byte) (*fileStandard, error) {
	var fsd fileStandard
	switch strings.ToLower(path.Ext(name)) {
	case ".toml":
		if err := toml.Unmarshal(data, &fsd); err != nil {
			return nil, fmt.Errorf("decode %s: %w", name, err)
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&fsd); err != nil {
			return nil, fmt.Errorf("decode %s: %w", name, err)
		}
	default:
		return nil, fmt.Errorf("unsupported standard file: %s", name)
	}
	return &fsd, nil
}

// build 转换为校验后的分级标准
func (f *fileStandard) build(source string) (*model.GradingStandard, error) {
	id := f.ID
	if id == "" {
		id = strings.TrimSuffix(path.Base(source), path.Ext(source))
	}
	if len(f.Attributes) == 0 {
		return nil, &model.ClassificationConfigError{Standard: id, Reason: "no attributes defined in " + source}
	}

	attrs := make([]model.AttributeDefinition, 0, len(f.Attributes))
	for _, fa := range f.Attributes {
		filter, err := model.ParseLandUseFilter(fa.LandUseFilter)
		if err != nil {
			return nil, &model.ClassificationConfigError{Standard: id, Attribute: fa.Key, Reason: err.Error()}
		}

		levels := make([]model.Threshold, len(fa.Levels))
		for i, l := range fa.Levels {
			bound := math.Inf(1)
			switch {
			case l.UpperBound != nil:
				bound = *l.UpperBound
			case i != len(fa.Levels)-1:
				return nil, &model.ClassificationConfigError{
					Standard: id, Attribute: fa.Key,
					Reason: fmt.Sprintf("level %q is missing upper_bound", l.Label),
				}
			}
			levels[i] = model.Threshold{Label: l.Label, UpperBound: bound, Description: l.Description}
		}

		name := fa.Name
		if name == "" {
			name = fa.Key
		}
		attrs = append(attrs, model.AttributeDefinition{
			Key:            fa.Key,
			DisplayName:    name,
			Unit:           fa.Unit,
			LandUseFilter:  filter,
			ReverseDisplay: fa.ReverseDisplay,
			Aliases:        fa.Aliases,
			Thresholds:     levels,
		})
	}

	excludeNonPositive := true
	if f.ExcludeNonPositive != nil {
		excludeNonPositive = *f.ExcludeNonPositive
	}
	name := f.Name
	if name == "" {
		name = id
	}
	return model.NewGradingStandard(model.StandardInfo{ID: id, Name: name, Description: f.Description}, excludeNonPositive, attrs)
}

// readDir 读取目录下所有标准文件
func readDir(fsys fs.FS, matches []string) ([]*model.GradingStandard, error) {
	out := make([]*model.GradingStandard, 0, len(matches))
	for _, m := range matches {
		data, err := fs.ReadFile(fsys, m)
		if err != nil {
			return nil, fmt.Errorf("read standard %s: %w", m, err)
		}
		fsd, err := decodeFile(m, data)
		if err != nil {
			return nil, &model.ClassificationConfigError{Standard: m, Reason: err.Error()}
		}
		std, err := fsd.build(m)
		if err != nil {
			return nil, err
		}
		out = append(out, std)
	}
	return out, nil
}
