// Package standard 分级标准的加载与查询
package standard

import (
	"errors"
	"fmt"
	"log"
	"os"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"soilstat/internal/model"
)

// ErrUnknownStandard 标准不存在
var ErrUnknownStandard = errors.New("unknown grading standard")

// filePattern 标准目录下参与加载的文件
const filePattern = "**/*.{toml,yaml,yml}"

// Registry 分级标准注册表，构建后只读，可并发使用
type Registry struct {
	order     []string
	standards map[string]*model.GradingStandard
	defaultID string
}

// NewRegistry 由已校验的标准构建注册表
func NewRegistry(defaultID string, standards ...*model.GradingStandard) (*Registry, error) {
	r := &Registry{standards: make(map[string]*model.GradingStandard, len(standards))}
	for _, s := range standards {
		if _, dup := r.standards[s.ID()]; dup {
			return nil, &model.ClassificationConfigError{Standard: s.ID(), Reason: "duplicate standard id"}
		}
		r.standards[s.ID()] = s
		r.order = append(r.order, s.ID())
	}
	if len(r.order) == 0 {
		return nil, &model.ClassificationConfigError{Reason: "no grading standard available"}
	}

	if defaultID == "" {
		defaultID = r.order[0]
	}
	if _, ok := r.standards[defaultID]; !ok {
		return nil, fmt.Errorf("default standard %q: %w", defaultID, ErrUnknownStandard)
	}
	r.defaultID = defaultID
	return r, nil
}

// Load 内置标准加上 dir 目录下的标准文件；dir 为空或不存在时只用内置标准
func Load(dir, defaultID string) (*Registry, error) {
	standards := []*model.GradingStandard{Jiangsu()}

	if dir != "" {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			fsys := os.DirFS(dir)
			matches, err := doublestar.Glob(fsys, filePattern)
			if err != nil {
				return nil, fmt.Errorf("scan standards dir %s: %w", dir, err)
			}
			sort.Strings(matches)

			loaded, err := readDir(fsys, matches)
			if err != nil {
				return nil, err
			}
			for _, s := range loaded {
				log.Printf("加载分级标准: %s (%s, %d 个属性)", s.ID(), s.Info().Name, s.Len())
			}
			standards = append(standards, loaded...)
		} else if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("stat standards dir %s: %w", dir, err)
		}
	}

	return NewRegistry(defaultID, standards...)
}

// List 列出全部标准
func (r *Registry) List() []model.StandardInfo {
	out := make([]model.StandardInfo, len(r.order))
	for i, id := range r.order {
		out[i] = r.standards[id].Info()
	}
	return out
}

// Get 按 id 获取标准
func (r *Registry) Get(id string) (*model.GradingStandard, error) {
	s, ok := r.standards[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownStandard, id)
	}
	return s, nil
}

// Attributes 按声明顺序返回标准的属性定义
func (r *Registry) Attributes(id string) ([]model.AttributeDefinition, error) {
	s, err := r.Get(id)
	if err != nil {
		return nil, err
	}
	return s.Attributes(), nil
}

// DefaultID 默认标准
func (r *Registry) DefaultID() string {
	return r.defaultID
}

// Has 是否存在
func (r *Registry) Has(id string) bool {
	_, ok := r.standards[id]
	return ok
}
