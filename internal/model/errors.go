package model

import (
	"errors"
	"fmt"
)

// InputFormatError 输入表格缺少必需列或无法解析，整次处理中止
type InputFormatError struct {
	Table  string
	Column string
	Reason string
}

func (e *InputFormatError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("表格 %s 列 %s: %s", e.Table, e.Column, e.Reason)
	}
	return fmt.Sprintf("表格 %s: %s", e.Table, e.Reason)
}

// ZeroAreaError 总面积为 0，无法计算面积占比
type ZeroAreaError struct {
	Scope string
}

func (e *ZeroAreaError) Error() string {
	if e.Scope == "" {
		return "总面积为 0，无法计算占比"
	}
	return fmt.Sprintf("%s 总面积为 0，无法计算占比", e.Scope)
}

// EmptyAttributeSkip 属性无有效样点被跳过（仅记录日志，不中止处理）
type EmptyAttributeSkip struct {
	Attribute string
	Reason    string
}

func (e *EmptyAttributeSkip) Error() string {
	return fmt.Sprintf("属性 %s 无有效数据已跳过: %s", e.Attribute, e.Reason)
}

// ClassificationConfigError 分级标准配置错误，加载时即失败
type ClassificationConfigError struct {
	Standard  string
	Attribute string
	Reason    string
}

func (e *ClassificationConfigError) Error() string {
	if e.Attribute != "" {
		return fmt.Sprintf("分级标准 %s 属性 %s: %s", e.Standard, e.Attribute, e.Reason)
	}
	return fmt.Sprintf("分级标准 %s: %s", e.Standard, e.Reason)
}

// ErrorKind 错误类别
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindInputFormat
	KindZeroArea
	KindEmptyAttribute
	KindClassificationConfig
)

func (k ErrorKind) String() string {
	switch k {
	case KindInputFormat:
		return "input_format"
	case KindZeroArea:
		return "zero_area"
	case KindEmptyAttribute:
		return "empty_attribute"
	case KindClassificationConfig:
		return "classification_config"
	default:
		return "unknown"
	}
}

// KindOf 判断（可能被包装的）错误类别
func KindOf(err error) ErrorKind {
	var (
		inputErr *InputFormatError
		zeroErr  *ZeroAreaError
		skipErr  *EmptyAttributeSkip
		cfgErr   *ClassificationConfigError
	)
	switch {
	case err == nil:
		return KindUnknown
	case errors.As(err, &inputErr):
		return KindInputFormat
	case errors.As(err, &zeroErr):
		return KindZeroArea
	case errors.As(err, &skipErr):
		return KindEmptyAttribute
	case errors.As(err, &cfgErr):
		return KindClassificationConfig
	default:
		return KindUnknown
	}
}
