package models

import "errors"

var (
	// ErrLectureNotFound 讲义不存在
	ErrLectureNotFound = errors.New("lecture not found")

	// ErrAnalysisNotFound 讲义尚无分析结果
	ErrAnalysisNotFound = errors.New("analysis not found")

	// ErrEmptyContent 文本为空或清洗后没有有效内容
	ErrEmptyContent = errors.New("empty lecture content")

	// ErrUnsupportedType 不支持的文件类型
	ErrUnsupportedType = errors.New("unsupported file type")
)
