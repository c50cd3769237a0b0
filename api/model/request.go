package model

import "mime/multipart"

// PaginationRequest 分页请求参数
type PaginationRequest struct {
	Page     int `form:"page" json:"page" binding:"omitempty,min=1"`           // 当前页码，从1开始
	PageSize int `form:"page_size" json:"page_size" binding:"omitempty,min=1"` // 每页记录数
}

// GetPage 获取页码，默认为1
func (p *PaginationRequest) GetPage() int {
	if p.Page <= 0 {
		return 1
	}
	return p.Page
}

// GetPageSize 获取每页记录数，默认为10，最大为100
func (p *PaginationRequest) GetPageSize() int {
	if p.PageSize <= 0 {
		return 10
	}
	if p.PageSize > 100 {
		return 100
	}
	return p.PageSize
}

// AnalysisParams 分析参数，未设置的字段使用服务端默认值
type AnalysisParams struct {
	SummaryLength int    `form:"summary_length" json:"summary_length" binding:"omitempty,min=10,max=2000"`       // 目标摘要长度
	Tolerance     int    `form:"tolerance" json:"tolerance" binding:"omitempty,min=0,max=500"`                   // 摘要长度容差
	KeywordMethod string `form:"keyword_method" json:"keyword_method" binding:"omitempty,oneof=tfidf textrank"` // 词云算法
	MaxWords      int    `form:"max_words" json:"max_words" binding:"omitempty,min=1,max=1000"`                  // 词云最多词数
	Polish        bool   `form:"polish" json:"polish"`                                                           // 是否调用模型润色
}

// AnalyzeTextRequest 文本分析请求
type AnalyzeTextRequest struct {
	Text string `json:"text" binding:"required"` // 讲义文本
	AnalysisParams
}

// WordCloudRequest 词云请求
type WordCloudRequest struct {
	Text     string `json:"text" binding:"required"`                         // 讲义文本
	Method   string `json:"method" binding:"omitempty,oneof=tfidf textrank"` // 算法，默认 tfidf
	MaxWords int    `json:"max_words" binding:"omitempty,min=1,max=1000"`    // 最多词数
}

// LectureUploadRequest 讲义上传请求
type LectureUploadRequest struct {
	File *multipart.FileHeader `form:"file" binding:"required"` // 文件对象
	Wait bool                  `form:"wait"`                    // 异步模式下是否等待分析结束
	AnalysisParams
}

// LectureIDRequest 讲义ID路径参数
type LectureIDRequest struct {
	ID string `uri:"id" binding:"required"` // 讲义ID
}

// LectureListRequest 讲义列表请求
type LectureListRequest struct {
	PaginationRequest
	Status   string `form:"status" binding:"omitempty,oneof=uploaded processing completed failed"` // 讲义状态
	FileName string `form:"file_name"`                                                             // 文件名模糊匹配
	FileType string `form:"file_type" binding:"omitempty,oneof=plaintext markdown pdf"`            // 文件类型
}

// GlobalAnalysisRequest 多讲义全局分析请求
type GlobalAnalysisRequest struct {
	IDs []string `json:"ids" binding:"required,min=1,max=50,dive,required"` // 讲义ID列表
	AnalysisParams
}

// ReviewQuestionsRequest 复习题生成请求
type ReviewQuestionsRequest struct {
	QuestionType string `json:"question_type" binding:"required"`      // 题型
	Count        int    `json:"count" binding:"required,min=1,max=20"` // 题目数量
	Requirements string `json:"requirements"`                          // 额外出题要求
}
