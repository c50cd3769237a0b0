package handler

import (
	"fmt"
	"net/http"
	"unicode/utf8"

	"github.com/fyerfyer/lecture-digest/api/middleware"
	"github.com/fyerfyer/lecture-digest/api/model"
	"github.com/fyerfyer/lecture-digest/internal/services"
	"github.com/fyerfyer/lecture-digest/internal/wordcloud"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// DefaultMaxTextRunes 文本接口默认允许的最大字符数
const DefaultMaxTextRunes = 200000

// AnalysisHandler 处理直接提交文本的分析请求
type AnalysisHandler struct {
	analysisService *services.AnalysisService // 文本分析服务
	maxTextRunes    int                       // 文本长度上限
	logger          *logrus.Logger            // 日志记录器
}

// NewAnalysisHandler 创建文本分析处理器
func NewAnalysisHandler(analysisService *services.AnalysisService, maxTextRunes int) *AnalysisHandler {
	if maxTextRunes <= 0 {
		maxTextRunes = DefaultMaxTextRunes
	}
	return &AnalysisHandler{
		analysisService: analysisService,
		maxTextRunes:    maxTextRunes,
		logger:          middleware.GetLogger(),
	}
}

// AnalyzeText 生成摘要、核心句、关键词、章节和词云
// POST /api/analyze/text
func (h *AnalysisHandler) AnalyzeText(c *gin.Context) {
	var req model.AnalyzeTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithError(err).Warn("Invalid analyze request")
		middleware.HandleError(c, middleware.NewValidationError("无效的请求参数", err.Error()))
		return
	}
	if !h.checkLength(c, req.Text) {
		return
	}

	result, err := h.analysisService.AnalyzeText(c.Request.Context(), req.Text, toAnalysisOptions(req.AnalysisParams))
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(result))
}

// WordCloud 计算词云权重
// POST /api/wordcloud
func (h *AnalysisHandler) WordCloud(c *gin.Context) {
	var req model.WordCloudRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithError(err).Warn("Invalid word cloud request")
		middleware.HandleError(c, middleware.NewValidationError("无效的请求参数", err.Error()))
		return
	}
	if !h.checkLength(c, req.Text) {
		return
	}

	method := wordcloud.Method(req.Method)
	if method == "" {
		method = h.analysisService.Defaults().KeywordMethod
	}
	weights, err := h.analysisService.WordCloud(c.Request.Context(), req.Text, method, req.MaxWords)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	words := weights.Weights
	if words == nil {
		words = []wordcloud.Weight{}
	}
	c.JSON(http.StatusOK, model.NewSuccessResponse(model.WordCloudResponse{
		Method: string(method),
		Status: weights.Status,
		Words:  words,
	}))
}

func (h *AnalysisHandler) checkLength(c *gin.Context, text string) bool {
	if n := utf8.RuneCountInString(text); n > h.maxTextRunes {
		middleware.HandleError(c, middleware.NewTooLargeError(
			fmt.Sprintf("文本过长：%d 字，上限 %d 字", n, h.maxTextRunes)))
		return false
	}
	return true
}

// toAnalysisOptions 把请求参数转换为服务层参数
func toAnalysisOptions(p model.AnalysisParams) services.AnalysisOptions {
	return services.AnalysisOptions{
		SummaryLength: p.SummaryLength,
		Tolerance:     p.Tolerance,
		KeywordMethod: wordcloud.Method(p.KeywordMethod),
		MaxWords:      p.MaxWords,
		Polish:        p.Polish,
	}
}
