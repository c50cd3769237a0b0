package api

import (
	"net/http"

	"github.com/fyerfyer/lecture-digest/api/handler"
	"github.com/fyerfyer/lecture-digest/api/middleware"
	"github.com/gin-gonic/gin"
)

// SetupRouter 设置API路由
// 配置所有的API端点并应用中间件
func SetupRouter(
	analysisHandler *handler.AnalysisHandler,
	lectureHandler *handler.LectureHandler,
) *gin.Engine {
	router := gin.New()

	router.Use(middleware.SetTraceID())
	router.Use(middleware.Logger())
	router.Use(middleware.ErrorMiddleware())
	router.Use(Cors())

	// 在调试模式下记录请求体
	if gin.Mode() == gin.DebugMode {
		router.Use(middleware.RequestBodyLog())
	}

	api := router.Group("/api")
	{
		// 直接提交文本 - POST /api/analyze/text, POST /api/wordcloud
		api.POST("/analyze/text", analysisHandler.AnalyzeText)
		api.POST("/wordcloud", analysisHandler.WordCloud)

		lectures := api.Group("/lectures")
		{
			lectures.POST("", lectureHandler.UploadLecture)
			lectures.GET("", lectureHandler.ListLectures)
			lectures.POST("/global", lectureHandler.GlobalAnalysis)
			lectures.GET("/:id", lectureHandler.GetLecture)
			lectures.GET("/:id/analysis", lectureHandler.GetAnalysis)
			lectures.POST("/:id/questions", lectureHandler.ReviewQuestions)
			lectures.DELETE("/:id", lectureHandler.DeleteLecture)
		}

		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"status": "ok",
			})
		})
	}

	return router
}

// Cors 跨域资源共享中间件
func Cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Trace-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, DELETE")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
