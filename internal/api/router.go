package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

func NewRouter(puzzles *PuzzleApi, sessions *SessionApi, jobs *JobApi) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	r.GET("/puzzles", puzzles.List)
	r.GET("/puzzles/random", puzzles.Random)
	r.GET("/puzzles/:id", puzzles.Get)
	r.POST("/sets", puzzles.CreateSet)
	r.GET("/sets/:id", puzzles.GetSet)

	r.POST("/sessions", sessions.Start)
	r.GET("/sessions/:id", sessions.Get)
	r.POST("/sessions/:id/moves", sessions.Move)
	r.GET("/sessions/:id/hint", sessions.Hint)
	r.GET("/sessions/:id/board.png", sessions.Image)
	r.DELETE("/sessions/:id", sessions.Delete)

	r.POST("/jobs", jobs.StartJob)
	r.GET("/jobs/:job_id", jobs.GetJobStatus)
	return r
}

func requestLogger() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()
		log.Debug().
			Str("method", ctx.Request.Method).
			Str("path", ctx.Request.URL.Path).
			Int("status", ctx.Writer.Status()).
			Dur("took", time.Since(start)).
			Msg("request")
	}
}

func abortWithError(ctx *gin.Context, status int, err error) {
	if status >= 500 {
		log.Error().Err(err).Str("path", ctx.Request.URL.Path).Msg("request failed")
	}
	ctx.AbortWithStatusJSON(status, gin.H{
		"error": err.Error(),
	})
}
