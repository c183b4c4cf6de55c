package api

import (
	"errors"
	"net/http"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gmkornilov/chess-puzzle-book/internal/scraper"
	"github.com/google/uuid"
)

type JobApi struct {
	WorkerFactory *scraper.Factory
	activeJobs    map[string]scraper.Worker
	mu            sync.RWMutex
}

func NewJobApi(factory *scraper.Factory) *JobApi {
	return &JobApi{
		WorkerFactory: factory,
		activeJobs:    make(map[string]scraper.Worker),
	}
}

// StartJob generates puzzles either from the latest games of
// ?lichess_user= or from the PGN sent as the request body.
func (j *JobApi) StartJob(ctx *gin.Context) {
	var worker scraper.Worker
	if name := ctx.Query("lichess_user"); name != "" {
		last, err := strconv.Atoi(ctx.DefaultQuery("last", "20"))
		if err != nil || last <= 0 {
			abortWithError(ctx, http.StatusBadRequest, errors.New("last should be a positive integer"))
			return
		}
		worker = j.WorkerFactory.CreateLichessScraper(name, last)
	} else {
		pgn, err := ctx.GetRawData()
		if err != nil {
			abortWithError(ctx, http.StatusBadRequest, err)
			return
		}
		if len(pgn) == 0 {
			abortWithError(ctx, http.StatusBadRequest, errors.New("send a pgn body or a lichess_user"))
			return
		}
		worker = j.WorkerFactory.CreatePgnWorker(pgn)
	}

	id := uuid.NewString()
	j.mu.Lock()
	j.activeJobs[id] = worker
	j.mu.Unlock()
	worker.StartWork()

	ctx.JSON(http.StatusAccepted, gin.H{
		"job_id": id,
	})
}

// GetJobStatus reports a job's progress. A finished job is reported once
// and then forgotten.
func (j *JobApi) GetJobStatus(ctx *gin.Context) {
	id := ctx.Param("job_id")
	j.mu.Lock()
	defer j.mu.Unlock()
	worker, ok := j.activeJobs[id]
	if !ok {
		ctx.AbortWithStatus(http.StatusNotFound)
		return
	}
	done := worker.Done()
	if !done {
		ctx.JSON(http.StatusOK, gin.H{
			"done":     done,
			"progress": worker.Progress(),
		})
		return
	}

	delete(j.activeJobs, id)
	if err := worker.Error(); err != nil {
		ctx.JSON(http.StatusOK, gin.H{
			"done":  done,
			"error": err.Error(),
		})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"done":   done,
		"result": worker.Result(),
	})
}
