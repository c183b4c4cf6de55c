package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gmkornilov/chess-puzzle-book/internal/dao"
	"github.com/gmkornilov/chess-puzzle-book/internal/trainer"
)

const (
	defaultRating = 1500
	defaultLimit  = 50
)

type PuzzleApi struct {
	Service *trainer.Service
}

func NewPuzzleApi(service *trainer.Service) *PuzzleApi {
	return &PuzzleApi{Service: service}
}

func (p *PuzzleApi) List(ctx *gin.Context) {
	limit, err := strconv.Atoi(ctx.DefaultQuery("limit", strconv.Itoa(defaultLimit)))
	if err != nil || limit <= 0 {
		abortWithError(ctx, http.StatusBadRequest, errors.New("limit should be a positive integer"))
		return
	}
	puzzles, err := p.Service.ListPuzzles(limit)
	if err != nil {
		abortWithError(ctx, http.StatusInternalServerError, err)
		return
	}
	ctx.JSON(http.StatusOK, puzzles)
}

func (p *PuzzleApi) Random(ctx *gin.Context) {
	rating, err := strconv.Atoi(ctx.DefaultQuery("rating", strconv.Itoa(defaultRating)))
	if err != nil {
		abortWithError(ctx, http.StatusBadRequest, err)
		return
	}
	puzzle, err := p.Service.RandomPuzzle(rating)
	if err != nil {
		abortWithError(ctx, statusOf(err), err)
		return
	}
	ctx.JSON(http.StatusOK, puzzle)
}

func (p *PuzzleApi) Get(ctx *gin.Context) {
	puzzle, err := p.Service.GetPuzzle(ctx.Param("id"))
	if err != nil {
		abortWithError(ctx, statusOf(err), err)
		return
	}
	ctx.JSON(http.StatusOK, puzzle)
}

func (p *PuzzleApi) CreateSet(ctx *gin.Context) {
	var opts trainer.SetOptions
	if err := ctx.ShouldBindJSON(&opts); err != nil {
		abortWithError(ctx, http.StatusBadRequest, err)
		return
	}
	set, err := p.Service.CreateSet(opts)
	if err != nil {
		abortWithError(ctx, statusOf(err), err)
		return
	}
	ctx.JSON(http.StatusCreated, set)
}

func (p *PuzzleApi) GetSet(ctx *gin.Context) {
	set, err := p.Service.GetSet(ctx.Param("id"))
	if err != nil {
		abortWithError(ctx, statusOf(err), err)
		return
	}
	ctx.JSON(http.StatusOK, set)
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, dao.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, trainer.ErrEmptyName),
		errors.Is(err, trainer.ErrNameTooLong),
		errors.Is(err, trainer.ErrSetTooSmall),
		errors.Is(err, trainer.ErrSetTooLarge),
		errors.Is(err, trainer.ErrCriteriaUnmet):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
