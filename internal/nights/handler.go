package nights

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"gamenight/pkg/models"
)

type Handler struct {
	Nights *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Nights: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.list)
	rg.POST("", h.create)
	rg.GET("/:id", h.get)
	rg.PUT("/:id", h.save)
	rg.POST("/:id/votes", h.vote)
	rg.GET("/:id/games", h.games)
}

type nightReq struct {
	Date        time.Time         `json:"date"`
	Players     []string          `json:"players"`
	Location    string            `json:"location"`
	Description string            `json:"description"`
	Votes       []models.GameVote `json:"votes"`
}

func (r nightReq) night(id string) models.GameNight {
	return models.GameNight{
		ID:          id,
		Date:        r.Date,
		Players:     r.Players,
		Location:    r.Location,
		Description: r.Description,
		Votes:       r.Votes,
	}
}

func (h *Handler) list(c *gin.Context) {
	items, err := h.Nights.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"nights": items})
}

func (h *Handler) create(c *gin.Context) {
	var req nightReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	n, err := h.Nights.Save(c.Request.Context(), req.night(""))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, n)
}

func (h *Handler) get(c *gin.Context) {
	n, err := h.Nights.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	if n == nil {
		writeError(c, ErrNotFound)
		return
	}
	c.JSON(http.StatusOK, n)
}

func (h *Handler) save(c *gin.Context) {
	var req nightReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	n, err := h.Nights.Save(c.Request.Context(), req.night(c.Param("id")))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, n)
}

type voteReq struct {
	GameID string `json:"game_id"`
}

func (h *Handler) vote(c *gin.Context) {
	var req voteReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	n, err := h.Nights.Vote(c.Request.Context(), c.Param("id"), req.GameID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, n)
}

func (h *Handler) games(c *gin.Context) {
	found, err := h.Nights.Candidates(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"night": c.Param("id"), "games": found})
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "game night not found"})
	case errors.Is(err, ErrInvalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "store unavailable"})
	}
}
