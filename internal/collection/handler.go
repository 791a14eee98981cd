package collection

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"gamenight/internal/games"
	"gamenight/pkg/models"
)

type Handler struct {
	Service  *Service
	Resolver Resolver
}

func NewHandler(svc *Service, resolver Resolver) *Handler {
	return &Handler{Service: svc, Resolver: resolver}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.list)                   // GET /collections
	rg.GET("/:user", h.sync)             // GET /collections/:user
	rg.POST("/:user/refresh", h.refresh) // POST /collections/:user/refresh
	rg.GET("/:user/games", h.games)      // GET /collections/:user/games?players=N
}

func (h *Handler) list(c *gin.Context) {
	items, err := h.Service.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "cache unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"total": len(items), "items": items})
}

func (h *Handler) sync(c *gin.Context) {
	info, games := h.Service.Sync(c.Request.Context(), c.Param("user"))
	respond(c, info, games)
}

func (h *Handler) refresh(c *gin.Context) {
	info, games := h.Service.Refresh(c.Request.Context(), c.Param("user"))
	respond(c, info, games)
}

func (h *Handler) games(c *gin.Context) {
	info := h.Service.Lookup(c.Request.Context(), c.Param("user"), true)
	if info == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "collection not found"})
		return
	}
	resolved, err := h.Resolver.ResolveGames(c.Request.Context(), *info)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "could not resolve games", "resolved": len(resolved)})
		return
	}
	players := strings.TrimSpace(c.Query("players"))
	c.JSON(http.StatusOK, gin.H{
		"user":   info.User,
		"groups": games.GroupByBestPlayers(resolved, players),
	})
}

func respond(c *gin.Context, info *models.CollectionInfo, resolved []models.Game) {
	if info == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "collection not found"})
		return
	}
	if resolved == nil {
		resolved = []models.Game{}
	}
	c.JSON(http.StatusOK, gin.H{"collection": info, "games": resolved})
}
