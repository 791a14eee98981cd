package games

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	Reconciler *Reconciler
}

func NewHandler(r *Reconciler) *Handler {
	return &Handler{Reconciler: r}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/group", h.group) // GET /games/group?users=a,b
	rg.GET("/:id", h.getByID) // GET /games/:id
}

func (h *Handler) getByID(c *gin.Context) {
	g, err := h.Reconciler.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "cache unavailable"})
		return
	}
	if g == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, g)
}

func (h *Handler) group(c *gin.Context) {
	// users=a,b OR users=a&users=b
	var users []string
	for _, v := range c.QueryArray("users") {
		for _, u := range strings.Split(v, ",") {
			if u = strings.TrimSpace(u); u != "" {
				users = append(users, u)
			}
		}
	}
	if len(users) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "users is required"})
		return
	}

	items := h.Reconciler.ForGroup(c.Request.Context(), users)
	c.JSON(http.StatusOK, gin.H{
		"users": users,
		"total": len(items),
		"items": items,
	})
}
