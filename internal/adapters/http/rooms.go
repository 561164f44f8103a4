package http

import (
	"net/http"
	"strconv"

	"github.com/dkeye/Chat/internal/app/orch"
	"github.com/dkeye/Chat/internal/domain"
	"github.com/gin-gonic/gin"
)

type roomHandlers struct {
	orch *orch.Orchestrator
}

type createRoomRequest struct {
	Name        string `json:"name" binding:"required,max=64"`
	Description string `json:"description" binding:"max=256"`
	Visibility  string `json:"visibility"`
}

func (h *roomHandlers) me(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"user": currentUser(c)})
}

func (h *roomHandlers) list(c *gin.Context) {
	rooms, err := h.orch.ListRooms(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rooms": rooms})
}

func (h *roomHandlers) joined(c *gin.Context) {
	rooms, err := h.orch.JoinedRooms(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rooms": rooms})
}

func (h *roomHandlers) create(c *gin.Context) {
	var body createRoomRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		writeError(c, domain.Validation("Room name is required and must be at most %d characters", domain.MaxRoomNameLen))
		return
	}
	room, err := h.orch.CreateRoom(c.Request.Context(), currentUser(c), body.Name, body.Description, body.Visibility)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"room": room})
}

func (h *roomHandlers) get(c *gin.Context) {
	room, err := h.orch.GetRoom(c.Request.Context(), currentUser(c).ID, domain.RoomID(c.Param("id")))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"room": room})
}

func (h *roomHandlers) members(c *gin.Context) {
	res, err := h.orch.Members(c.Request.Context(), currentUser(c).ID, domain.RoomID(c.Param("id")))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *roomHandlers) messages(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	msgs, err := h.orch.History(c.Request.Context(), currentUser(c).ID, domain.RoomID(c.Param("id")), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

func (h *roomHandlers) requests(c *gin.Context) {
	reqs, err := h.orch.PendingRequests(c.Request.Context(), currentUser(c).ID, domain.RoomID(c.Param("id")))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"pendingRequests": reqs})
}

// health reports live sessions and rooms with a running worker.
func health(o *orch.Orchestrator) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":   "ok",
			"sessions": o.Registry.Count(),
			"rooms":    o.Rooms.Active(),
		})
	}
}
