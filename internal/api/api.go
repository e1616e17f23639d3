// Package api holds the gin handlers for the MediaID pages, profile submission,
// history and chat endpoints.
package api

import (
	"errors"
	"net/http"

	"github.com/celerix-dev/mediaid/pkg/schema"
	"github.com/celerix-dev/mediaid/pkg/sdk"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Response messages.
const (
	MsgSaved      = "User data saved successfully!"
	MsgSaveFailed = "Failed to save user data"
	MsgLoadFailed = "Failed to load history"
	MsgNoInput    = "No input provided"
)

// ErrNoInput is reported when /chat has no usable user_input.
var ErrNoInput = errors.New(MsgNoInput)

type Handler struct {
	Store  sdk.RecordStore
	Agent  sdk.Asker
	Logger *zap.Logger
}

func (h *Handler) logger() *zap.Logger {
	if h.Logger == nil {
		return zap.NewNop()
	}
	return h.Logger
}

// Page renders a static template.
func (h *Handler) Page(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.HTML(http.StatusOK, name, nil)
	}
}

func (h *Handler) Submit(c *gin.Context) {
	record := recordFromForm(c)

	id, err := h.Store.Create(c.Request.Context(), record)
	if err != nil {
		h.logger().Error("save record", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": MsgSaveFailed})
		return
	}

	h.logger().Info("record saved", zap.Int64("id", id))
	c.JSON(http.StatusOK, gin.H{"message": MsgSaved})
}

func (h *Handler) History(c *gin.Context) {
	records, err := h.list(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": MsgLoadFailed})
		return
	}
	c.JSON(http.StatusOK, records)
}

func (h *Handler) HistoryPage(c *gin.Context) {
	records, err := h.list(c)
	if err != nil {
		c.String(http.StatusInternalServerError, MsgLoadFailed)
		return
	}
	c.HTML(http.StatusOK, "history.html", gin.H{"history_data": records})
}

func (h *Handler) list(c *gin.Context) ([]schema.Record, error) {
	records, err := h.Store.List(c.Request.Context())
	if err != nil {
		h.logger().Error("list records", zap.Error(err))
		return nil, err
	}
	if records == nil {
		records = []schema.Record{}
	}
	return records, nil
}

func (h *Handler) Chat(c *gin.Context) {
	var input struct {
		UserInput string `json:"user_input"`
	}
	if err := c.ShouldBindJSON(&input); err != nil || input.UserInput == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": ErrNoInput.Error()})
		return
	}

	reply := h.Agent.Ask(c.Request.Context(), input.UserInput)
	c.JSON(http.StatusOK, gin.H{"response": reply})
}
