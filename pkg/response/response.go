// Package response renders the common API envelope.
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/study-crew/peer-assist-api/internal/models"
	appErrors "github.com/study-crew/peer-assist-api/pkg/errors"
)

// Envelope is the body shape of every API response. Exactly one of Data or
// Error is set.
type Envelope struct {
	Data       interface{}            `json:"data,omitempty"`
	Error      *appErrors.Error       `json:"error,omitempty"`
	Pagination *models.Pagination     `json:"pagination,omitempty"`
	Meta       map[string]interface{} `json:"meta,omitempty"`
}

// JSON sends a success envelope with optional pagination and meta blocks.
func JSON(c *gin.Context, status int, data interface{}, pagination *models.Pagination, meta ...map[string]interface{}) {
	env := Envelope{Data: data, Pagination: pagination}
	if len(meta) > 0 && meta[0] != nil {
		env.Meta = meta[0]
	}
	write(c, status, env)
}

// Created sends a 201 envelope.
func Created(c *gin.Context, data interface{}) {
	JSON(c, http.StatusCreated, data, nil)
}

// NoContent sends an empty 204 response.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error normalises err into the typed envelope and responds with its status.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	write(c, appErr.Status, Envelope{Error: appErr})
}

func write(c *gin.Context, status int, env Envelope) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	c.JSON(status, env)
}
