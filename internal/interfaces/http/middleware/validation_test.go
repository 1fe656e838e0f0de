package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/erp/marketsync/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type listQuery struct {
	Status   string `form:"status" binding:"omitempty,oneof=SUCCESS FAILED"`
	PageSize int    `form:"page_size" binding:"omitempty,max=100"`
}

func TestHandleValidationError_UsesParameterNames(t *testing.T) {
	gin.SetMode(gin.TestMode)
	SetupValidator()

	engine := gin.New()
	engine.GET("/records", func(c *gin.Context) {
		var q listQuery
		if err := c.ShouldBindQuery(&q); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/records?status=NOPE&page_size=1000", nil))

	require.Equal(t, http.StatusBadRequest, w.Code)
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)

	messages := map[string]string{}
	for _, d := range resp.Error.Details {
		messages[d.Field] = d.Message
	}
	assert.Equal(t, "Must be one of: SUCCESS FAILED", messages["status"])
	assert.Equal(t, "Must be at most 100", messages["page_size"])
}

func TestFormatValidationErrors_NonValidatorError(t *testing.T) {
	resp := FormatValidationErrors(errors.New("strconv.ParseInt: parsing \"x\": invalid syntax"), "req-1")

	require.NotNil(t, resp.Error)
	assert.Equal(t, "req-1", resp.Error.RequestID)
	require.Len(t, resp.Error.Details, 1)
	assert.Contains(t, resp.Error.Details[0].Message, "invalid syntax")
}
