package handlers

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"gymhub/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestAttendanceHandler_AutoCheckoutRejectsGymlessCaller(t *testing.T) {
	// 平台管理员（无所属场馆）不能触发单馆自动签退
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("POST", "/api/v1/attendance/auto-checkout", nil)
	c.Set("gym_id", uint(0))

	handler := NewAttendanceHandler(nil)
	handler.AutoCheckout(c)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, float64(errors.CodeForbidden), resp["code"])
}
