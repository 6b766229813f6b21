package common

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIResponse(t *testing.T) {
	t.Run("成功响应", func(t *testing.T) {
		resp := APIResponse{
			Success: true,
			Message: "Operation successful",
			Data: map[string]string{
				"key": "value",
			},
		}

		assert.True(t, resp.Success)
		assert.Equal(t, "Operation successful", resp.Message)
		assert.NotNil(t, resp.Data)
	})

	t.Run("错误响应", func(t *testing.T) {
		resp := ErrorResponse{
			Success: false,
			Message: "Operation failed",
		}

		assert.False(t, resp.Success)
		assert.Equal(t, "Operation failed", resp.Message)
	})
}

func TestSuccessWriters(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("Success 写入 200", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		Success(c, gin.H{"id": "abc"})

		assert.Equal(t, http.StatusOK, w.Code)
		var resp APIResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
	})

	t.Run("Created 写入 201", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		Created(c, gin.H{"id": "abc"})

		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("NoContent 无响应体", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		NoContent(c)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Body.Bytes())
	})

	t.Run("Error 写入状态码与消息", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		Error(c, http.StatusConflict, "并发修改冲突")

		assert.Equal(t, http.StatusConflict, w.Code)
		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.False(t, resp.Success)
		assert.Equal(t, "并发修改冲突", resp.Message)
	})
}

func TestPaginated(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("计算总页数", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		Paginated(c, []string{"a", "b"}, 1, 20, 45)

		assert.Equal(t, http.StatusOK, w.Code)
		var resp struct {
			Data ListResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, 1, resp.Data.Pagination.Page)
		assert.Equal(t, int64(45), resp.Data.Pagination.Total)
		assert.Equal(t, 3, resp.Data.Pagination.TotalPage)
	})

	t.Run("空列表", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		Paginated(c, []string{}, 1, 20, 0)

		var resp struct {
			Data ListResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, int64(0), resp.Data.Pagination.Total)
		assert.Equal(t, 0, resp.Data.Pagination.TotalPage)
	})
}
