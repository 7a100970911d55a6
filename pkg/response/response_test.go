package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func decode(t *testing.T, w *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("respuesta no es JSON: %v", err)
	}
	return resp
}

func TestOKPage_TotalPages(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	OKPage(c, []string{"a", "b"}, 41, 1, 20)

	if w.Code != http.StatusOK {
		t.Fatalf("esperado 200, obtenido %d", w.Code)
	}
	resp := decode(t, w)
	data, _ := resp.Data.(map[string]interface{})
	pag, _ := data["pagination"].(map[string]interface{})
	if pag["total_pages"].(float64) != 3 {
		t.Errorf("esperado total_pages=3, obtenido %v", pag["total_pages"])
	}
}

func TestErrorHelpers(t *testing.T) {
	tests := []struct {
		name   string
		call   func(c *gin.Context)
		status int
		code   int
	}{
		{"bad request", func(c *gin.Context) { BadRequest(c, 10001, "x") }, http.StatusBadRequest, 10001},
		{"forbidden", func(c *gin.Context) { Forbidden(c, 10003, "x") }, http.StatusForbidden, 10003},
		{"conflict", func(c *gin.Context) { Conflict(c, 17003, "x") }, http.StatusConflict, 17003},
		{"too many", TooManyRequests, http.StatusTooManyRequests, 10004},
		{"internal", InternalError, http.StatusInternalServerError, 50000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			tt.call(c)
			if w.Code != tt.status {
				t.Errorf("esperado %d, obtenido %d", tt.status, w.Code)
			}
			if got := decode(t, w).Code; got != tt.code {
				t.Errorf("esperado code %d, obtenido %d", tt.code, got)
			}
		})
	}
}
