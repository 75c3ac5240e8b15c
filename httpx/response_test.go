package httpx

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestJSON_Nil(t *testing.T) {
	rec := httptest.NewRecorder()
	JSON(rec, http.StatusOK, nil)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "null", rec.Body.String())
}

func TestJSON_EncodeError(t *testing.T) {
	rec := httptest.NewRecorder()
	JSON(rec, http.StatusOK, map[string]any{"bad": make(chan int)})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestData(t *testing.T) {
	rec := httptest.NewRecorder()
	Data(rec, http.StatusCreated, map[string]any{"id": 1}, "User created successfully.")
	assert.Equal(t, http.StatusCreated, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "User created successfully.", body["message"])
	assert.Equal(t, map[string]any{"id": float64(1)}, body["data"])
}

func TestPage(t *testing.T) {
	rec := httptest.NewRecorder()
	Page(rec, []int{1, 2}, 2, 2, 5, "ok")
	body := decode(t, rec)
	assert.Equal(t, float64(2), body["current_page"])
	assert.Equal(t, float64(5), body["total"])
	assert.Equal(t, float64(3), body["last_page"])

	rec = httptest.NewRecorder()
	Page(rec, []int{}, 1, 10, 0, "ok")
	assert.Equal(t, float64(1), decode(t, rec)["last_page"])
}

func TestValidation(t *testing.T) {
	rec := httptest.NewRecorder()
	Validation(rec, "The given data was invalid.", map[string][]string{"email": {"required"}})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, map[string]any{"email": []any{"required"}}, body["errors"])
}

func TestJSONError(t *testing.T) {
	rec := httptest.NewRecorder()
	JSONError(rec, http.StatusForbidden, "forbidden", "This action is unauthorized.")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "forbidden", body["error"])
}
