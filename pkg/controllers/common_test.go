package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"cultureshare-api-io/api/internal/common"
	"cultureshare-api-io/api/pkg/models"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func runHandleDomainError(t *testing.T, err error) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/", nil)

	HandleDomainError(c, err)

	var body map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func TestHandleDomainErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{name: "not found", err: models.ErrNotFound, status: http.StatusNotFound},
		{name: "wrapped not found", err: errors.Wrap(models.ErrNotFound, "finding resource"), status: http.StatusNotFound},
		{name: "unauthorized", err: models.ErrUnauthorized, status: http.StatusUnauthorized},
		{name: "forbidden", err: models.ErrForbidden, status: http.StatusForbidden},
		{name: "invalid transition", err: models.ErrInvalidTransition, status: http.StatusConflict},
		{name: "missing reject reason", err: models.ErrMissingReason, status: http.StatusBadRequest},
		{name: "cyclic parent", err: models.ErrCyclicParent, status: http.StatusBadRequest},
		{name: "category has children", err: models.ErrHasChildren, status: http.StatusBadRequest},
		{name: "invalid category", err: models.ErrInvalidCategory, status: http.StatusBadRequest},
		{name: "unknown error", err: errors.New("boom"), status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, _ := runHandleDomainError(t, tt.err)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestHandleDomainErrorTransitionReportsCurrentStatus(t *testing.T) {
	err := models.NewTransitionError(models.StatusApproved, "submit")

	w, body := runHandleDomainError(t, err)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, string(models.StatusApproved), body["currentStatus"])
}

func TestHandleDomainErrorValidationFields(t *testing.T) {
	req := models.CreateUserRequest{Username: "ab", Email: "not-an-email", Password: "short"}
	err := common.Validate.Struct(req)
	assert.Error(t, err)

	w, body := runHandleDomainError(t, err)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	fields, ok := body["fields"].(map[string]interface{})
	assert.True(t, ok)
	assert.Contains(t, fields, "Username")
	assert.Contains(t, fields, "Email")
	assert.Contains(t, fields, "Password")
}
