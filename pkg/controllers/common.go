package controllers

import (
	"net/http"

	"cultureshare-api-io/api/pkg/models"
	"cultureshare-api-io/api/pkg/util"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

// HandleDomainError maps domain errors onto HTTP status codes. State-machine
// refusals additionally report the resource's current status so the UI can
// resynchronize.
func HandleDomainError(c *gin.Context, err error) {
	var transitionErr *models.TransitionError
	if errors.As(err, &transitionErr) {
		c.JSON(http.StatusConflict, gin.H{
			"error":         transitionErr.Error(),
			"currentStatus": transitionErr.Current,
			"status":        http.StatusConflict,
		})
		return
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		fields := make(map[string]string, len(validationErrs))
		for _, fe := range validationErrs {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":  "validation failed",
			"fields": fields,
			"status": http.StatusUnprocessableEntity,
		})
		return
	}

	switch {
	case errors.Is(err, models.ErrNotFound):
		util.HandleError(c, http.StatusNotFound, err)
	case errors.Is(err, models.ErrUnauthorized):
		util.HandleError(c, http.StatusUnauthorized, err)
	case errors.Is(err, models.ErrForbidden):
		util.HandleError(c, http.StatusForbidden, err)
	case errors.Is(err, models.ErrInvalidTransition):
		util.HandleError(c, http.StatusConflict, err)
	case errors.Is(err, models.ErrMissingReason),
		errors.Is(err, models.ErrCyclicParent),
		errors.Is(err, models.ErrInvalidParent),
		errors.Is(err, models.ErrHasChildren),
		errors.Is(err, models.ErrHasResources),
		errors.Is(err, models.ErrDuplicateName),
		errors.Is(err, models.ErrInvalidCategory):
		util.HandleError(c, http.StatusBadRequest, err)
	default:
		util.HandleError(c, http.StatusInternalServerError, err)
	}
}
