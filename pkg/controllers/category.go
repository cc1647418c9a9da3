package controllers

import (
	"context"
	"net/http"

	"cultureshare-api-io/api/internal/common"
	"cultureshare-api-io/api/pkg/models"
	"cultureshare-api-io/api/pkg/services"
	"cultureshare-api-io/api/pkg/util"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CategoryController struct {
	categoryService services.CategoryService
}

func InitCategoryController(categoryService services.CategoryService) *CategoryController {
	return &CategoryController{categoryService: categoryService}
}

func (cc *CategoryController) CreateCategory() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), common.REQUEST_TIMEOUT_SECS)
		defer cancel()

		var req models.CategoryRequest
		if err := c.BindJSON(&req); err != nil {
			util.HandleError(c, http.StatusBadRequest, err)
			return
		}
		if err := common.Validate.Struct(req); err != nil {
			HandleDomainError(c, err)
			return
		}

		category, err := cc.categoryService.Create(ctx, req)
		if err != nil {
			HandleDomainError(c, err)
			return
		}

		util.HandleSuccess(c, http.StatusCreated, "Category created successfully", category)
	}
}

// GetCategories - /v1/categories?flat=true&activeOnly=true
func (cc *CategoryController) GetCategories() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), common.REQUEST_TIMEOUT_SECS)
		defer cancel()

		activeOnly := c.Query("activeOnly") == "true"

		if c.Query("flat") == "true" {
			categories, err := cc.categoryService.ListFlat(ctx, activeOnly)
			if err != nil {
				HandleDomainError(c, err)
				return
			}
			util.HandleSuccess(c, http.StatusOK, "success", categories)
			return
		}

		tree, err := cc.categoryService.ListTree(ctx, activeOnly)
		if err != nil {
			HandleDomainError(c, err)
			return
		}

		util.HandleSuccess(c, http.StatusOK, "success", tree)
	}
}

func (cc *CategoryController) GetCategory() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), common.REQUEST_TIMEOUT_SECS)
		defer cancel()

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			util.HandleError(c, http.StatusBadRequest, err)
			return
		}

		category, err := cc.categoryService.GetByID(ctx, id)
		if err != nil {
			HandleDomainError(c, err)
			return
		}

		util.HandleSuccess(c, http.StatusOK, "success", category)
	}
}

func (cc *CategoryController) UpdateCategory() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), common.REQUEST_TIMEOUT_SECS)
		defer cancel()

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			util.HandleError(c, http.StatusBadRequest, err)
			return
		}

		var req models.CategoryUpdateRequest
		if err := c.BindJSON(&req); err != nil {
			util.HandleError(c, http.StatusBadRequest, err)
			return
		}
		if err := common.Validate.Struct(req); err != nil {
			HandleDomainError(c, err)
			return
		}

		category, err := cc.categoryService.Update(ctx, id, req)
		if err != nil {
			HandleDomainError(c, err)
			return
		}

		util.HandleSuccess(c, http.StatusOK, "Category updated successfully", category)
	}
}

func (cc *CategoryController) DeleteCategory() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), common.REQUEST_TIMEOUT_SECS)
		defer cancel()

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			util.HandleError(c, http.StatusBadRequest, err)
			return
		}

		if err := cc.categoryService.Delete(ctx, id); err != nil {
			HandleDomainError(c, err)
			return
		}

		util.HandleSuccess(c, http.StatusOK, "Category deleted successfully", nil)
	}
}

// GetCategoryResources - /v1/categories/:id/resources?page=1&limit=10
func (cc *CategoryController) GetCategoryResources() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), common.REQUEST_TIMEOUT_SECS)
		defer cancel()

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			util.HandleError(c, http.StatusBadRequest, err)
			return
		}

		pagination := util.GetPaginationArgs(c)
		resources, total, err := cc.categoryService.ResourcesIn(ctx, id, pagination)
		if err != nil {
			HandleDomainError(c, err)
			return
		}

		util.HandlePaginated(c, http.StatusOK, resources, total, pagination)
	}
}
