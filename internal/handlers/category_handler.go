package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fintrack/internal/allocation"
	"fintrack/internal/services"
)

// CategoryHandler exposes the allocation rule catalog.
type CategoryHandler struct {
	plannerService services.PlannerServicer
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(plannerService services.PlannerServicer) *CategoryHandler {
	return &CategoryHandler{plannerService: plannerService}
}

// SubcategoryResponse is one subcategory of a catalog category.
type SubcategoryResponse struct {
	Name   string            `json:"name"`
	Bucket allocation.Bucket `json:"bucket"`
	Weight float64           `json:"weight"`
}

// CategoryResponse represents a catalog category in the response
type CategoryResponse struct {
	Name                string                `json:"name"`
	Bucket              allocation.Bucket     `json:"bucket"`
	Percentage          float64               `json:"percentage,omitempty"`
	EssentialPercentage float64               `json:"essential_percentage,omitempty"`
	LifestylePercentage float64               `json:"lifestyle_percentage,omitempty"`
	Subcategories       []SubcategoryResponse `json:"subcategories"`
}

func toCategoryResponse(rule allocation.Rule) CategoryResponse {
	resp := CategoryResponse{
		Name:                rule.Category,
		Bucket:              rule.Bucket,
		Percentage:          rule.Percentage,
		EssentialPercentage: rule.EssentialPercentage,
		LifestylePercentage: rule.LifestylePercentage,
		Subcategories:       make([]SubcategoryResponse, 0, len(rule.Subcategories)),
	}
	for _, sw := range rule.Subcategories {
		sub := SubcategoryResponse{Name: sw.Name, Bucket: rule.Bucket, Weight: sw.Weight.Value()}
		if tagged, ok := sw.Weight.(allocation.Tagged); ok {
			sub.Bucket = tagged.Bucket
		}
		resp.Subcategories = append(resp.Subcategories, sub)
	}
	return resp
}

// GetCategories lists the categories budgets are allocated across
// @Summary     List categories
// @Description List the allocation catalog: each category with its bucket, share and subcategory weights
// @Tags        categories
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} map[string][]CategoryResponse "Catalog categories"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /categories [get]
func (h *CategoryHandler) GetCategories(c *gin.Context) {
	rules := h.plannerService.Rules()
	categories := make([]CategoryResponse, 0, len(rules))
	for _, rule := range rules {
		categories = append(categories, toCategoryResponse(rule))
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}
