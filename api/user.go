package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/example/storefront/pkg/service"
	"github.com/example/storefront/pkg/store"
)

func (s *Server) createUser(c *gin.Context) {
	var input service.CreateUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}
	user, err := s.users.Create(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (s *Server) getUser(c *gin.Context) {
	user, err := s.users.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (s *Server) listUsers(c *gin.Context) {
	filter := store.UserFilter{
		Order:  c.DefaultQuery("order", store.OrderNewest),
		Offset: queryInt(c, "offset", 0),
		Limit:  queryInt(c, "limit", 10),
	}
	users, err := s.users.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (s *Server) patchUser(c *gin.Context) {
	var input service.PatchUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}
	user, err := s.users.Patch(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (s *Server) deleteUser(c *gin.Context) {
	user, err := s.users.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (s *Server) listSavedProducts(c *gin.Context) {
	products, err := s.users.SavedProducts(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

type saveProductReq struct {
	ProductID string `json:"productId"`
}

// toggleSavedProduct saves the product if it is not in the user's list and
// removes it if it is, returning the resulting list either way.
func (s *Server) toggleSavedProduct(c *gin.Context) {
	var req saveProductReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	products, err := s.users.ToggleSavedProduct(c.Request.Context(), c.Param("id"), req.ProductID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, products)
}
