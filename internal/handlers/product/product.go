package product

import (
	"net/http"

	"emporium_back_end/internal/apperr"
	"emporium_back_end/internal/catalog"
	"emporium_back_end/internal/handlers"
	"emporium_back_end/internal/middleware"
	"emporium_back_end/internal/models"
	"emporium_back_end/internal/services"

	"github.com/gin-gonic/gin"
)

type ProductHandler struct {
	svc services.IProductService
}

func NewProductHandler(svc services.IProductService) *ProductHandler {
	return &ProductHandler{svc: svc}
}

// List handles GET /products. Anonymous callers are treated as customers.
func (h *ProductHandler) List(c *gin.Context) {
	params, err := catalog.ParseProducts(c.Request.URL.Query())
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	actor, _ := middleware.CurrentActor(c)
	products, total, err := h.svc.List(c.Request.Context(), actor, params)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	if products == nil {
		products = []models.Product{}
	}
	handlers.SetTotalCount(c, total)
	c.JSON(http.StatusOK, products)
}

func (h *ProductHandler) Get(c *gin.Context) {
	id, ok := handlers.PathID(c, "id", "product")
	if !ok {
		return
	}
	actor, _ := middleware.CurrentActor(c)
	p, err := h.svc.Get(c.Request.Context(), actor, id)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// Search handles GET /products/search?q=.
func (h *ProductHandler) Search(c *gin.Context) {
	products, err := h.svc.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	if products == nil {
		products = []models.Product{}
	}
	c.JSON(http.StatusOK, products)
}

func (h *ProductHandler) Create(c *gin.Context) {
	var in models.ProductInput
	if !handlers.BindJSON(c, &in) {
		return
	}
	p, err := h.svc.Create(c.Request.Context(), in)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// Update serves both PATCH and PUT; absent fields are left unchanged.
func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := handlers.PathID(c, "id", "product")
	if !ok {
		return
	}
	var in models.ProductInput
	if !handlers.BindJSON(c, &in) {
		return
	}
	p, err := h.svc.Update(c.Request.Context(), id, in)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := handlers.PathID(c, "id", "product")
	if !ok {
		return
	}
	p, err := h.svc.Delete(c.Request.Context(), id)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *ProductHandler) Undelete(c *gin.Context) {
	id, ok := handlers.PathID(c, "id", "product")
	if !ok {
		return
	}
	p, err := h.svc.Undelete(c.Request.Context(), id)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// UploadImage handles POST /products/:id/images with a multipart "image" field.
func (h *ProductHandler) UploadImage(c *gin.Context) {
	id, ok := handlers.PathID(c, "id", "product")
	if !ok {
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, services.MaxImageSize+1<<20)

	fh, err := c.FormFile("image")
	if err != nil {
		handlers.RespondError(c, apperr.Validation("image file is required"))
		return
	}
	f, err := fh.Open()
	if err != nil {
		handlers.RespondError(c, apperr.Validation("image file is unreadable"))
		return
	}
	defer f.Close()

	p, err := h.svc.AddImage(c.Request.Context(), id, services.ImageUpload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Body:        f,
	})
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}
