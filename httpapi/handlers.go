package httpapi

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"productcatalog/service"
	"productcatalog/util"
)

type handlers struct {
	svc *service.Services
}

// bind decodes the body into req and validates it.
func bind(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return err
	}
	return c.Validate(req)
}

func pathID(c echo.Context) (uuid.UUID, error) {
	return util.ParseID(c.Param("id"))
}

// Products

func (h *handlers) listProducts(c echo.Context) error {
	out, err := h.svc.Products.GetAll(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (h *handlers) getProduct(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	out, err := h.svc.Products.GetByID(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (h *handlers) createProduct(c echo.Context) error {
	var req service.CreateProductRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	out, err := h.svc.Products.Create(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, out)
}

// ImportResult reports a bulk import; failures do not abort the batch.
type ImportResult struct {
	Created []service.ProductResponse `json:"created"`
	Errors  []string                  `json:"errors"`
}

func (h *handlers) importProducts(c echo.Context) error {
	var reqs []service.CreateProductRequest
	if err := c.Bind(&reqs); err != nil {
		return err
	}
	validate := func(req service.CreateProductRequest) error { return c.Validate(&req) }
	created, err := h.svc.Products.Import(c.Request().Context(), reqs, validate)
	res := ImportResult{Created: created, Errors: []string{}}
	if err != nil {
		var joined interface{ Unwrap() []error }
		if errors.As(err, &joined) {
			for _, e := range joined.Unwrap() {
				res.Errors = append(res.Errors, e.Error())
			}
		} else {
			return err
		}
	}
	status := http.StatusCreated
	if len(res.Errors) > 0 {
		status = http.StatusMultiStatus
	}
	return c.JSON(status, res)
}

func (h *handlers) updateProduct(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req service.UpdateProductRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	out, err := h.svc.Products.Update(c.Request().Context(), id, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (h *handlers) deleteProduct(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.svc.Products.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *handlers) changePrice(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req service.ChangePriceRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	out, err := h.svc.Products.ChangePrice(c.Request().Context(), id, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (h *handlers) applyDiscount(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req service.DiscountRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	out, err := h.svc.Products.ApplyDiscount(c.Request().Context(), id, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (h *handlers) increaseStock(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req service.StockRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	out, err := h.svc.Products.IncreaseStock(c.Request().Context(), id, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (h *handlers) decreaseStock(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req service.StockRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	out, err := h.svc.Products.DecreaseStock(c.Request().Context(), id, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (h *handlers) assignCategory(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req service.AssignCategoryRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	out, err := h.svc.Products.AssignCategory(c.Request().Context(), id, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

// Categories

func (h *handlers) listCategories(c echo.Context) error {
	out, err := h.svc.Categories.GetAll(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (h *handlers) getCategory(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	out, err := h.svc.Categories.GetByID(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (h *handlers) createCategory(c echo.Context) error {
	var req service.CreateCategoryRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	out, err := h.svc.Categories.Create(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *handlers) updateCategory(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req service.UpdateCategoryRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	out, err := h.svc.Categories.Update(c.Request().Context(), id, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (h *handlers) deleteCategory(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.svc.Categories.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Orders

func (h *handlers) listOrders(c echo.Context) error {
	out, err := h.svc.Orders.GetAll(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (h *handlers) getOrder(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	out, err := h.svc.Orders.GetByID(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (h *handlers) createOrder(c echo.Context) error {
	var req service.CreateOrderRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	out, err := h.svc.Orders.Create(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *handlers) deleteOrder(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.svc.Orders.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
