package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"servicehub-be/internal/order"
)

func (s *Server) listOrders(c *gin.Context) {
	var filter order.FilterInput
	hasFilter := false

	if q := c.Query("q"); q != "" {
		filter.Search = &q
		hasFilter = true
	}
	if v := c.Query("status"); v != "" {
		st := order.Status(v)
		filter.Status = &st
		hasFilter = true
	}
	if v := c.Query("date_from"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			filter.DateFrom = &t
			hasFilter = true
		}
	}
	if v := c.Query("date_to"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			filter.DateTo = &t
			hasFilter = true
		}
	}

	var filterPtr *order.FilterInput
	if hasFilter {
		filterPtr = &filter
	}

	var sortPtr *order.SortInput
	if v := c.Query("sort"); v != "" {
		sortPtr = &order.SortInput{
			Field:     order.SortField(v),
			Direction: c.DefaultQuery("dir", "DESC"),
		}
	}

	orders, total, err := s.orders.GetOrders(
		c.Request.Context(), filterPtr, sortPtr,
		queryInt32(c, "limit"), queryInt32(c, "page"),
	)
	if err != nil {
		abortWithError(c, err)
		return
	}

	out := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderResponse(o))
	}
	c.JSON(http.StatusOK, listResponse{Data: out, Total: total})
}

func (s *Server) getOrder(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	o, err := s.orders.GetOrderDetail(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(o))
}

type orderItemReq struct {
	ProductID       uint    `json:"product_id"`
	Quantity        int     `json:"quantity"`
	DiscountPercent string  `json:"discount_percent"`
	UnitPrice       *string `json:"unit_price"`
}

func (r orderItemReq) toNewItem() (order.NewItem, error) {
	item := order.NewItem{
		ProductID: r.ProductID,
		Quantity:  r.Quantity,
	}

	if r.DiscountPercent != "" {
		d, err := decimal.NewFromString(r.DiscountPercent)
		if err != nil {
			return order.NewItem{}, err
		}
		item.DiscountPercent = d
	}
	if r.UnitPrice != nil {
		p, err := decimal.NewFromString(*r.UnitPrice)
		if err != nil {
			return order.NewItem{}, err
		}
		item.UnitPrice = &p
	}
	return item, nil
}

type createOrderReq struct {
	CustomerName    string         `json:"customer_name"`
	Phone           string         `json:"phone"`
	DeliveryAddress string         `json:"delivery_address"`
	Items           []orderItemReq `json:"items"`
}

func (s *Server) createOrder(c *gin.Context) {
	var req createOrderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	input := order.CreateOrderInput{
		CustomerName:    req.CustomerName,
		Phone:           req.Phone,
		DeliveryAddress: req.DeliveryAddress,
	}
	for _, ir := range req.Items {
		item, err := ir.toNewItem()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid decimal value"})
			return
		}
		input.Items = append(input.Items, item)
	}

	o, err := s.orders.CreateOrder(c.Request.Context(), input)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toOrderResponse(o))
}

type updateStatusReq struct {
	Status string `json:"status"`
}

func (s *Server) updateOrderStatus(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var req updateStatusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	if err := s.orders.UpdateStatus(c.Request.Context(), id, order.Status(req.Status)); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) deleteOrder(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	if err := s.orders.DeleteOrder(c.Request.Context(), id); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) addOrderItem(c *gin.Context) {
	orderID, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var req orderItemReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	item, err := req.toNewItem()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid decimal value"})
		return
	}

	oi, err := s.orders.AddItem(c.Request.Context(), orderID, item)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toOrderItemResponse(oi))
}

type updateOrderItemReq struct {
	Quantity        int    `json:"quantity"`
	DiscountPercent string `json:"discount_percent"`
}

func (s *Server) updateOrderItem(c *gin.Context) {
	itemID, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var req updateOrderItemReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	discount := decimal.Zero
	if req.DiscountPercent != "" {
		discount, err = decimal.NewFromString(req.DiscountPercent)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid decimal value"})
			return
		}
	}

	oi, err := s.orders.UpdateItem(c.Request.Context(), itemID, req.Quantity, discount)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderItemResponse(oi))
}

func (s *Server) removeOrderItem(c *gin.Context) {
	itemID, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	if err := s.orders.RemoveItem(c.Request.Context(), itemID); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
