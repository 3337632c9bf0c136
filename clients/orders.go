package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"cafe-pos/models"

	"github.com/shopspring/decimal"
)

type wireOrderLine struct {
	MenuID   string `json:"menu_id"`
	Quantity int    `json:"quantity"`
}

type wireCreateOrder struct {
	CustomerName string          `json:"customer_name"`
	TableID      string          `json:"table_id"`
	OrderDetail  []wireOrderLine `json:"order_detail"`
}

type wirePlacedOrder struct {
	OrderID      flexString `json:"order_id"`
	OrderDate    string     `json:"order_date"`
	CustomerName string     `json:"customer_name"`
	TableID      flexString `json:"table_id"`
	TableNumber  flexString `json:"table_number"`
}

type wireOrderSummary struct {
	OrderID      flexString `json:"order_id"`
	OrderDate    string     `json:"order_date"`
	CustomerName string     `json:"customer_name"`
	TableNumber  flexString `json:"table_number"`
	Status       string     `json:"status"`
	CreatedAt    string     `json:"created_at"`
}

type wireOrderDetailLine struct {
	ID               flexString      `json:"id"`
	MenuName         string          `json:"menu_name"`
	Quantity         flexInt         `json:"quantity"`
	Price            decimal.Decimal `json:"price"`
	OrderDetailPrice decimal.Decimal `json:"order_detail_price"`
}

type wireOrderDetail struct {
	Status     string                `json:"status"`
	Message    string                `json:"message"`
	Data       []wireOrderDetailLine `json:"data"`
	TotalPrice decimal.Decimal       `json:"total_price"`
}

// CreateOrder posts one order. It succeeds only when the response body
// carries status "success"; anything else is a *ServerError.
func (c *Client) CreateOrder(ctx context.Context, in models.CreateOrderInput) (*models.PlacedOrder, error) {
	body, err := newCreateOrder(in)
	if err != nil {
		return nil, err
	}

	var env envelope
	if err := c.do(ctx, http.MethodPost, "/order", body, true, &env); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	if !env.ok() {
		return nil, &ServerError{StatusCode: http.StatusOK, Status: env.Status, Message: env.Message}
	}

	placed := &models.PlacedOrder{CustomerName: body.CustomerName, TableID: body.TableID}
	var echo wirePlacedOrder
	if len(env.Data) > 0 && json.Unmarshal(env.Data, &echo) == nil {
		placed.ID = string(echo.OrderID)
		placed.OrderDate = parseOrderDate(echo.OrderDate)
		if echo.CustomerName != "" {
			placed.CustomerName = echo.CustomerName
		}
		if echo.TableID != "" {
			placed.TableID = string(echo.TableID)
		}
		placed.TableNumber = string(echo.TableNumber)
	}
	if placed.OrderDate.IsZero() {
		placed.OrderDate = time.Now()
	}
	return placed, nil
}

func newCreateOrder(in models.CreateOrderInput) (wireCreateOrder, error) {
	name := strings.TrimSpace(in.CustomerName)
	if name == "" {
		return wireCreateOrder{}, models.ValidationError{Field: "customer_name", Message: "customer name is required"}
	}
	if strings.TrimSpace(in.TableID) == "" {
		return wireCreateOrder{}, models.ValidationError{Field: "table_id", Message: "table is required"}
	}
	if len(in.Lines) == 0 {
		return wireCreateOrder{}, models.ValidationError{Field: "order_detail", Message: "order has no items"}
	}
	lines := make([]wireOrderLine, 0, len(in.Lines))
	for i, l := range in.Lines {
		if strings.TrimSpace(l.MenuID) == "" {
			return wireCreateOrder{}, models.ValidationError{Field: fmt.Sprintf("order_detail[%d].menu_id", i), Message: "menu id is required"}
		}
		if l.Quantity <= 0 {
			return wireCreateOrder{}, models.ValidationError{Field: fmt.Sprintf("order_detail[%d].quantity", i), Message: "quantity must be greater than 0"}
		}
		lines = append(lines, wireOrderLine{MenuID: l.MenuID, Quantity: l.Quantity})
	}
	return wireCreateOrder{CustomerName: name, TableID: strings.TrimSpace(in.TableID), OrderDetail: lines}, nil
}

// OrdersByCashier lists the orders taken by one cashier.
func (c *Client) OrdersByCashier(ctx context.Context, userID string) ([]models.OrderSummary, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, models.ValidationError{Field: "user_id", Message: "user id is required"}
	}
	return c.listOrders(ctx, "/order/"+pathID(userID))
}

// SearchOrders lists orders for the manager screen, optionally narrowed by day and/or keyword.
func (c *Client) SearchOrders(ctx context.Context, q models.OrderSearch) ([]models.OrderSummary, error) {
	return c.listOrders(ctx, searchPath(q))
}

func searchPath(q models.OrderSearch) string {
	key := strings.TrimSpace(q.Key)
	date := ""
	if !q.Date.IsZero() {
		date = q.Date.Format("2006-01-02")
	}
	switch {
	case date != "" && key != "":
		return "/order/searchbydateandkey/" + date + "/" + pathID(key)
	case date != "":
		return "/order/searchbydate/" + date
	case key != "":
		return "/order/search/" + pathID(key)
	default:
		return "/order"
	}
}

func (c *Client) listOrders(ctx context.Context, path string) ([]models.OrderSummary, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, path, nil, true, &raw); err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	rows, err := decodeList(raw, "order list")
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	orders := make([]models.OrderSummary, 0, len(rows))
	for i, rawRow := range rows {
		var r wireOrderSummary
		if err := json.Unmarshal(rawRow, &r); err != nil {
			log.Printf("skip order row %d: %v", i, err)
			continue
		}
		orders = append(orders, models.OrderSummary{
			ID:           string(r.OrderID),
			OrderDate:    r.OrderDate,
			CustomerName: r.CustomerName,
			TableNumber:  string(r.TableNumber),
			Status:       r.Status,
			CreatedAt:    r.CreatedAt,
		})
	}
	return orders, nil
}

// OrderDetail returns the line items and total of one order.
func (c *Client) OrderDetail(ctx context.Context, orderID string) (*models.OrderDetail, error) {
	if strings.TrimSpace(orderID) == "" {
		return nil, models.ValidationError{Field: "order_id", Message: "order id is required"}
	}
	var resp wireOrderDetail
	if err := c.do(ctx, http.MethodGet, "/orderdetail/"+pathID(orderID), nil, true, &resp); err != nil {
		return nil, fmt.Errorf("order detail %s: %w", orderID, err)
	}
	if !strings.EqualFold(resp.Status, "success") {
		return nil, &ServerError{StatusCode: http.StatusOK, Status: resp.Status, Message: resp.Message}
	}
	detail := &models.OrderDetail{OrderID: orderID, TotalPrice: resp.TotalPrice}
	for _, l := range resp.Data {
		lineTotal := l.OrderDetailPrice
		if lineTotal.IsZero() {
			lineTotal = l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
		}
		detail.Lines = append(detail.Lines, models.OrderDetailLine{
			ID:        string(l.ID),
			MenuName:  l.MenuName,
			Quantity:  int(l.Quantity),
			Price:     l.Price,
			LineTotal: lineTotal,
		})
	}
	return detail, nil
}

func parseOrderDate(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
