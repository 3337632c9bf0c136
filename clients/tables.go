package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"

	"cafe-pos/models"
)

type wireTable struct {
	TableID     flexString `json:"table_id"`
	TableNumber flexString `json:"table_number"`
	IsAvailable flexBool   `json:"is_available"`
}

type wireTableCreate struct {
	TableNumber string `json:"table_number"`
}

type wireTableUpdate struct {
	TableNumber string `json:"table_number"`
	IsAvailable string `json:"is_available"`
}

// FetchTables returns every table exactly as the server reports it,
// available or not. Callers that need free tables filter themselves.
func (c *Client) FetchTables(ctx context.Context) ([]models.Table, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/table", nil, true, &raw); err != nil {
		return nil, fmt.Errorf("fetch tables: %w", err)
	}
	rows, err := decodeList(raw, "table list")
	if err != nil {
		return nil, fmt.Errorf("fetch tables: %w", err)
	}
	tables := make([]models.Table, 0, len(rows))
	for i, rawRow := range rows {
		var row wireTable
		if err := json.Unmarshal(rawRow, &row); err != nil {
			log.Printf("skip table row %d: %v", i, err)
			continue
		}
		if row.TableID == "" {
			continue
		}
		tables = append(tables, models.Table{
			ID:        string(row.TableID),
			Number:    string(row.TableNumber),
			Available: bool(row.IsAvailable),
		})
	}
	return tables, nil
}

// AddTable registers a new table under the given number.
func (c *Client) AddTable(ctx context.Context, number string) error {
	number = strings.TrimSpace(number)
	if number == "" {
		return models.ValidationError{Field: "table_number", Message: "table number is required"}
	}
	if err := c.do(ctx, http.MethodPost, "/table", wireTableCreate{TableNumber: number}, true, nil); err != nil {
		return fmt.Errorf("add table %s: %w", number, err)
	}
	return nil
}

// UpdateTable renumbers a table and sets its availability.
func (c *Client) UpdateTable(ctx context.Context, t models.Table) error {
	if strings.TrimSpace(t.ID) == "" {
		return models.ValidationError{Field: "table_id", Message: "table id is required"}
	}
	if strings.TrimSpace(t.Number) == "" {
		return models.ValidationError{Field: "table_number", Message: "table number is required"}
	}
	body := wireTableUpdate{
		TableNumber: strings.TrimSpace(t.Number),
		IsAvailable: fmt.Sprintf("%t", t.Available),
	}
	if err := c.do(ctx, http.MethodPut, "/table/"+pathID(t.ID), body, true, nil); err != nil {
		return fmt.Errorf("update table %s: %w", t.ID, err)
	}
	return nil
}
