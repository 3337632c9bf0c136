package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path"
	"strings"

	"cafe-pos/models"

	"github.com/shopspring/decimal"
)

type wireMenuItem struct {
	MenuID      flexString      `json:"menu_id"`
	Name        string          `json:"menu_name"`
	Price       decimal.Decimal `json:"price"`
	Type        string          `json:"type"`
	Description string          `json:"menu_description"`
	ImageName   string          `json:"menu_image_name"`
}

type wireMenuUpdate struct {
	Name        string          `json:"menu_name"`
	Price       decimal.Decimal `json:"price"`
	Type        string          `json:"type"`
	Description string          `json:"menu_description"`
}

// FetchMenu returns every valid item of the current menu. Rows that fail
// field validation are dropped and logged.
func (c *Client) FetchMenu(ctx context.Context) ([]models.MenuItem, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/menu", nil, true, &raw); err != nil {
		return nil, fmt.Errorf("fetch menu: %w", err)
	}
	rows, err := decodeList(raw, "menu list")
	if err != nil {
		return nil, fmt.Errorf("fetch menu: %w", err)
	}

	items := make([]models.MenuItem, 0, len(rows))
	for i, rawRow := range rows {
		var row wireMenuItem
		if err := json.Unmarshal(rawRow, &row); err != nil {
			log.Printf("skip menu row %d: %v", i, err)
			continue
		}
		item, err := c.toMenuItem(row)
		if err != nil {
			log.Printf("skip menu item %q: %v", row.MenuID, err)
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

// UpdateMenuItem edits name, price, type and description of one item.
func (c *Client) UpdateMenuItem(ctx context.Context, id string, upd models.MenuUpdate) error {
	if strings.TrimSpace(id) == "" {
		return models.ValidationError{Field: "menu_id", Message: "menu id is required"}
	}
	if err := validateMenuUpdate(upd); err != nil {
		return err
	}
	body := wireMenuUpdate{
		Name:        strings.TrimSpace(upd.Name),
		Price:       upd.Price,
		Type:        strings.ToUpper(upd.Category),
		Description: strings.TrimSpace(upd.Description),
	}
	if err := c.do(ctx, http.MethodPut, "/menu/"+pathID(id), body, true, nil); err != nil {
		return fmt.Errorf("update menu item %s: %w", id, err)
	}
	return nil
}

// CreateMenuItem adds a menu item. The API only accepts it as a multipart
// form with the picture in the menu_image_name part.
func (c *Client) CreateMenuItem(ctx context.Context, item models.NewMenuItem) error {
	if err := validateMenuUpdate(item.MenuUpdate); err != nil {
		return err
	}
	if len(item.Image) == 0 {
		return models.ValidationError{Field: "menu_image_name", Message: "a picture is required"}
	}
	imageName := path.Base(strings.TrimSpace(item.ImageName))
	if imageName == "" || imageName == "." || imageName == "/" {
		imageName = "menu.jpg"
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fields := [][2]string{
		{"menu_name", strings.TrimSpace(item.Name)},
		{"type", strings.ToUpper(item.Category)},
		{"menu_description", strings.TrimSpace(item.Description)},
		{"price", item.Price.String()},
	}
	for _, f := range fields {
		if err := mw.WriteField(f[0], f[1]); err != nil {
			return fmt.Errorf("create menu item: %w", err)
		}
	}
	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name="menu_image_name"; filename=%q`, imageName))
	hdr.Set("Content-Type", imageContentType(item.Image))
	part, err := mw.CreatePart(hdr)
	if err != nil {
		return fmt.Errorf("create menu item: %w", err)
	}
	if _, err := part.Write(item.Image); err != nil {
		return fmt.Errorf("create menu item: %w", err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("create menu item: %w", err)
	}

	var raw json.RawMessage
	err = c.send(ctx, http.MethodPost, "/menu", mw.FormDataContentType(), &buf, true, &raw)
	if err == nil {
		err = checkStatus(raw)
	}
	if err != nil {
		return fmt.Errorf("create menu item %q: %w", item.Name, err)
	}
	return nil
}

func validateMenuUpdate(upd models.MenuUpdate) error {
	if strings.TrimSpace(upd.Name) == "" {
		return models.ValidationError{Field: "menu_name", Message: "menu name is required"}
	}
	if upd.Price.IsNegative() {
		return models.ValidationError{Field: "price", Message: "price must be >= 0"}
	}
	if !models.ValidCategory(upd.Category) {
		return models.ValidationError{Field: "type", Message: "type must be food or drink"}
	}
	return nil
}

// imageContentType sniffs the picture, falling back to jpeg like the mobile app did.
func imageContentType(data []byte) string {
	ct := http.DetectContentType(data)
	if strings.HasPrefix(ct, "image/") {
		return ct
	}
	return "image/jpeg"
}

func (c *Client) toMenuItem(row wireMenuItem) (models.MenuItem, error) {
	id := string(row.MenuID)
	if id == "" {
		return models.MenuItem{}, fmt.Errorf("missing menu_id")
	}
	name := strings.TrimSpace(row.Name)
	if name == "" {
		return models.MenuItem{}, fmt.Errorf("missing menu_name")
	}
	if row.Price.IsNegative() {
		return models.MenuItem{}, fmt.Errorf("negative price %s", row.Price)
	}
	category := strings.ToLower(strings.TrimSpace(row.Type))
	if !models.ValidCategory(category) {
		return models.MenuItem{}, fmt.Errorf("unknown type %q", row.Type)
	}
	return models.MenuItem{
		ID:          id,
		Name:        name,
		Price:       row.Price,
		Category:    category,
		Description: strings.TrimSpace(row.Description),
		ImageURL:    c.imageRef(row.ImageName),
	}, nil
}

func (c *Client) imageRef(name string) string {
	name = strings.TrimSpace(name)
	if name == "" || strings.HasPrefix(name, "http://") || strings.HasPrefix(name, "https://") {
		return name
	}
	return c.imageURL + "/" + strings.TrimLeft(name, "/")
}
