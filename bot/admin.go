package bot

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"path"
	"strings"
	"time"

	"cafe-pos/models"
	"cafe-pos/services"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shopspring/decimal"
)

// maxMenuImage caps the picture downloaded from Telegram for /menuadd.
const maxMenuImage = 5 << 20

var photoClient = &http.Client{Timeout: 30 * time.Second}

func (b *Bot) handleAllTables(chatID, userID int64) {
	op, ok := b.requireScreen(chatID, userID, services.ScreenAdmin)
	if !ok {
		return
	}
	tables, err := op.cafe.FetchTables(context.Background())
	if err != nil {
		b.fail(chatID, userID, "list tables", err)
		return
	}
	if len(tables) == 0 {
		b.send(chatID, "🪑 No tables.")
		return
	}
	var sb strings.Builder
	sb.WriteString("🪑 Tables\n")
	for _, t := range tables {
		state := "occupied"
		if t.Available {
			state = "free"
		}
		fmt.Fprintf(&sb, "\nid %s · table %s · %s", t.ID, t.Number, state)
	}
	b.send(chatID, sb.String())
}

func (b *Bot) handleAddTable(chatID, userID int64, args string) {
	op, ok := b.requireScreen(chatID, userID, services.ScreenAdmin)
	if !ok {
		return
	}
	number := strings.TrimSpace(args)
	if number == "" {
		b.send(chatID, "Usage: /addtable <number>")
		return
	}
	if err := op.cafe.AddTable(context.Background(), number); err != nil {
		b.fail(chatID, userID, "add table", err)
		return
	}
	b.send(chatID, "✅ Table "+number+" added.")
}

// parseTableUpdate reads "<id> <number> <yes|no>".
func parseTableUpdate(args string) (models.Table, error) {
	f := strings.Fields(args)
	if len(f) != 3 {
		return models.Table{}, services.ValidationError{Field: "args", Message: "Usage: /tableset <id> <number> <yes|no>"}
	}
	var avail bool
	switch strings.ToLower(f[2]) {
	case "yes", "y", "true", "free", "1":
		avail = true
	case "no", "n", "false", "occupied", "0":
		avail = false
	default:
		return models.Table{}, services.ValidationError{Field: "is_available", Message: "Availability must be yes or no."}
	}
	return models.Table{ID: f[0], Number: f[1], Available: avail}, nil
}

func (b *Bot) handleSetTable(chatID, userID int64, args string) {
	op, ok := b.requireScreen(chatID, userID, services.ScreenAdmin)
	if !ok {
		return
	}
	t, err := parseTableUpdate(args)
	if err != nil {
		b.send(chatID, services.UserMessage(err))
		return
	}
	if err := op.cafe.UpdateTable(context.Background(), t); err != nil {
		b.fail(chatID, userID, "update table", err)
		return
	}
	b.send(chatID, "✅ Table "+t.ID+" updated.")
}

// parseMenuEdit reads "<id> | <name> | <price> | <food|drink> | <description>".
func parseMenuEdit(args string) (string, models.MenuUpdate, error) {
	parts := strings.Split(args, "|")
	if len(parts) < 4 {
		return "", models.MenuUpdate{}, services.ValidationError{Field: "args", Message: "Usage: /menuedit <id> | <name> | <price> | <food|drink> | <description>"}
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	price, err := decimal.NewFromString(parts[2])
	if err != nil {
		return "", models.MenuUpdate{}, services.ValidationError{Field: "price", Message: "Price must be a number."}
	}
	upd := models.MenuUpdate{
		Name:     parts[1],
		Price:    price,
		Category: strings.ToLower(parts[3]),
	}
	if len(parts) > 4 {
		upd.Description = strings.Join(parts[4:], "|")
	}
	return parts[0], upd, nil
}

func (b *Bot) handleMenuEdit(chatID, userID int64, args string) {
	op, ok := b.requireScreen(chatID, userID, services.ScreenAdmin)
	if !ok {
		return
	}
	id, upd, err := parseMenuEdit(args)
	if err != nil {
		b.send(chatID, services.UserMessage(err))
		return
	}
	if err := op.cafe.UpdateMenuItem(context.Background(), id, upd); err != nil {
		b.fail(chatID, userID, "update menu", err)
		return
	}
	b.send(chatID, "✅ Menu item "+id+" updated.")
}

func (b *Bot) handleUsers(chatID, userID int64) {
	op, ok := b.requireScreen(chatID, userID, services.ScreenAdmin)
	if !ok {
		return
	}
	users, err := op.cafe.ListUsers(context.Background())
	if err != nil {
		b.fail(chatID, userID, "list users", err)
		return
	}
	b.sendCard(chatID, services.BuildUsersCard(users))
}

// parseRegister reads "<role> <username> <password> <display name>".
func parseRegister(args string) (models.NewUser, error) {
	f := strings.Fields(args)
	if len(f) < 4 {
		return models.NewUser{}, services.ValidationError{Field: "args", Message: "Usage: /register <cashier|manager|admin> <username> <password> <full name>"}
	}
	role := strings.ToLower(f[0])
	if !models.ValidRole(role) {
		return models.NewUser{}, services.ValidationError{Field: "role", Message: "Role must be cashier, manager or admin."}
	}
	return models.NewUser{
		Role:        role,
		Username:    f[1],
		Password:    f[2],
		DisplayName: strings.Join(f[3:], " "),
	}, nil
}

// handleRegister deletes the command message since it carries a password.
func (b *Bot) handleRegister(chatID, userID int64, messageID int, args string) {
	if messageID != 0 {
		if _, err := b.api.Request(tgbotapi.NewDeleteMessage(chatID, messageID)); err != nil {
			log.Printf("delete register message user=%d: %v", userID, err)
		}
	}
	op, ok := b.requireScreen(chatID, userID, services.ScreenAdmin)
	if !ok {
		return
	}
	u, err := parseRegister(args)
	if err != nil {
		b.send(chatID, services.UserMessage(err))
		return
	}
	if err := op.cafe.RegisterUser(context.Background(), u); err != nil {
		b.fail(chatID, userID, "register user", err)
		return
	}
	b.send(chatID, fmt.Sprintf("✅ %s registered as %s (%s).", u.DisplayName, u.Username, u.Role))
}

func (b *Bot) handleUser(chatID, userID int64, args string) {
	op, ok := b.requireScreen(chatID, userID, services.ScreenAdmin)
	if !ok {
		return
	}
	id := strings.TrimSpace(args)
	if id == "" {
		b.send(chatID, "Usage: /user <id>")
		return
	}
	u, err := op.cafe.GetUser(context.Background(), id)
	if err != nil {
		b.fail(chatID, userID, "get user", err)
		return
	}
	b.send(chatID, fmt.Sprintf("👤 %s\nid %s · @%s · %s\n\nEdit: /useredit %s | %s | %s | %s",
		u.DisplayName, u.ID, u.Username, u.Role, u.ID, u.DisplayName, u.Username, u.Role))
}

// parseUserEdit reads "<id> | <display name> | <username> | <role>".
func parseUserEdit(args string) (string, models.UserUpdate, error) {
	parts := strings.Split(args, "|")
	if len(parts) != 4 {
		return "", models.UserUpdate{}, services.ValidationError{Field: "args", Message: "Usage: /useredit <id> | <full name> | <username> | <role>"}
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
		if parts[i] == "" {
			return "", models.UserUpdate{}, services.ValidationError{Field: "args", Message: "All fields are required."}
		}
	}
	role := strings.ToLower(parts[3])
	if !models.ValidRole(role) {
		return "", models.UserUpdate{}, services.ValidationError{Field: "role", Message: "Role must be cashier, manager or admin."}
	}
	return parts[0], models.UserUpdate{DisplayName: parts[1], Username: parts[2], Role: role}, nil
}

func (b *Bot) handleUserEdit(chatID, userID int64, args string) {
	op, ok := b.requireScreen(chatID, userID, services.ScreenAdmin)
	if !ok {
		return
	}
	id, upd, err := parseUserEdit(args)
	if err != nil {
		b.send(chatID, services.UserMessage(err))
		return
	}
	if err := op.cafe.UpdateUser(context.Background(), id, upd); err != nil {
		b.fail(chatID, userID, "update user", err)
		return
	}
	b.send(chatID, "✅ User "+id+" updated.")
}

// parseMenuAdd reads "<name> | <price> | <food|drink> | <description>".
func parseMenuAdd(args string) (models.MenuUpdate, error) {
	usage := services.ValidationError{Field: "args", Message: "Send a photo with the caption /menuadd <name> | <price> | <food|drink> | <description>"}
	parts := strings.SplitN(args, "|", 4)
	if len(parts) != 4 {
		return models.MenuUpdate{}, usage
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
		if parts[i] == "" {
			return models.MenuUpdate{}, usage
		}
	}
	price, err := decimal.NewFromString(parts[1])
	if err != nil {
		return models.MenuUpdate{}, services.ValidationError{Field: "price", Message: "Price must be a number."}
	}
	return models.MenuUpdate{
		Name:        parts[0],
		Price:       price,
		Category:    strings.ToLower(parts[2]),
		Description: parts[3],
	}, nil
}

// menuPhoto picks the picture attached to msg: the largest photo size, or an
// image sent as a file.
func menuPhoto(msg *tgbotapi.Message) (fileID, name string, ok bool) {
	if n := len(msg.Photo); n > 0 {
		p := msg.Photo[n-1]
		return p.FileID, p.FileUniqueID + ".jpg", true
	}
	if d := msg.Document; d != nil && strings.HasPrefix(d.MimeType, "image/") {
		return d.FileID, d.FileName, true
	}
	return "", "", false
}

func (b *Bot) handleMenuAdd(msg *tgbotapi.Message, args string) {
	chatID, userID := msg.Chat.ID, msg.From.ID
	op, ok := b.requireScreen(chatID, userID, services.ScreenAdmin)
	if !ok {
		return
	}
	upd, err := parseMenuAdd(args)
	if err != nil {
		b.send(chatID, services.UserMessage(err))
		return
	}
	fileID, name, ok := menuPhoto(msg)
	if !ok {
		b.send(chatID, "Attach a photo of the item and put the command in its caption.")
		return
	}
	ctx := context.Background()
	image, err := b.downloadFile(ctx, fileID)
	if err != nil {
		log.Printf("download menu photo user=%d: %v", userID, err)
		b.send(chatID, "Could not read the photo, please send it again.")
		return
	}
	item := models.NewMenuItem{MenuUpdate: upd, ImageName: path.Base(name), Image: image}
	if err := op.cafe.CreateMenuItem(ctx, item); err != nil {
		b.fail(chatID, userID, "create menu item", err)
		return
	}
	b.send(chatID, "✅ "+upd.Name+" added to the menu.")
}

func (b *Bot) downloadFile(ctx context.Context, fileID string) ([]byte, error) {
	link, err := b.api.GetFileDirectURL(fileID)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return nil, err
	}
	resp, err := photoClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("telegram file: http %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxMenuImage+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxMenuImage {
		return nil, fmt.Errorf("telegram file larger than %d bytes", maxMenuImage)
	}
	return data, nil
}
