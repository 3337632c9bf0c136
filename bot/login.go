package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"cafe-pos/services"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (b *Bot) handleStart(chatID, userID int64) {
	ctx := context.Background()
	op := b.operatorFor(userID)
	if !op.session.LoggedIn(ctx) {
		b.send(chatID, "☕ Café POS\n\nLog in with /login <username> <password>")
		return
	}
	u, err := op.session.User(ctx)
	if err != nil {
		b.fail(chatID, userID, "start", err)
		return
	}
	screen, err := services.ScreenForRole(u.Role)
	if err != nil {
		b.fail(chatID, userID, "start", err)
		return
	}
	b.send(chatID, fmt.Sprintf("☕ Hello, %s!\n\n%s", u.DisplayName, screenHelp(screen)))
}

func screenHelp(s services.Screen) string {
	switch s {
	case services.ScreenCashier:
		return "/menu – take an order\n/cart – current cart\n/tables – pick a table\n/name <customer> – customer name\n/order – place the order\n/history – my orders\n/detail <order id> – order lines"
	case services.ScreenManager:
		return "/orders – all orders\n/orders <YYYY-MM-DD> – orders of a day\n/orders <keyword> – search by customer\n/orders <YYYY-MM-DD> <keyword>\n/detail <order id> – order lines"
	case services.ScreenAdmin:
		return "/alltables – every table\n/addtable <number>\n/tableset <id> <number> <yes|no>\n/menuedit <id> | <name> | <price> | <food|drink> | <description>\n/menuadd <name> | <price> | <food|drink> | <description> – as a photo caption\n/users – user accounts\n/user <id>\n/useredit <id> | <full name> | <username> | <role>\n/register <role> <username> <password> <full name>"
	}
	return ""
}

// handleLogin never logs or echoes the password; the command message itself is deleted.
func (b *Bot) handleLogin(chatID, userID int64, messageID int, args string) {
	if messageID != 0 {
		if _, err := b.api.Request(tgbotapi.NewDeleteMessage(chatID, messageID)); err != nil {
			log.Printf("delete login message user=%d: %v", userID, err)
		}
	}

	ctx := context.Background()
	wait, err := services.LoginThrottleWaitSeconds(ctx, userID)
	if err != nil {
		log.Printf("login throttle user=%d: %v", userID, err)
	}
	if wait > 0 {
		b.send(chatID, fmt.Sprintf("Too many attempts. Try again in %d seconds.", wait))
		return
	}

	username, password, _ := strings.Cut(strings.TrimSpace(args), " ")
	password = strings.TrimSpace(password)

	op := b.operatorFor(userID)
	res, err := op.session.Login(ctx, b.cafe, username, password)
	if err != nil {
		var vErr services.ValidationError
		if !errors.As(err, &vErr) {
			if terr := services.RecordLoginFailed(ctx, userID); terr != nil {
				log.Printf("record login failed user=%d: %v", userID, terr)
			}
		}
		b.send(chatID, services.UserMessage(err))
		return
	}
	if err := services.RecordLoginSuccess(ctx, userID); err != nil {
		log.Printf("record login success user=%d: %v", userID, err)
	}

	screen, _ := services.ScreenForRole(res.User.Role)
	log.Printf("login user=%d role=%s", userID, screen)
	b.send(chatID, fmt.Sprintf("✅ Logged in as %s (%s).\n\n%s", res.User.DisplayName, screen, screenHelp(screen)))
}

func (b *Bot) handleLogout(chatID, userID int64) {
	ctx := context.Background()
	op := b.operatorFor(userID)
	if err := op.session.Logout(ctx); err != nil {
		log.Printf("logout user=%d: %v", userID, err)
		b.send(chatID, services.UserMessage(err))
		return
	}
	if err := services.DeleteCardMessagePointers(ctx, userID); err != nil {
		log.Printf("delete card pointers user=%d: %v", userID, err)
	}
	b.forgetOperator(userID)
	b.send(chatID, "👋 Logged out.")
}
