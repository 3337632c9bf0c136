package bot

import (
	"context"
	"log"
	"strings"
	"sync"

	"cafe-pos/clients"
	"cafe-pos/config"
	"cafe-pos/services"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// operator is the per-Telegram-user state: session, API client bound to the
// session's token, and the cart/checkout that live for the whole session.
type operator struct {
	session  *services.Session
	cafe     *clients.Client
	catalog  *services.MenuCatalog
	tables   *services.TableDirectory
	cart     *services.Cart
	checkout *services.Checkout
}

type Bot struct {
	api      *tgbotapi.BotAPI
	cfg      *config.Config
	cafe     *clients.Client
	store    services.CredentialStore
	notifier services.OrderNotifier

	operators   map[int64]*operator
	operatorsMu sync.Mutex
}

func New(cfg *config.Config, cafe *clients.Client, store services.CredentialStore) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		return nil, err
	}
	b := &Bot{
		api:       api,
		cfg:       cfg,
		cafe:      cafe,
		store:     store,
		operators: make(map[int64]*operator),
	}
	if cfg.Telegram.KitchenChatID != 0 {
		b.notifier = services.Notifiers{&kitchenNotifier{api: api, chatID: cfg.Telegram.KitchenChatID}}
	}
	return b, nil
}

// AddNotifier registers an extra receiver of placed orders (e.g. the RabbitMQ publisher).
func (b *Bot) AddNotifier(n services.OrderNotifier) {
	switch cur := b.notifier.(type) {
	case nil:
		b.notifier = services.Notifiers{n}
	case services.Notifiers:
		b.notifier = append(cur, n)
	default:
		b.notifier = services.Notifiers{cur, n}
	}
}

// operatorFor returns the operator state, creating it on first use.
func (b *Bot) operatorFor(userID int64) *operator {
	b.operatorsMu.Lock()
	defer b.operatorsMu.Unlock()

	if op, ok := b.operators[userID]; ok {
		return op
	}
	session := services.NewSession(b.store, userID)
	cafe := b.cafe.WithTokens(session)
	tables := services.NewTableDirectory(cafe)
	cart := services.NewCart()
	checkout := services.NewCheckout(cart, cafe, tables)
	if b.notifier != nil {
		checkout.SetNotifier(b.notifier)
	}
	op := &operator{
		session:  session,
		cafe:     cafe,
		catalog:  services.NewMenuCatalog(cafe),
		tables:   tables,
		cart:     cart,
		checkout: checkout,
	}
	b.operators[userID] = op
	return op
}

// forgetOperator drops cart and checkout state (logout).
func (b *Bot) forgetOperator(userID int64) {
	b.operatorsMu.Lock()
	defer b.operatorsMu.Unlock()
	delete(b.operators, userID)
}

// cardMarkup converts Card.Buttons to Telegram inline keyboard (URL vs callback).
func cardMarkup(c services.Card) *tgbotapi.InlineKeyboardMarkup {
	if len(c.Buttons) == 0 {
		return nil
	}
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, row := range c.Buttons {
		var btns []tgbotapi.InlineKeyboardButton
		for _, btn := range row {
			if btn.URL != "" {
				btns = append(btns, tgbotapi.NewInlineKeyboardButtonURL(btn.Text, btn.URL))
			} else {
				btns = append(btns, tgbotapi.NewInlineKeyboardButtonData(btn.Text, btn.CallbackData))
			}
		}
		rows = append(rows, btns)
	}
	kb := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return &kb
}

func (b *Bot) sendCard(chatID int64, card services.Card) (int, error) {
	msg := tgbotapi.NewMessage(chatID, card.Text)
	if kb := cardMarkup(card); kb != nil {
		msg.ReplyMarkup = *kb
	}
	sent, err := b.api.Send(msg)
	if err != nil {
		log.Printf("send error: %v", err)
		return 0, err
	}
	return sent.MessageID, nil
}

// editCard replaces the text and keyboard of messageID.
// On "message is not modified": ignore.
func (b *Bot) editCard(chatID int64, messageID int, card services.Card) error {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, card.Text)
	if kb := cardMarkup(card); kb != nil {
		edit.ReplyMarkup = kb
	} else {
		emptyKb := tgbotapi.InlineKeyboardMarkup{InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{}}
		edit.ReplyMarkup = &emptyKb
	}
	_, err := b.api.Send(edit)
	if err != nil && strings.Contains(err.Error(), "not modified") {
		return nil
	}
	return err
}

// UpsertCard edits the operator's existing card message if we have a pointer; otherwise sends new and saves pointer.
// On "message not found" (e.g. deleted): send new message and upsert pointer.
func (b *Bot) UpsertCard(ctx context.Context, userID, chatID int64, name string, card services.Card) {
	ptrChatID, messageID, ok, err := services.GetCardMessagePointer(ctx, userID, name)
	if err != nil {
		log.Printf("UpsertCard get pointer user=%d card=%s: %v", userID, name, err)
	}
	if ok && ptrChatID == chatID {
		err := b.editCard(chatID, messageID, card)
		if err == nil {
			return
		}
		if !strings.Contains(err.Error(), "not found") {
			log.Printf("UpsertCard edit user=%d card=%s: %v", userID, name, err)
			return
		}
	}
	sentID, err := b.sendCard(chatID, card)
	if err != nil {
		return
	}
	if err := services.UpsertCardMessagePointer(ctx, userID, name, chatID, sentID); err != nil {
		log.Printf("UpsertCard save pointer user=%d card=%s: %v", userID, name, err)
	}
}

func (b *Bot) setBotCommands() error {
	cfg := tgbotapi.SetMyCommandsConfig{
		Commands: []tgbotapi.BotCommand{
			{Command: "start", Description: "Home"},
			{Command: "login", Description: "Log in: /login <username> <password>"},
			{Command: "menu", Description: "Menu (cashier)"},
			{Command: "cart", Description: "Cart (cashier)"},
			{Command: "tables", Description: "Free tables (cashier)"},
			{Command: "name", Description: "Customer name: /name <customer>"},
			{Command: "order", Description: "Place the order (cashier)"},
			{Command: "history", Description: "My orders (cashier)"},
			{Command: "orders", Description: "Order search (manager)"},
			{Command: "logout", Description: "Log out"},
		},
	}
	_, err := b.api.Request(cfg)
	return err
}

func (b *Bot) Start() {
	// Register bot command menu (Telegram client shows these in the input menu)
	if err := b.setBotCommands(); err != nil {
		log.Printf("set commands: %v", err)
	}
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)

	for update := range updates {
		if update.CallbackQuery != nil {
			b.handleCallback(update.CallbackQuery)
			continue
		}
		if update.Message == nil || update.Message.From == nil {
			continue
		}
		b.handleMessage(update.Message)
	}
}

// Stop ends the update loop started by Start.
func (b *Bot) Stop() {
	b.api.StopReceivingUpdates()
}

func (b *Bot) handleMessage(msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	userID := msg.From.ID
	text := strings.TrimSpace(msg.Text)
	if text == "" {
		text = strings.TrimSpace(msg.Caption)
	}
	cmd, args := splitCommand(text)

	switch cmd {
	case "/start":
		b.handleStart(chatID, userID)
	case "/login":
		b.handleLogin(chatID, userID, msg.MessageID, args)
	case "/logout":
		b.handleLogout(chatID, userID)
	case "/menu":
		b.handleMenu(chatID, userID)
	case "/cart":
		b.handleCart(chatID, userID)
	case "/tables":
		b.handleTables(chatID, userID)
	case "/name":
		b.handleCustomerName(chatID, userID, args)
	case "/order":
		b.handleSubmit(chatID, userID)
	case "/history":
		b.handleHistory(chatID, userID)
	case "/detail":
		b.handleDetail(chatID, userID, args)
	case "/orders":
		b.handleOrderSearch(chatID, userID, args)
	case "/alltables":
		b.handleAllTables(chatID, userID)
	case "/addtable":
		b.handleAddTable(chatID, userID, args)
	case "/tableset":
		b.handleSetTable(chatID, userID, args)
	case "/menuedit":
		b.handleMenuEdit(chatID, userID, args)
	case "/users":
		b.handleUsers(chatID, userID)
	case "/register":
		b.handleRegister(chatID, userID, msg.MessageID, args)
	case "/user":
		b.handleUser(chatID, userID, args)
	case "/useredit":
		b.handleUserEdit(chatID, userID, args)
	case "/menuadd":
		b.handleMenuAdd(msg, args)
	}
}

// splitCommand turns "/cmd@bot a b" into ("/cmd", "a b").
func splitCommand(text string) (cmd, args string) {
	if !strings.HasPrefix(text, "/") {
		return "", text
	}
	cmd, args, _ = strings.Cut(text, " ")
	if i := strings.Index(cmd, "@"); i >= 0 {
		cmd = cmd[:i]
	}
	return strings.ToLower(cmd), strings.TrimSpace(args)
}

func (b *Bot) handleCallback(cq *tgbotapi.CallbackQuery) {
	if cq.Message == nil {
		return
	}
	chatID := cq.Message.Chat.ID
	userID := cq.From.ID
	msgID := cq.Message.MessageID
	data := cq.Data

	b.api.Request(tgbotapi.NewCallback(cq.ID, ""))

	switch {
	case data == "noop":
	case data == "menu" || data == "back_cats":
		b.showCategories(chatID, userID, msgID)
	case strings.HasPrefix(data, "cat:"):
		b.showCategory(chatID, userID, msgID, strings.TrimPrefix(data, "cat:"))
	case strings.HasPrefix(data, "add:"):
		itemID, category, _ := strings.Cut(strings.TrimPrefix(data, "add:"), ":")
		b.addToCart(chatID, userID, msgID, itemID, category)
	case data == "cart":
		b.handleCart(chatID, userID)
	case strings.HasPrefix(data, "inc:"):
		b.changeQuantity(chatID, userID, msgID, strings.TrimPrefix(data, "inc:"), 1)
	case strings.HasPrefix(data, "dec:"):
		b.changeQuantity(chatID, userID, msgID, strings.TrimPrefix(data, "dec:"), -1)
	case strings.HasPrefix(data, "rm:"):
		b.removeLine(chatID, userID, msgID, strings.TrimPrefix(data, "rm:"))
	case data == "clear":
		b.clearCart(chatID, userID, msgID)
	case data == "tables":
		b.handleTables(chatID, userID)
	case strings.HasPrefix(data, "table:"):
		b.selectTable(chatID, userID, msgID, strings.TrimPrefix(data, "table:"))
	case data == "submit":
		b.handleSubmit(chatID, userID)
	case strings.HasPrefix(data, "detail:"):
		b.handleDetail(chatID, userID, strings.TrimPrefix(data, "detail:"))
	}
}

func (b *Bot) send(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		log.Printf("send error: %v", err)
	}
}

// fail shows err to the operator. Auth errors drop the stored credential so the
// next command asks for /login.
func (b *Bot) fail(chatID, userID int64, op string, err error) {
	log.Printf("%s user=%d: %v", op, userID, err)
	b.dropRejectedCredential(context.Background(), userID, err)
	b.send(chatID, services.UserMessage(err))
}

// dropRejectedCredential clears the stored token after an auth error. Cart
// and checkout stay so the operator can log in again and resend the order.
func (b *Bot) dropRejectedCredential(ctx context.Context, userID int64, err error) {
	if !services.IsAuthError(err) {
		return
	}
	o := b.operatorFor(userID)
	if lerr := o.session.Logout(ctx); lerr != nil {
		log.Printf("logout after auth error user=%d: %v", userID, lerr)
	}
}

// requireScreen returns the operator if they are logged in with one of the screens.
func (b *Bot) requireScreen(chatID, userID int64, allowed ...services.Screen) (*operator, bool) {
	ctx := context.Background()
	op := b.operatorFor(userID)
	if !op.session.LoggedIn(ctx) {
		b.send(chatID, "Please log in first: /login <username> <password>")
		return nil, false
	}
	screen, err := op.session.Screen(ctx)
	if err != nil {
		b.fail(chatID, userID, "screen", err)
		return nil, false
	}
	for _, s := range allowed {
		if s == screen {
			return op, true
		}
	}
	b.send(chatID, "This command is not available for your role.")
	return nil, false
}
