package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/peterh/liner"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/salesconsole/internal/api"
	"github.com/vladislavdragonenkov/salesconsole/internal/console/guard"
	"github.com/vladislavdragonenkov/salesconsole/internal/console/notice"
	"github.com/vladislavdragonenkov/salesconsole/internal/console/query"
	"github.com/vladislavdragonenkov/salesconsole/internal/console/session"
	"github.com/vladislavdragonenkov/salesconsole/internal/domain"
)

var replCommands = []string{
	"login", "register", "logout", "whoami",
	"list", "page", "next", "prev", "status", "assignee",
	"users", "customers", "products",
	"del", "upd", "new",
	"help", "clear", "exit", "quit",
}

// REPL — интерактивный цикл консоли продаж.
type REPL struct {
	cfg     Config
	client  *api.Client
	session *session.Store
	notices *notice.Center
	engine  *query.Engine
	guard   *guard.Guard
	logger  *log.Entry

	liner *liner.State
	// Кэш списка сотрудников для команды assignee.
	users []domain.User
}

// NewREPL собирает цикл из уже связанных компонентов консоли.
func NewREPL(cfg Config, client *api.Client, sess *session.Store, notices *notice.Center,
	engine *query.Engine, g *guard.Guard, logger *log.Entry) *REPL {
	return &REPL{
		cfg:     cfg,
		client:  client,
		session: sess,
		notices: notices,
		engine:  engine,
		guard:   g,
		logger:  logger,
	}
}

// Run запускает цикл до exit/quit, EOF или отмены контекста.
func (r *REPL) Run(ctx context.Context) error {
	r.liner = liner.NewLiner()
	defer r.liner.Close()

	r.liner.SetCtrlCAborts(true)
	r.liner.SetCompleter(func(line string) []string {
		var out []string
		for _, cmd := range replCommands {
			if strings.HasPrefix(cmd, strings.ToLower(line)) {
				out = append(out, cmd)
			}
		}
		return out
	})
	r.loadHistory()

	fmt.Println("sales console — type 'help' for commands")
	if r.session.Authenticated() {
		fmt.Println("session restored, 'list' to load orders")
	} else {
		fmt.Println("not signed in, use 'login <email>' or 'register <name> <email>'")
	}

	for {
		if err := ctx.Err(); err != nil {
			r.saveHistory()
			return err
		}

		line, err := r.liner.Prompt("sales> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				fmt.Println("\nbye")
				r.saveHistory()
				return nil
			}
			return fmt.Errorf("reading input: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		r.liner.AppendHistory(line)

		parts := strings.Fields(line)
		cmd := strings.ToLower(parts[0])
		args := parts[1:]

		switch cmd {
		case "exit", "quit", "q":
			fmt.Println("bye")
			r.saveHistory()
			return nil
		case "help", "?":
			r.printHelp()
		case "clear", "cls":
			fmt.Print("\033[H\033[2J")
		case "login":
			r.cmdLogin(ctx, args)
		case "register":
			r.cmdRegister(ctx, args)
		case "logout":
			r.cmdLogout(ctx)
		case "whoami", "session":
			r.cmdWhoami()
		case "list", "ls":
			r.engine.Refresh(ctx)
			r.renderList()
		case "page":
			r.cmdPage(ctx, args)
		case "next", "n":
			r.engine.NextPage(ctx)
			r.renderList()
		case "prev", "p":
			r.engine.PrevPage(ctx)
			r.renderList()
		case "status":
			r.cmdStatusFilter(ctx, args)
		case "assignee":
			r.cmdAssigneeFilter(ctx, args)
		case "users":
			r.cmdUsers(ctx)
		case "customers":
			r.cmdCustomers(ctx)
		case "products":
			r.cmdProducts(ctx)
		case "del", "delete":
			r.cmdDelete(ctx, args)
		case "upd", "update":
			r.cmdUpdate(ctx, args)
		case "new":
			r.cmdNew(ctx)
		default:
			fmt.Printf("unknown command: %s (type 'help')\n", cmd)
		}

		r.printNotice()
	}
}

func (r *REPL) printHelp() {
	fmt.Print(`commands:
  login <email>                  sign in (prompts for password)
  register <name> <email>        create an account and sign in
  logout                         drop the session
  whoami                         show session state

  list                           load and show the current page
  page <n>                       jump to page n
  next / prev                    move one page
  status <value|off>             filter by status (invoiced|packed|shipped|rejected)
  assignee <user-id|off>         filter by registered user
  users / customers / products   show reference lists

  new                            create an order (wizard)
  upd <row> <status> [user|none] update an order from the current page
  del <row>                      delete an order from the current page

  help / clear / exit
`)
}

// printNotice показывает последнее уведомление, как это делает баннер в UI.
func (r *REPL) printNotice() {
	if n := r.notices.Current(); n != nil {
		fmt.Printf("! %s\n", n.Message)
		r.notices.Dismiss()
	}
}

func (r *REPL) loadHistory() {
	if r.cfg.HistoryFile == "" {
		return
	}
	if f, err := os.Open(r.cfg.HistoryFile); err == nil {
		_, _ = r.liner.ReadHistory(f)
		_ = f.Close()
	}
}

func (r *REPL) saveHistory() {
	if r.cfg.HistoryFile == "" {
		return
	}
	if err := os.MkdirAll(filepath.Dir(r.cfg.HistoryFile), 0o700); err != nil {
		return
	}
	if f, err := os.Create(r.cfg.HistoryFile); err == nil {
		_, _ = r.liner.WriteHistory(f)
		_ = f.Close()
	}
}

func (r *REPL) renderList() {
	renderPage(r.engine.Rows(), r.engine.Page(), r.engine.TotalPages(), r.engine.StatusFilter(), r.engine.AssigneeFilter())
}

// rowByIndex возвращает строку текущей страницы по номеру из листинга.
func (r *REPL) rowByIndex(raw string) (domain.SalesOrderRow, bool) {
	index, err := strconv.Atoi(raw)
	rows := r.engine.Rows()
	if err != nil || index < 1 || index > len(rows) {
		fmt.Printf("row must be between 1 and %d\n", len(rows))
		return domain.SalesOrderRow{}, false
	}
	return rows[index-1], true
}

func (r *REPL) cmdLogin(ctx context.Context, args []string) {
	if len(args) != 1 {
		fmt.Println("usage: login <email>")
		return
	}

	password, err := r.liner.PasswordPrompt("password: ")
	if err != nil {
		fmt.Println("aborted")
		return
	}

	token, err := r.client.Signin(ctx, args[0], password)
	if err != nil {
		r.notices.Report(err)
		return
	}
	if err := r.session.Set(token); err != nil {
		r.logger.WithError(err).Warn("failed to persist session")
	}
	fmt.Println("signed in")
}

func (r *REPL) cmdRegister(ctx context.Context, args []string) {
	if len(args) != 2 {
		fmt.Println("usage: register <name> <email>")
		return
	}

	password, err := r.liner.PasswordPrompt("password: ")
	if err != nil {
		fmt.Println("aborted")
		return
	}

	token, err := r.client.Signup(ctx, args[0], args[1], password)
	if err != nil {
		r.notices.Report(err)
		return
	}
	if err := r.session.Set(token); err != nil {
		r.logger.WithError(err).Warn("failed to persist session")
	}
	fmt.Println("account created, signed in")
}

func (r *REPL) cmdLogout(ctx context.Context) {
	if err := r.client.Logout(ctx); err != nil {
		// Сессию чистим в любом случае.
		r.logger.WithError(err).Debug("logout request failed")
	}
	if err := r.session.Clear(); err != nil {
		r.logger.WithError(err).Warn("failed to clear session")
	}
	fmt.Println("signed out")
}

func (r *REPL) cmdWhoami() {
	if !r.session.Authenticated() {
		fmt.Println("not signed in")
		return
	}
	expires, ok := r.session.ExpiresAt()
	fmt.Printf("signed in, token expires: %s\n", formatExpiry(expires, ok))
}

func (r *REPL) cmdPage(ctx context.Context, args []string) {
	if len(args) != 1 {
		fmt.Println("usage: page <n>")
		return
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Println("page must be a number")
		return
	}
	r.engine.SetPage(ctx, n)
	r.renderList()
}

func (r *REPL) cmdStatusFilter(ctx context.Context, args []string) {
	if len(args) != 1 {
		fmt.Println("usage: status <invoiced|packed|shipped|rejected|off>")
		return
	}

	if strings.EqualFold(args[0], "off") {
		r.engine.SetStatusFilter(ctx, nil)
		r.renderList()
		return
	}

	status := domain.Status(strings.ToLower(args[0]))
	if !status.Valid() {
		fmt.Printf("unknown status %q\n", args[0])
		return
	}
	r.engine.SetStatusFilter(ctx, &status)
	r.renderList()
}

func (r *REPL) cmdAssigneeFilter(ctx context.Context, args []string) {
	if len(args) != 1 {
		fmt.Println("usage: assignee <user-id|off>")
		return
	}

	if strings.EqualFold(args[0], "off") {
		r.engine.SetAssigneeFilter(ctx, nil)
		r.renderList()
		return
	}

	user, ok := r.findUser(ctx, args[0])
	if !ok {
		fmt.Printf("unknown user %q (see 'users')\n", args[0])
		return
	}
	r.engine.SetAssigneeFilter(ctx, &user)
	r.renderList()
}

// findUser ищет сотрудника по id или email в кэшированном списке.
func (r *REPL) findUser(ctx context.Context, key string) (domain.User, bool) {
	if len(r.users) == 0 {
		users, err := r.client.ListUsers(ctx)
		if err != nil {
			r.notices.Report(err)
			return domain.User{}, false
		}
		r.users = users
	}

	for _, u := range r.users {
		if u.ID == key || strings.EqualFold(u.Email, key) {
			return u, true
		}
	}
	return domain.User{}, false
}

func (r *REPL) cmdUsers(ctx context.Context) {
	users, err := r.client.ListUsers(ctx)
	if err != nil {
		r.notices.Report(err)
		return
	}
	r.users = users
	renderUsers(users)
}

func (r *REPL) cmdCustomers(ctx context.Context) {
	customers, err := r.client.ListCustomers(ctx)
	if err != nil {
		r.notices.Report(err)
		return
	}
	renderCustomers(customers)
}

func (r *REPL) cmdProducts(ctx context.Context) {
	products, err := r.client.ListProducts(ctx)
	if err != nil {
		r.notices.Report(err)
		return
	}
	renderProducts(products)
}

func (r *REPL) cmdDelete(ctx context.Context, args []string) {
	if len(args) != 1 {
		fmt.Println("usage: del <row>")
		return
	}
	row, ok := r.rowByIndex(args[0])
	if !ok {
		return
	}

	if err := r.guard.SelectForDelete(row); err != nil {
		fmt.Println(err)
		return
	}

	if r.guard.DeleteBlocked() {
		// Подтверждение не спрашиваем: удаление всё равно будет отклонено.
		_ = r.guard.ConfirmDelete(ctx)
		// Открытого диалога у консоли нет, выбор снимаем сразу, иначе слот
		// останется занят до конца сессии.
		r.guard.Cancel()
		return
	}

	answer, err := r.liner.Prompt(fmt.Sprintf("delete order %s? (yes/no): ", row.Reference))
	if err != nil || !strings.EqualFold(strings.TrimSpace(answer), "yes") {
		r.guard.Cancel()
		fmt.Println("cancelled")
		return
	}

	if err := r.guard.ConfirmDelete(ctx); err != nil {
		r.guard.Cancel()
		return
	}
	fmt.Printf("order %s deleted\n", row.Reference)
	r.renderList()
}

func (r *REPL) cmdUpdate(ctx context.Context, args []string) {
	if len(args) < 2 || len(args) > 3 {
		fmt.Println("usage: upd <row> <status> [user-id|none]")
		return
	}
	row, ok := r.rowByIndex(args[0])
	if !ok {
		return
	}

	status := domain.Status(strings.ToLower(args[1]))
	if !status.Valid() {
		fmt.Printf("unknown status %q\n", args[1])
		return
	}

	// Без третьего аргумента оставляем текущего назначенного пользователя.
	var assignee *domain.User
	switch {
	case len(args) == 2:
		if row.User != nil {
			u := *row.User
			assignee = &u
		}
	case strings.EqualFold(args[2], "none"):
		assignee = nil
	default:
		user, found := r.findUser(ctx, args[2])
		if !found {
			fmt.Printf("unknown user %q (see 'users')\n", args[2])
			return
		}
		assignee = &user
	}

	if err := r.guard.SelectForUpdate(row); err != nil {
		fmt.Println(err)
		return
	}
	if err := r.guard.ConfirmUpdate(ctx, status, assignee); err != nil {
		// Guard держит выбор после неудачи; в консоли его никто не закроет,
		// поэтому освобождаем слот здесь.
		r.guard.Cancel()
		return
	}
	fmt.Printf("order %s updated\n", row.Reference)
	r.renderList()
}

// cmdNew — пошаговое создание заказа.
func (r *REPL) cmdNew(ctx context.Context) {
	customerID, ok := r.promptLine("customer id: ")
	if !ok {
		return
	}
	productID, ok := r.promptLine("product id: ")
	if !ok {
		return
	}
	rawQty, ok := r.promptLine("quantity: ")
	if !ok {
		return
	}
	quantity, err := strconv.Atoi(rawQty)
	if err != nil || quantity <= 0 {
		fmt.Println("quantity must be a positive number")
		return
	}
	rawStatus, ok := r.promptLine("status (invoiced|packed|shipped|rejected): ")
	if !ok {
		return
	}
	status := domain.Status(strings.ToLower(rawStatus))
	if !status.Valid() {
		fmt.Printf("unknown status %q\n", rawStatus)
		return
	}
	rawRegistered, ok := r.promptLine("register on me? (yes/no): ")
	if !ok {
		return
	}

	sale := domain.NewSale{
		CustomerID:   customerID,
		ProductID:    productID,
		Quantity:     quantity,
		Status:       status,
		IsRegistered: strings.EqualFold(rawRegistered, "yes"),
	}
	if err := r.client.CreateSale(ctx, sale); err != nil {
		r.notices.Report(err)
		return
	}

	fmt.Println("order created")
	r.engine.Refresh(ctx)
	r.renderList()
}

func (r *REPL) promptLine(prompt string) (string, bool) {
	line, err := r.liner.Prompt(prompt)
	if err != nil {
		fmt.Println("aborted")
		return "", false
	}
	line = strings.TrimSpace(line)
	if line == "" {
		fmt.Println("aborted: empty input")
		return "", false
	}
	return line, true
}
