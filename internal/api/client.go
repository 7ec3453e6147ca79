package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/salesconsole/internal/domain"
	"github.com/vladislavdragonenkov/salesconsole/internal/version"
)

const defaultRequestTimeout = 10 * time.Second

// TokenSource отдаёт текущий bearer-токен сессии; пустая строка — сессии нет.
type TokenSource interface {
	Token() string
}

// Client — HTTP-клиент API продаж. Прикрепляет bearer-токен к каждому запросу
// и нормализует неуспешные ответы в *Error{message, status}.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	logger     *log.Entry
}

// NewClient конструирует клиент для baseURL. tokens может быть nil для
// неаутентифицированных вызовов (signin/signup).
func NewClient(baseURL string, tokens TokenSource, logger *log.Entry) *Client {
	if logger == nil {
		logger = log.WithField("component", "api-client")
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultRequestTimeout},
		tokens:     tokens,
		logger:     logger,
	}
}

// ListSales запрашивает одну страницу заказов. Отсутствующие фильтры в запрос
// не попадают вовсе: ни пустыми, ни null.
func (c *Client) ListSales(ctx context.Context, q domain.ListQuery) (domain.SalesPage, error) {
	vals := url.Values{}
	vals.Set("page", strconv.Itoa(q.Page))
	if q.Status != nil {
		vals.Set("status", string(*q.Status))
	}
	if q.AssigneeID != nil {
		vals.Set("userId", *q.AssigneeID)
	}

	var page domain.SalesPage
	if err := c.do(ctx, http.MethodGet, "/sales?"+vals.Encode(), nil, &page); err != nil {
		return domain.SalesPage{}, err
	}
	return page, nil
}

// ListUsers возвращает всех сотрудников для фильтра и выбора назначенного.
func (c *Client) ListUsers(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	if err := c.do(ctx, http.MethodGet, "/users", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// ListCustomers возвращает справочник покупателей для формы создания заказа.
func (c *Client) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	var customers []domain.Customer
	if err := c.do(ctx, http.MethodGet, "/customers", nil, &customers); err != nil {
		return nil, err
	}
	return customers, nil
}

// ListProducts возвращает справочник товаров для формы создания заказа.
func (c *Client) ListProducts(ctx context.Context) ([]domain.Product, error) {
	var products []domain.Product
	if err := c.do(ctx, http.MethodGet, "/products", nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// CreateSale создаёт заказ. Ответ сервер отдаёт, но ядро его не потребляет:
// после мутации листинг перечитывается целиком.
func (c *Client) CreateSale(ctx context.Context, sale domain.NewSale) error {
	return c.do(ctx, http.MethodPost, "/sales", sale, nil)
}

// updatePayload — тело PUT /sales/{id}. RegisteredBy сериализуется как id
// пользователя или явный null для "никто".
type updatePayload struct {
	Status       domain.Status `json:"status"`
	RegisteredBy *string       `json:"registeredBy"`
}

// UpdateSale меняет статус и назначенного пользователя заказа.
func (c *Client) UpdateSale(ctx context.Context, id string, status domain.Status, registeredBy *string) error {
	return c.do(ctx, http.MethodPut, "/sales/"+url.PathEscape(id), updatePayload{
		Status:       status,
		RegisteredBy: registeredBy,
	}, nil)
}

// DeleteSale удаляет заказ; любой 2xx считается успехом.
func (c *Client) DeleteSale(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/sales/"+url.PathEscape(id), nil, nil)
}

type credentials struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string `json:"accessToken"`
}

// Signin обменивает email и пароль на bearer-токен.
func (c *Client) Signin(ctx context.Context, email, password string) (string, error) {
	var resp tokenResponse
	err := c.do(ctx, http.MethodPost, "/auth/signin", credentials{Email: email, Password: password}, &resp)
	if err != nil {
		return "", err
	}
	return resp.AccessToken, nil
}

// Signup регистрирует сотрудника и сразу возвращает bearer-токен.
func (c *Client) Signup(ctx context.Context, name, email, password string) (string, error) {
	var resp tokenResponse
	err := c.do(ctx, http.MethodPost, "/auth/signup", credentials{Name: name, Email: email, Password: password}, &resp)
	if err != nil {
		return "", err
	}
	return resp.AccessToken, nil
}

// Logout завершает сессию на сервере.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", nil, nil)
}

// do выполняет запрос и декодирует ответ. Неуспешный статус превращается в
// *Error с сообщением из тела ответа.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", version.UserAgent())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.decodeError(method, path, resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// decodeError вычитывает {message} из тела и строит *Error.
func (c *Client) decodeError(method, path string, resp *http.Response) error {
	apiErr := &Error{Status: resp.StatusCode}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err == nil && len(data) > 0 {
		var parsed struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(data, &parsed) == nil {
			apiErr.Message = parsed.Message
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}

	c.logger.WithFields(log.Fields{
		"method": method,
		"path":   path,
		"status": resp.StatusCode,
	}).Debug("api request failed")

	return apiErr
}
