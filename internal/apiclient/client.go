package apiclient

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

	"github.com/athebyme/gomarket-platform/admin-console/internal/credentials"
	apperrors "github.com/athebyme/gomarket-platform/admin-console/pkg/errors"
	"github.com/athebyme/gomarket-platform/admin-console/pkg/interfaces"
)

// Пути аутентификации внутреннего API. Запросы к ним никогда не запускают
// цикл обновления токена (защита от рекурсии).
const (
	defaultLoginPath   = "/api/v1/internal/auth/login"
	defaultRefreshPath = "/api/v1/internal/auth/refresh"
	defaultMePath      = "/api/v1/internal/auth/me"
)

// requestState описывает состояние конвейера для одного запроса.
// Явный автомат normal -> refreshing -> retried делает инвариант
// "не более одного повтора" структурным, а не следствием вложенных условий.
type requestState int

const (
	stateNormal requestState = iota
	stateRefreshing
	stateRetried
)

// Request представляет дескриптор исходящего запроса
// Дескриптор неизменяем после отправки; при повторе после обновления токена
// отправляется клон с новым заголовком Authorization
type Request struct {
	Method      string
	Path        string
	Query       url.Values
	Header      http.Header
	Body        []byte
	ContentType string
}

// Response представляет ответ внутреннего API
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// Client - HTTP-клиент внутреннего API с прозрачным обновлением токена.
// К каждому запросу прикрепляется bearer-токен из хранилища учетных данных;
// на 401 вне путей аутентификации выполняется ровно один цикл
// "обновить токен и повторить".
type Client struct {
	baseURL     string
	httpClient  *http.Client
	credentials interfaces.CredentialPort
	logger      interfaces.LoggerPort

	loginPath   string
	refreshPath string
	mePath      string
}

// ClientOption настраивает Client при создании
type ClientOption func(*Client)

// WithHTTPClient подменяет базовый http.Client (таймауты, транспорт)
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithAuthPaths подменяет пути аутентификации внутреннего API
func WithAuthPaths(loginPath, refreshPath, mePath string) ClientOption {
	return func(c *Client) {
		c.loginPath = loginPath
		c.refreshPath = refreshPath
		c.mePath = mePath
	}
}

// NewClient создает новый клиент внутреннего API
func NewClient(baseURL string, credentials interfaces.CredentialPort, logger interfaces.LoggerPort, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		credentials: credentials,
		logger:      logger,
		loginPath:   defaultLoginPath,
		refreshPath: defaultRefreshPath,
		mePath:      defaultMePath,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// isAuthPath сообщает, относится ли путь к эндпоинтам аутентификации
func (c *Client) isAuthPath(path string) bool {
	return strings.Contains(path, "/auth/login") || strings.Contains(path, "/auth/refresh")
}

// accessToken возвращает текущий access-токен; отсутствие токена - не ошибка,
// запрос уйдет неаутентифицированным и решение примет сервер.
// Заведомо истекший JWT не отправляется вовсе: первый же 401 запустит
// цикл обновления без лишнего обреченного запроса.
func (c *Client) accessToken(ctx context.Context) string {
	pair, err := c.credentials.Get(ctx)
	if err != nil || pair == nil {
		return ""
	}
	if credentials.AccessTokenExpired(pair.AccessToken, time.Now()) {
		return ""
	}
	return pair.AccessToken
}

// Do выполняет запрос через конвейер с обновлением токена.
// Возвращает ответ с любым 2xx статусом; прочие статусы и транспортные
// сбои возвращаются как *APIError. На refresh-сбое возвращается ошибка,
// обернутая вокруг errors.ErrSessionInvalid.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	state := stateNormal
	token := c.accessToken(ctx)

	for {
		resp, err := c.dispatch(ctx, req, token)
		if err != nil {
			apiRequests.WithLabelValues(req.Method, "transport_error").Inc()
			return nil, newTransportError(err)
		}

		apiRequests.WithLabelValues(req.Method, strconv.Itoa(resp.Status)).Inc()

		if resp.Status >= 200 && resp.Status < 300 {
			return resp, nil
		}

		// Единственный цикл обновления: только на первом 401 и только
		// вне эндпоинтов аутентификации. После stateRetried повторный
		// 401 возвращается как есть - это гарантирует завершение.
		if resp.Status == http.StatusUnauthorized && state == stateNormal && !c.isAuthPath(req.Path) {
			state = stateRefreshing

			newToken, refreshErr := c.refresh(ctx)
			if refreshErr != nil {
				return nil, refreshErr
			}
			if newToken == "" {
				// Refresh-токена нет: восстановление невозможно,
				// отдаем исходный 401
				return nil, newAPIError(resp.Status, resp.Body)
			}

			state = stateRetried
			token = newToken
			continue
		}

		return nil, newAPIError(resp.Status, resp.Body)
	}
}

// dispatch отправляет один HTTP-запрос без какой-либо логики восстановления
func (c *Client) dispatch(ctx context.Context, req *Request, token string) (*Response, error) {
	endpoint := c.baseURL + req.Path
	if len(req.Query) > 0 {
		endpoint += "?" + req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, endpoint, body)
	if err != nil {
		return nil, err
	}

	for key, values := range req.Header {
		for _, value := range values {
			httpReq.Header.Add(key, value)
		}
	}

	contentType := req.ContentType
	if contentType == "" && req.Body != nil {
		contentType = "application/json"
	}
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}

	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, err
	}

	return &Response{
		Status: httpResp.StatusCode,
		Header: httpResp.Header,
		Body:   respBody,
	}, nil
}

// refresh выполняет обмен refresh-токена на новую пару.
// Возвращает пустой токен без ошибки, если refresh-токена нет (учетные
// данные при этом очищаются). Любой сбой самого обмена - non-2xx или
// транспортная ошибка - очищает пару и возвращает ErrSessionInvalid:
// для вызывающего это сигнал принудительного выхода.
func (c *Client) refresh(ctx context.Context) (string, error) {
	pair, err := c.credentials.Get(ctx)
	if err != nil && err != apperrors.ErrNoCredentials {
		return "", fmt.Errorf("credentials read failed: %w", err)
	}

	if pair == nil || pair.RefreshToken == "" {
		_ = c.credentials.Clear(ctx)
		return "", nil
	}

	payload, err := json.Marshal(map[string]string{"refreshToken": pair.RefreshToken})
	if err != nil {
		return "", err
	}

	resp, err := c.dispatch(ctx, &Request{
		Method: http.MethodPost,
		Path:   c.refreshPath,
		Body:   payload,
	}, "")
	if err != nil {
		// Сетевой сбой при обновлении равнозначен явному отказу
		tokenRefreshes.WithLabelValues("transport_error").Inc()
		_ = c.credentials.Clear(ctx)
		return "", fmt.Errorf("%w: refresh request failed: %s", apperrors.ErrSessionInvalid, err.Error())
	}

	if resp.Status < 200 || resp.Status >= 300 {
		tokenRefreshes.WithLabelValues("rejected").Inc()
		_ = c.credentials.Clear(ctx)
		return "", fmt.Errorf("%w: refresh rejected with status %d", apperrors.ErrSessionInvalid, resp.Status)
	}

	var newPair interfaces.TokenPair
	if err := json.Unmarshal(resp.Body, &newPair); err != nil || newPair.AccessToken == "" {
		tokenRefreshes.WithLabelValues("bad_payload").Inc()
		_ = c.credentials.Clear(ctx)
		return "", fmt.Errorf("%w: malformed refresh response", apperrors.ErrSessionInvalid)
	}

	if err := c.credentials.Set(ctx, &newPair); err != nil {
		return "", fmt.Errorf("credentials write failed: %w", err)
	}

	tokenRefreshes.WithLabelValues("ok").Inc()
	c.logger.DebugWithContext(ctx, "Пара токенов обновлена")

	return newPair.AccessToken, nil
}

// DoJSON выполняет запрос и декодирует тело 2xx-ответа в out
func (c *Client) DoJSON(ctx context.Context, req *Request, out interface{}) error {
	resp, err := c.Do(ctx, req)
	if err != nil {
		return err
	}

	if out == nil || len(resp.Body) == 0 {
		return nil
	}

	if err := json.Unmarshal(resp.Body, out); err != nil {
		return fmt.Errorf("decode response for %s %s: %w", req.Method, req.Path, err)
	}

	return nil
}

// Login выполняет вход по email и паролю и сохраняет полученную пару токенов
func (c *Client) Login(ctx context.Context, email, password string) error {
	payload, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return err
	}

	var pair interfaces.TokenPair
	if err := c.DoJSON(ctx, &Request{
		Method: http.MethodPost,
		Path:   c.loginPath,
		Body:   payload,
	}, &pair); err != nil {
		return err
	}

	return c.credentials.Set(ctx, &pair)
}

// Logout удаляет сохраненную пару токенов
func (c *Client) Logout(ctx context.Context) error {
	return c.credentials.Clear(ctx)
}

// Me выполняет пробу идентичности текущей сессии.
// 401 здесь проходит обычный путь обновления токена.
func (c *Client) Me(ctx context.Context) (json.RawMessage, error) {
	resp, err := c.Do(ctx, &Request{
		Method: http.MethodGet,
		Path:   c.mePath,
	})
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}
